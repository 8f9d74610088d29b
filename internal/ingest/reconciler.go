// Package ingest reconciles sweeper observations into per-plot state.
// Reports arrive from many independent clients with no ordering
// guarantee; the reconciler serializes them per plot, applies the state
// machine, and keeps the open-window and devaluation estimates tight as
// evidence accumulates.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/paissadb/internal/aggregate"
	"github.com/yungbote/paissadb/internal/deval"
	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

// PlotStore is the storage collaborator. Load returns (nil, nil) for a
// plot that has never been observed. Per-plot read-your-writes is
// guaranteed by the reconciler holding the plot lock across both calls.
type PlotStore interface {
	Load(ctx context.Context, id types.PlotIdentity) (*types.Plot, error)
	Save(ctx context.Context, plot *types.Plot) error
}

// Delta describes the effect one accepted observation had on a plot.
type Delta struct {
	Identity     types.PlotIdentity
	WasOpen      bool
	IsOpen       bool
	EstOpenedMin *time.Time
	Event        NotifyEvent // empty when nothing worth announcing changed
}

type Config struct {
	// StaleAfter, when positive, reverts a plot to unknown if the gap
	// between its last accepted observation and a new one exceeds it.
	StaleAfter time.Duration
}

type Reconciler struct {
	log      *logger.Logger
	catalog  *gamedata.Catalog
	model    *deval.Model
	store    PlotStore
	index    *aggregate.Index
	notifier Notifier // optional

	staleAfter time.Duration
	locks      plotLocks
}

func NewReconciler(
	log *logger.Logger,
	catalog *gamedata.Catalog,
	model *deval.Model,
	store PlotStore,
	index *aggregate.Index,
	notifier Notifier,
	cfg Config,
) *Reconciler {
	return &Reconciler{
		log:        log.With("component", "Reconciler"),
		catalog:    catalog,
		model:      model,
		store:      store,
		index:      index,
		notifier:   notifier,
		staleAfter: cfg.StaleAfter,
	}
}

// Ingest applies one observation. It either fully applies or fails with
// one of the taxonomy errors, leaving prior state untouched. Calls for
// the same plot serialize; calls for different plots run in parallel.
func (r *Reconciler) Ingest(ctx context.Context, obs types.Observation) (*Delta, error) {
	if obs.State != types.StateOwned && obs.State != types.StateOpen {
		return nil, &IngestError{obs.Identity, fmt.Errorf("reported state %q is not observable", obs.State)}
	}
	meta, ok := r.catalog.Plot(obs.Identity)
	if !ok {
		return nil, &IngestError{obs.Identity, ErrUnknownPlot}
	}

	mu := r.locks.get(obs.Identity)
	mu.Lock()
	defer mu.Unlock()

	cur, err := r.store.Load(ctx, obs.Identity)
	if err != nil {
		return nil, &IngestError{obs.Identity, fmt.Errorf("load plot: %w", err)}
	}
	created := cur == nil
	if created {
		cur = types.NewPlot(obs.Identity)
	}

	if !created && !obs.ObservedAt.After(cur.LastSeen) {
		return r.lateArrival(ctx, cur, obs, meta)
	}

	// Work on a copy so a rejected price never leaves a partial write.
	next := *cur

	if r.staleAfter > 0 && !next.LastSeen.IsZero() && obs.ObservedAt.Sub(next.LastSeen) > r.staleAfter {
		r.log.Debug("plot unseen past staleness window, reverting to unknown",
			"plot", obs.Identity.String(), "last_seen", next.LastSeen)
		next.State = types.StateUnknown
		next.ClearOpenFields()
	}

	var event NotifyEvent
	prevState := next.State
	next.State = nextState(prevState, obs.State)

	switch obs.State {
	case types.StateOwned:
		t := obs.ObservedAt
		next.LastOwnedAt = &t
		next.ClearOpenFields()
		if obs.OwnerName != "" {
			next.OwnerName = obs.OwnerName
		}
		next.HasBuiltHouse = obs.HasBuiltHouse
		if prevState == types.StateOpen {
			event = NotifySold
		}

	case types.StateOpen:
		continuing := prevState == types.StateOpen
		if !continuing {
			next.ClearOpenFields()
			next.OwnerName = ""
			next.HasBuiltHouse = obs.HasBuiltHouse
		}
		if obs.Price != nil {
			n, err := r.model.DevalsForPrice(meta.BasePrice, *obs.Price)
			if err != nil {
				return nil, &IngestError{obs.Identity, err}
			}
			if continuing && next.EstNumDevals != nil && n < *next.EstNumDevals {
				// A plot cannot un-devalue within a run; keep the count.
				n = *next.EstNumDevals
			}
			applyWindow(&next, r.model, n, *obs.Price, obs.ObservedAt, continuing)
			if next.LowConfidence && !cur.LowConfidence {
				r.log.Warn("open window collapsed, estimate is low confidence",
					"plot", obs.Identity.String(), "devals", n)
			}
		}
		if !continuing || !estimatesEqual(cur, &next) {
			event = NotifyOpenedChanged
		}
	}

	next.LastSeen = obs.ObservedAt
	next.UpdatedAt = time.Now().UTC()

	if err := r.store.Save(ctx, &next); err != nil {
		return nil, &IngestError{obs.Identity, fmt.Errorf("save plot: %w", err)}
	}

	d := &Delta{
		Identity:     obs.Identity,
		WasOpen:      !created && cur.State == types.StateOpen,
		IsOpen:       next.State == types.StateOpen,
		EstOpenedMin: next.EstOpenedMin,
		Event:        event,
	}
	r.publish(d)
	return d, nil
}

// lateArrival handles an observation that does not advance the plot's
// clock. It may still sharpen the current open run's window when it is
// an open report implying strictly more devaluations than recorded;
// anything else is redundant. Stale data never widens an estimate.
func (r *Reconciler) lateArrival(ctx context.Context, cur *types.Plot, obs types.Observation, meta gamedata.PlotMeta) (*Delta, error) {
	stale := &IngestError{obs.Identity, ErrStaleObservation}
	if cur.State != types.StateOpen || obs.State != types.StateOpen || obs.Price == nil {
		return nil, stale
	}
	n, err := r.model.DevalsForPrice(meta.BasePrice, *obs.Price)
	if err != nil {
		// Off-schedule price on an already superseded report: nothing to
		// sharpen with, drop it as stale rather than alarming the caller.
		return nil, stale
	}
	if cur.EstNumDevals != nil && n <= *cur.EstNumDevals {
		return nil, stale
	}

	next := *cur
	applyWindow(&next, r.model, n, *obs.Price, obs.ObservedAt, true)
	// LastSeen stays put: a late arrival does not advance the clock.
	next.UpdatedAt = time.Now().UTC()

	if err := r.store.Save(ctx, &next); err != nil {
		return nil, &IngestError{obs.Identity, fmt.Errorf("save plot: %w", err)}
	}

	d := &Delta{
		Identity:     obs.Identity,
		WasOpen:      true,
		IsOpen:       true,
		EstOpenedMin: next.EstOpenedMin,
		Event:        NotifyOpenedChanged,
	}
	r.publish(d)
	return d, nil
}

func (r *Reconciler) publish(d *Delta) {
	if r.index != nil {
		r.index.Apply(d.Identity, d.WasOpen, d.IsOpen, d.EstOpenedMin)
	}
	if r.notifier != nil && d.Event != "" {
		r.notifier.Notify(d.Identity, d.Event)
	}
}

// applyWindow recomputes the open-window estimate for n devaluations
// observed at asOf, narrowing by the last owned sighting, the
// observation time, and (within a run) the previously stored bounds.
// An empty intersection collapses to its lower bound and flags the
// record low-confidence instead of failing the ingest.
func applyWindow(p *types.Plot, model *deval.Model, n, price int, asOf time.Time, continuing bool) {
	wmin, wmax := model.OpenWindow(n, asOf)
	if p.LastOwnedAt != nil && p.LastOwnedAt.After(wmin) {
		wmin = *p.LastOwnedAt
	}
	if asOf.Before(wmax) {
		wmax = asOf
	}
	if continuing && p.EstOpenedMin != nil && p.EstOpenedMin.After(wmin) {
		wmin = *p.EstOpenedMin
	}
	if continuing && p.EstOpenedMax != nil && p.EstOpenedMax.Before(wmax) {
		wmax = *p.EstOpenedMax
	}
	low := false
	if wmin.After(wmax) {
		wmax = wmin
		low = true
	}
	devals := n
	pr := price
	p.EstNumDevals = &devals
	p.KnownPrice = &pr
	p.EstOpenedMin = &wmin
	p.EstOpenedMax = &wmax
	p.LowConfidence = low
}

func estimatesEqual(a, b *types.Plot) bool {
	return intPtrEqual(a.EstNumDevals, b.EstNumDevals) &&
		intPtrEqual(a.KnownPrice, b.KnownPrice) &&
		timePtrEqual(a.EstOpenedMin, b.EstOpenedMin) &&
		timePtrEqual(a.EstOpenedMax, b.EstOpenedMax)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
