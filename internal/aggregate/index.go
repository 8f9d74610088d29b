// Package aggregate maintains per-district and per-world rollups of the
// open-plot population: how many plots are open and the oldest
// est_time_open_min among them. It is a pure cache over the plot
// records; a full scan of the records is always the reference answer,
// and the tests hold the two equal.
package aggregate

import (
	"sync"
	"time"

	"github.com/yungbote/paissadb/internal/types"
)

type Key struct {
	WorldID    int
	DistrictID int
}

type Stats struct {
	NumOpenPlots int        `json:"num_open_plots"`
	OldestPlot   *time.Time `json:"oldest_plot_time,omitempty"`
}

type entry struct {
	hasMin bool
	min    time.Time
}

// scope is one (world, district) rollup. Each scope has its own lock so
// concurrent plots in different districts never contend.
type scope struct {
	mu   sync.Mutex
	open map[types.PlotIdentity]entry
}

func (s *scope) apply(id types.PlotIdentity, isOpen bool, estMin *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isOpen {
		delete(s.open, id)
		return
	}
	e := entry{}
	if estMin != nil {
		e.hasMin = true
		e.min = *estMin
	}
	s.open[id] = e
}

func (s *scope) stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{NumOpenPlots: len(s.open)}
	for _, e := range s.open {
		if !e.hasMin {
			continue
		}
		if st.OldestPlot == nil || e.min.Before(*st.OldestPlot) {
			t := e.min
			st.OldestPlot = &t
		}
	}
	return st
}

type Index struct {
	mu     sync.RWMutex
	scopes map[Key]*scope
}

func NewIndex() *Index {
	return &Index{scopes: make(map[Key]*scope)}
}

func (ix *Index) scope(k Key) *scope {
	ix.mu.RLock()
	s, ok := ix.scopes[k]
	ix.mu.RUnlock()
	if ok {
		return s
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s, ok = ix.scopes[k]; ok {
		return s
	}
	s = &scope{open: make(map[types.PlotIdentity]entry)}
	ix.scopes[k] = s
	return s
}

// Apply folds one reconciler delta into the rollups. wasOpen is accepted
// for symmetry with the reconciler's delta but the scope map keyed by
// identity makes removal and min-recompute self-contained.
func (ix *Index) Apply(id types.PlotIdentity, wasOpen, isOpen bool, estMin *time.Time) {
	_ = wasOpen
	ix.scope(Key{WorldID: id.WorldID, DistrictID: id.DistrictID}).apply(id, isOpen, estMin)
}

// District returns the rollup for one (world, district) scope.
func (ix *Index) District(worldID, districtID int) Stats {
	ix.mu.RLock()
	s, ok := ix.scopes[Key{WorldID: worldID, DistrictID: districtID}]
	ix.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return s.stats()
}

// World sums the district scopes of one world. A single ingest touches
// exactly one district scope, so each scope snapshot is either fully
// before or fully after any given ingest.
func (ix *Index) World(worldID int) Stats {
	ix.mu.RLock()
	keys := make([]Key, 0, len(ix.scopes))
	for k := range ix.scopes {
		if k.WorldID == worldID {
			keys = append(keys, k)
		}
	}
	ix.mu.RUnlock()

	out := Stats{}
	for _, k := range keys {
		st := ix.District(k.WorldID, k.DistrictID)
		out.NumOpenPlots += st.NumOpenPlots
		if st.OldestPlot != nil && (out.OldestPlot == nil || st.OldestPlot.Before(*out.OldestPlot)) {
			out.OldestPlot = st.OldestPlot
		}
	}
	return out
}

// WarmUp rebuilds the rollups from stored plot records at boot. Only
// open plots contribute.
func (ix *Index) WarmUp(plots []types.Plot) {
	for i := range plots {
		p := &plots[i]
		if p.State != types.StateOpen {
			continue
		}
		ix.Apply(p.Identity(), false, true, p.EstOpenedMin)
	}
}
