package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/ingest"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/repos"
	"github.com/yungbote/paissadb/internal/types"
)

// ingestParallelism caps concurrent per-plot reconciles within a single
// ward report. Plots are independent, so this is purely a politeness
// limit on the storage layer.
const ingestParallelism = 8

// PlotIngester is the reconciler as this service sees it.
type PlotIngester interface {
	Ingest(ctx context.Context, obs types.Observation) (*ingest.Delta, error)
}

type IngestService interface {
	IngestWardInfo(ctx context.Context, sweeperID int64, req *types.WardInfoRequest) (*types.WardIngestResult, error)
}

type ingestService struct {
	log           *logger.Logger
	catalog       *gamedata.Catalog
	reconciler    PlotIngester
	eventRepo     repos.EventRepo
	wardSweepRepo repos.WardSweepRepo
	sweeperRepo   repos.SweeperRepo
}

func NewIngestService(
	log *logger.Logger,
	catalog *gamedata.Catalog,
	reconciler PlotIngester,
	eventRepo repos.EventRepo,
	wardSweepRepo repos.WardSweepRepo,
	sweeperRepo repos.SweeperRepo,
) IngestService {
	return &ingestService{
		log:           log.With("service", "IngestService"),
		catalog:       catalog,
		reconciler:    reconciler,
		eventRepo:     eventRepo,
		wardSweepRepo: wardSweepRepo,
		sweeperRepo:   sweeperRepo,
	}
}

// IngestWardInfo archives the raw report, then decomposes it into
// per-plot observations and reconciles each one. Plot failures are
// independent: stale sightings are skipped, rejected ones counted, and
// the rest of the ward still lands.
func (is *ingestService) IngestWardInfo(ctx context.Context, sweeperID int64, req *types.WardInfoRequest) (*types.WardIngestResult, error) {
	probe := types.PlotIdentity{
		WorldID:    req.WorldID,
		DistrictID: req.DistrictID,
		WardNumber: req.WardNumber,
		PlotNumber: 0,
	}
	if !is.catalog.Exists(probe) {
		return nil, &ingest.IngestError{Identity: probe, Err: ingest.ErrUnknownPlot}
	}
	if len(req.Plots) == 0 {
		return nil, fmt.Errorf("ward report contains no plots")
	}

	observedAt := req.Timestamp.UTC()
	if req.Timestamp.IsZero() {
		observedAt = time.Now().UTC()
	}

	if err := is.archive(ctx, sweeperID, observedAt, req); err != nil {
		return nil, err
	}

	result := &types.WardIngestResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestParallelism)
	for _, p := range req.Plots {
		obs := types.Observation{
			Identity: types.PlotIdentity{
				WorldID:    req.WorldID,
				DistrictID: req.DistrictID,
				WardNumber: req.WardNumber,
				PlotNumber: p.PlotNumber,
			},
			ObservedAt:    observedAt,
			SweeperID:     sweeperID,
			OwnerName:     p.OwnerName,
			HasBuiltHouse: p.HasBuiltHouse,
		}
		if p.IsOwned {
			obs.State = types.StateOwned
		} else {
			obs.State = types.StateOpen
			obs.Price = p.Price
		}
		g.Go(func() error {
			_, err := is.reconciler.Ingest(gctx, obs)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Accepted++
			case errors.Is(err, ingest.ErrStaleObservation):
				result.Skipped++
			default:
				result.Rejected++
				is.log.Warn("plot observation rejected", "plot", obs.Identity.String(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := is.sweeperRepo.TouchLastSeen(ctx, sweeperID, observedAt); err != nil {
		is.log.Warn("failed to touch sweeper last_seen", "sweeper_id", sweeperID, "error", err)
	}
	return result, nil
}

func (is *ingestService) archive(ctx context.Context, sweeperID int64, observedAt time.Time, req *types.WardInfoRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal ward report: %w", err)
	}
	event := &types.Event{
		SweeperID: &sweeperID,
		Timestamp: observedAt,
		Type:      types.EventHousingWardInfo,
		Data:      datatypes.JSON(raw),
	}
	if err := is.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("archive ward report: %w", err)
	}
	sweep := &types.WardSweep{
		SweeperID:  &sweeperID,
		WorldID:    req.WorldID,
		DistrictID: req.DistrictID,
		WardNumber: req.WardNumber,
		Timestamp:  observedAt,
		EventID:    event.ID,
	}
	if err := is.wardSweepRepo.Create(ctx, sweep); err != nil {
		return fmt.Errorf("record ward sweep: %w", err)
	}
	return nil
}
