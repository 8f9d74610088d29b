package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/paissadb/internal/aggregate"
	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/repos"
	"github.com/yungbote/paissadb/internal/types"
)

var ErrWorldNotFound = errors.New("world not found")

type SummaryService interface {
	GetAllWorldSummaries(ctx context.Context) ([]types.WorldSummary, error)
	GetWorldSummary(ctx context.Context, worldID int) (*types.WorldDetail, error)
}

type summaryService struct {
	log      *logger.Logger
	catalog  *gamedata.Catalog
	plotRepo repos.PlotRepo
	index    *aggregate.Index
}

func NewSummaryService(
	log *logger.Logger,
	catalog *gamedata.Catalog,
	plotRepo repos.PlotRepo,
	index *aggregate.Index,
) SummaryService {
	return &summaryService{
		log:      log.With("service", "SummaryService"),
		catalog:  catalog,
		plotRepo: plotRepo,
		index:    index,
	}
}

func (ss *summaryService) GetAllWorldSummaries(ctx context.Context) ([]types.WorldSummary, error) {
	worlds := ss.catalog.Worlds()
	out := make([]types.WorldSummary, 0, len(worlds))
	for _, w := range worlds {
		stats := ss.index.World(w.ID)
		out = append(out, types.WorldSummary{
			ID:           w.ID,
			Name:         w.Name,
			NumOpenPlots: stats.NumOpenPlots,
			OldestPlot:   stats.OldestPlot,
		})
	}
	return out, nil
}

func (ss *summaryService) GetWorldSummary(ctx context.Context, worldID int) (*types.WorldDetail, error) {
	name, ok := ss.catalog.WorldName(worldID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrWorldNotFound, worldID)
	}

	open, err := ss.plotRepo.ListOpenByWorld(ctx, worldID)
	if err != nil {
		return nil, fmt.Errorf("list open plots: %w", err)
	}

	byDistrict := make(map[int][]types.PlotSummary)
	for i := range open {
		p := &open[i]
		size, _ := ss.catalog.Size(p.Identity())
		byDistrict[p.DistrictID] = append(byDistrict[p.DistrictID], types.PlotSummary{
			WorldID:      p.WorldID,
			DistrictID:   p.DistrictID,
			WardNumber:   p.WardNumber,
			PlotNumber:   p.PlotNumber,
			Size:         size,
			KnownPrice:   p.KnownPrice,
			LastUpdated:  p.LastSeen,
			EstOpenedMin: p.EstOpenedMin,
			EstOpenedMax: p.EstOpenedMax,
			EstNumDevals: p.EstNumDevals,
		})
	}

	worldStats := ss.index.World(worldID)
	detail := &types.WorldDetail{
		ID:           worldID,
		Name:         name,
		NumOpenPlots: worldStats.NumOpenPlots,
		OldestPlot:   worldStats.OldestPlot,
	}
	for _, d := range ss.catalog.Districts() {
		stats := ss.index.District(worldID, d.ID)
		detail.Districts = append(detail.Districts, types.DistrictSummary{
			ID:           d.ID,
			Name:         d.Name,
			NumOpenPlots: stats.NumOpenPlots,
			OldestPlot:   stats.OldestPlot,
			OpenPlots:    byDistrict[d.ID],
		})
	}
	return detail, nil
}
