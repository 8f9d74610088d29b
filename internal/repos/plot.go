package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

type PlotRepo interface {
	Load(ctx context.Context, id types.PlotIdentity) (*types.Plot, error)
	Save(ctx context.Context, plot *types.Plot) error
	ListOpen(ctx context.Context) ([]types.Plot, error)
	ListOpenByWorld(ctx context.Context, worldID int) ([]types.Plot, error)
}

type plotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlotRepo(db *gorm.DB, baseLog *logger.Logger) PlotRepo {
	return &plotRepo{db: db, log: baseLog.With("repo", "PlotRepo")}
}

func (pr *plotRepo) Load(ctx context.Context, id types.PlotIdentity) (*types.Plot, error) {
	var plot types.Plot
	err := pr.db.WithContext(ctx).
		Where("world_id = ? AND district_id = ? AND ward_number = ? AND plot_number = ?",
			id.WorldID, id.DistrictID, id.WardNumber, id.PlotNumber).
		First(&plot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plot, nil
}

func (pr *plotRepo) Save(ctx context.Context, plot *types.Plot) error {
	return pr.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "world_id"}, {Name: "district_id"},
				{Name: "ward_number"}, {Name: "plot_number"},
			},
			UpdateAll: true,
		}).
		Create(plot).Error
}

func (pr *plotRepo) ListOpen(ctx context.Context) ([]types.Plot, error) {
	var plots []types.Plot
	if err := pr.db.WithContext(ctx).
		Where("state = ?", types.StateOpen).
		Find(&plots).Error; err != nil {
		return nil, err
	}
	return plots, nil
}

func (pr *plotRepo) ListOpenByWorld(ctx context.Context, worldID int) ([]types.Plot, error) {
	var plots []types.Plot
	if err := pr.db.WithContext(ctx).
		Where("world_id = ? AND state = ?", worldID, types.StateOpen).
		Order("district_id, ward_number, plot_number").
		Find(&plots).Error; err != nil {
		return nil, err
	}
	return plots, nil
}
