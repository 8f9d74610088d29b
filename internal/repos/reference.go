package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

// ReferenceRepo mirrors the in-memory catalog into the worlds, districts
// and plot_info tables so ad-hoc SQL and joins keep working.
type ReferenceRepo interface {
	Seed(ctx context.Context, catalog *gamedata.Catalog) error
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return &referenceRepo{db: db, log: baseLog.With("repo", "ReferenceRepo")}
}

func (rr *referenceRepo) Seed(ctx context.Context, catalog *gamedata.Catalog) error {
	rr.log.Info("Seeding reference tables from catalog...")
	var (
		worlds    []types.World
		districts []types.District
		plotInfo  []types.PlotInfo
	)
	for _, w := range catalog.Worlds() {
		worlds = append(worlds, types.World{ID: w.ID, Name: w.Name})
	}
	for _, d := range catalog.Districts() {
		districts = append(districts, types.District{
			ID:        d.ID,
			Name:      d.Name,
			LandSetID: d.LandSetID,
			NumWards:  d.NumWards,
		})
		for n, p := range d.Plots {
			plotInfo = append(plotInfo, types.PlotInfo{
				DistrictID: d.ID,
				PlotNumber: n,
				Size:       p.Size,
				BasePrice:  p.BasePrice,
			})
		}
	}

	return rr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&worlds).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&districts).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&plotInfo, 200).Error
	})
}
