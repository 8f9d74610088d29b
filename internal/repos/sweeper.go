package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

type SweeperRepo interface {
	GetByID(ctx context.Context, id int64) (*types.Sweeper, error)
	Upsert(ctx context.Context, sweeper *types.Sweeper) error
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
}

type sweeperRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSweeperRepo(db *gorm.DB, baseLog *logger.Logger) SweeperRepo {
	return &sweeperRepo{db: db, log: baseLog.With("repo", "SweeperRepo")}
}

func (sr *sweeperRepo) GetByID(ctx context.Context, id int64) (*types.Sweeper, error) {
	var sweeper types.Sweeper
	err := sr.db.WithContext(ctx).First(&sweeper, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sweeper, nil
}

func (sr *sweeperRepo) Upsert(ctx context.Context, sweeper *types.Sweeper) error {
	return sr.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(sweeper).Error
}

func (sr *sweeperRepo) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	return sr.db.WithContext(ctx).
		Model(&types.Sweeper{}).
		Where("id = ?", id).
		Update("last_seen", at).Error
}
