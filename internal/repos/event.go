package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

type EventRepo interface {
	Create(ctx context.Context, event *types.Event) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (er *eventRepo) Create(ctx context.Context, event *types.Event) error {
	return er.db.WithContext(ctx).Create(event).Error
}

type WardSweepRepo interface {
	Create(ctx context.Context, sweep *types.WardSweep) error
}

type wardSweepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWardSweepRepo(db *gorm.DB, baseLog *logger.Logger) WardSweepRepo {
	return &wardSweepRepo{db: db, log: baseLog.With("repo", "WardSweepRepo")}
}

func (wr *wardSweepRepo) Create(ctx context.Context, sweep *types.WardSweep) error {
	return wr.db.WithContext(ctx).Create(sweep).Error
}
