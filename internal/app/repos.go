package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/repos"
)

type Repos struct {
	Plot      repos.PlotRepo
	Sweeper   repos.SweeperRepo
	Event     repos.EventRepo
	WardSweep repos.WardSweepRepo
	Reference repos.ReferenceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Plot:      repos.NewPlotRepo(db, log),
		Sweeper:   repos.NewSweeperRepo(db, log),
		Event:     repos.NewEventRepo(db, log),
		WardSweep: repos.NewWardSweepRepo(db, log),
		Reference: repos.NewReferenceRepo(db, log),
	}
}
