package app

import (
	"fmt"

	"github.com/yungbote/paissadb/internal/aggregate"
	"github.com/yungbote/paissadb/internal/deval"
	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/ingest"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/realtime"
	"github.com/yungbote/paissadb/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Ingest  services.IngestService
	Summary services.SummaryService

	Reconciler *ingest.Reconciler
}

func wireServices(
	log *logger.Logger,
	cfg Config,
	catalog *gamedata.Catalog,
	reposet Repos,
	index *aggregate.Index,
	notifier *realtime.HubNotifier,
) (Services, error) {
	log.Info("Wiring services...")

	model, err := deval.New(cfg.DevalInterval, cfg.DevalRate)
	if err != nil {
		return Services{}, fmt.Errorf("init deval model: %w", err)
	}

	reconciler := ingest.NewReconciler(
		log,
		catalog,
		model,
		reposet.Plot,
		index,
		notifier,
		ingest.Config{StaleAfter: cfg.PlotStaleAfter},
	)

	return Services{
		Auth:       services.NewAuthService(log, catalog, reposet.Sweeper, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Ingest:     services.NewIngestService(log, catalog, reconciler, reposet.Event, reposet.WardSweep, reposet.Sweeper),
		Summary:    services.NewSummaryService(log, catalog, reposet.Plot, index),
		Reconciler: reconciler,
	}, nil
}
