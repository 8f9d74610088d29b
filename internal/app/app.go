package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/paissadb/internal/aggregate"
	"github.com/yungbote/paissadb/internal/db"
	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/observability"
	"github.com/yungbote/paissadb/internal/realtime"
	"github.com/yungbote/paissadb/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Catalog  *gamedata.Catalog
	Index    *aggregate.Index
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "paissadb",
		Environment: logMode,
	})

	log.Info("Loading game data catalog...", "dir", cfg.GamedataDir)
	catalog, err := gamedata.LoadDir(cfg.GamedataDir)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load game data: %w", err)
	}

	database, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := database.DB()

	reposet := wireRepos(theDB, log)

	if err := reposet.Reference.Seed(context.Background(), catalog); err != nil {
		log.Sync()
		return nil, fmt.Errorf("seed reference tables: %w", err)
	}

	hub := realtime.NewHub(log)
	var eventBus bus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		eventBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
	}
	notifier := realtime.NewHubNotifier(log, hub, publisherOrNil(eventBus))

	index := aggregate.NewIndex()
	openPlots, err := reposet.Plot.ListOpen(context.Background())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("warm aggregate index: %w", err)
	}
	index.WarmUp(openPlots)
	log.Info("Aggregate index warmed", "open_plots", len(openPlots))

	serviceset, err := wireServices(log, cfg, catalog, reposet, index, notifier)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Catalog:      catalog,
		Index:        index,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Hub:          hub,
		Bus:          eventBus,
		otelShutdown: otelShutdown,
	}, nil
}

// publisherOrNil keeps a typed-nil Bus from sneaking into the notifier's
// interface field.
func publisherOrNil(b bus.Bus) realtime.Publisher {
	if b == nil {
		return nil
	}
	return b
}

// Start launches the background pieces: the bus forwarder that relays
// cross-process plot events into the local hub.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Bus != nil {
		if err := a.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
			a.Log.Warn("bus forwarder failed to start", "error", err)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
