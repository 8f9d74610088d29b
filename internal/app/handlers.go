package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/paissadb/internal/http"
	httpH "github.com/yungbote/paissadb/internal/http/handlers"
	httpMW "github.com/yungbote/paissadb/internal/http/middleware"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	WardInfo *httpH.WardInfoHandler
	World    *httpH.WorldHandler
	Realtime *httpH.RealtimeHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(serviceset.Auth),
		WardInfo: httpH.NewWardInfoHandler(log, serviceset.Ingest),
		World:    httpH.NewWorldHandler(log, serviceset.Summary),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		WardInfoHandler: handlers.WardInfo,
		WorldHandler:    handlers.World,
		RealtimeHandler: handlers.Realtime,
		AuthMiddleware:  middleware.Auth,
		ServiceName:     "paissadb",
	})
}
