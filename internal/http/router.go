package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/paissadb/internal/http/handlers"
	httpMW "github.com/yungbote/paissadb/internal/http/middleware"
	"github.com/yungbote/paissadb/internal/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	WardInfoHandler *httpH.WardInfoHandler
	WorldHandler    *httpH.WorldHandler
	RealtimeHandler *httpH.RealtimeHandler

	AuthMiddleware *httpMW.AuthMiddleware

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	if cfg.AuthHandler != nil {
		r.POST("/register", cfg.AuthHandler.Register)
	}

	// Read endpoints are public.
	if cfg.WorldHandler != nil {
		r.GET("/worlds", cfg.WorldHandler.ListWorlds)
		r.GET("/worlds/:id", cfg.WorldHandler.GetWorld)
	}
	if cfg.RealtimeHandler != nil {
		r.GET("/ws", cfg.RealtimeHandler.Stream)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.WardInfoHandler != nil {
			protected.POST("/wardInfo", cfg.WardInfoHandler.IngestWardInfo)
		}
	}

	return r
}
