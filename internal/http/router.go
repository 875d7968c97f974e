package http

import (
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/pulsefeed-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulsefeed-backend/internal/http/middleware"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	RequestTimeout time.Duration
	AuthMiddleware *httpMW.AuthMiddleware

	InteractionHandler *httpH.InteractionHandler
	FeedHandler        *httpH.FeedHandler
	SuggestionHandler  *httpH.SuggestionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestTimeout(cfg.RequestTimeout))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// The viral surface is viewer-independent and stays public.
	if cfg.FeedHandler != nil {
		api.GET("/discovery/viral", cfg.FeedHandler.GetViral)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.InteractionHandler != nil {
			protected.POST("/interactions", cfg.InteractionHandler.Ingest)
		}
		if cfg.FeedHandler != nil {
			protected.GET("/feed", cfg.FeedHandler.GetFeed)
		}
		if cfg.SuggestionHandler != nil {
			protected.GET("/suggestions/people", cfg.SuggestionHandler.GetPeople)
		}
	}

	return r
}
