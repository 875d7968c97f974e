package app

import (
	"github.com/gin-gonic/gin"

	apihttp "github.com/yungbote/pulsefeed-backend/internal/http"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return apihttp.NewRouter(apihttp.RouterConfig{
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
		AuthMiddleware: middleware.Auth,

		InteractionHandler: handlers.Interaction,
		FeedHandler:        handlers.Feed,
		SuggestionHandler:  handlers.Suggestion,

		HealthHandler: handlers.Health,
	})
}
