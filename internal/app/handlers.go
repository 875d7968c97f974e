package app

import (
	"github.com/yungbote/pulsefeed-backend/internal/http/handlers"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

type Handlers struct {
	Interaction *handlers.InteractionHandler
	Feed        *handlers.FeedHandler
	Suggestion  *handlers.SuggestionHandler
	Health      *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Interaction: handlers.NewInteractionHandler(services.Interaction),
		Feed:        handlers.NewFeedHandler(services.Feed),
		Suggestion:  handlers.NewSuggestionHandler(services.Suggestion),
		Health:      handlers.NewHealthHandler(),
	}
}
