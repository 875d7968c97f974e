package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
	"github.com/yungbote/pulsefeed-backend/internal/services"
)

type Services struct {
	Interaction services.InteractionService
	Feed        services.FeedService
	Suggestion  services.SuggestionService
	Sweeper     services.SweeperService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	interaction := services.NewInteractionService(db, log,
		repos.InteractionLog,
		repos.InterestProfile,
		repos.CreatorAffinity,
		repos.ContentFatigue,
		repos.ContentVelocity,
		repos.SeenRecord,
		repos.Content,
	)
	feed := services.NewFeedService(db, log,
		repos.Content,
		repos.User,
		repos.InterestProfile,
		repos.CreatorAffinity,
		repos.ContentFatigue,
		repos.ContentVelocity,
		repos.SeenRecord,
		nil,
		clients.ViralCache,
	)
	suggestion := services.NewSuggestionService(db, log,
		clients.Graph,
		repos.User,
		repos.Content,
		repos.InteractionLog,
		repos.SeenRecord,
	)
	sweeper := services.NewSweeperService(db, log, repos.SeenRecord, cfg.SweepInterval)

	return Services{
		Interaction: interaction,
		Feed:        feed,
		Suggestion:  suggestion,
		Sweeper:     sweeper,
	}
}
