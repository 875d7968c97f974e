package app

import (
	"gorm.io/gorm"

	catalogrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/catalog"
	discoveryrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/discovery"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

type Repos struct {
	Content catalogrepos.ContentRepo
	User    catalogrepos.UserRepo

	InteractionLog  discoveryrepos.InteractionLogRepo
	InterestProfile discoveryrepos.InterestProfileRepo
	CreatorAffinity discoveryrepos.CreatorAffinityRepo
	ContentFatigue  discoveryrepos.ContentFatigueRepo
	ContentVelocity discoveryrepos.ContentVelocityRepo
	SeenRecord      discoveryrepos.SeenRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Content: catalogrepos.NewContentRepo(db, log),
		User:    catalogrepos.NewUserRepo(db, log),

		InteractionLog:  discoveryrepos.NewInteractionLogRepo(db, log),
		InterestProfile: discoveryrepos.NewInterestProfileRepo(db, log),
		CreatorAffinity: discoveryrepos.NewCreatorAffinityRepo(db, log),
		ContentFatigue:  discoveryrepos.NewContentFatigueRepo(db, log),
		ContentVelocity: discoveryrepos.NewContentVelocityRepo(db, log),
		SeenRecord:      discoveryrepos.NewSeenRecordRepo(db, log),
	}
}
