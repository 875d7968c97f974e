package discovery

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

var classColumns = map[types.ContentClass]string{
	types.ClassVideo: "video_score",
	types.ClassVoice: "voice_score",
	types.ClassPhoto: "photo_score",
	types.ClassText:  "text_score",
}

type InterestProfileRepo interface {
	GetByViewerID(dbc dbctx.Context, viewerID uuid.UUID) (*types.InterestProfile, error)
	// ApplyInteraction upserts the viewer's profile in one statement: the
	// class score moves by delta (clamped to [0,100] in SQL), the running
	// averages fold in the new sample, and the interaction count increments.
	ApplyInteraction(dbc dbctx.Context, viewerID uuid.UUID, class types.ContentClass, delta int, watchTimeMs int64, completion float64) error
}

type interestProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterestProfileRepo(db *gorm.DB, baseLog *logger.Logger) InterestProfileRepo {
	return &interestProfileRepo{db: db, log: baseLog.With("repo", "InterestProfileRepo")}
}

func (r *interestProfileRepo) GetByViewerID(dbc dbctx.Context, viewerID uuid.UUID) (*types.InterestProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil {
		return nil, nil
	}
	var row types.InterestProfile
	if err := t.WithContext(dbc.Ctx).Where("viewer_id = ?", viewerID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ViewerID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *interestProfileRepo) ApplyInteraction(dbc dbctx.Context, viewerID uuid.UUID, class types.ContentClass, delta int, watchTimeMs int64, completion float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil {
		return nil
	}
	col, ok := classColumns[class]
	if !ok {
		return fmt.Errorf("interest profile: unknown content class %q", class)
	}

	now := time.Now().UTC()
	row := &types.InterestProfile{
		ViewerID:         viewerID,
		VideoScore:       50,
		VoiceScore:       50,
		PhotoScore:       50,
		TextScore:        50,
		AvgWatchTimeMs:   float64(watchTimeMs),
		AvgCompletion:    completion,
		InteractionCount: 1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	seeded := clampScore(50 + delta)
	switch class {
	case types.ClassVideo:
		row.VideoScore = seeded
	case types.ClassVoice:
		row.VoiceScore = seeded
	case types.ClassPhoto:
		row.PhotoScore = seeded
	case types.ClassText:
		row.TextScore = seeded
	}

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "viewer_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				col: gorm.Expr(
					fmt.Sprintf("LEAST(100, GREATEST(0, interest_profile.%s + ?))", col), delta),
				"avg_watch_time_ms": gorm.Expr(
					"(interest_profile.avg_watch_time_ms * interest_profile.interaction_count + ?) / (interest_profile.interaction_count + 1)",
					float64(watchTimeMs)),
				"avg_completion": gorm.Expr(
					"(interest_profile.avg_completion * interest_profile.interaction_count + ?) / (interest_profile.interaction_count + 1)",
					completion),
				"interaction_count": gorm.Expr("interest_profile.interaction_count + 1"),
				"updated_at":        now,
			}),
		}).
		Create(row).Error
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
