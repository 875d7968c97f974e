package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

const (
	fatigueSkipDelta   = 10
	fatigueEngageDelta = -2
)

type ContentFatigueRepo interface {
	GetByContentID(dbc dbctx.Context, contentID uuid.UUID) (*types.ContentFatigue, error)
	GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.ContentFatigue, error)
	// Observe upserts the item's fatigue row for one sighting: impressions
	// increment, skips conditionally increment, the skip rate and running
	// averages recompute, and fatigue moves +10 on skip / -2 otherwise,
	// clamped to [0,100] in SQL.
	Observe(dbc dbctx.Context, contentID uuid.UUID, class types.ContentClass, isSkip bool, watchTimeMs int64, completion float64) error
}

type contentFatigueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentFatigueRepo(db *gorm.DB, baseLog *logger.Logger) ContentFatigueRepo {
	return &contentFatigueRepo{db: db, log: baseLog.With("repo", "ContentFatigueRepo")}
}

func (r *contentFatigueRepo) GetByContentID(dbc dbctx.Context, contentID uuid.UUID) (*types.ContentFatigue, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contentID == uuid.Nil {
		return nil, nil
	}
	var row types.ContentFatigue
	if err := t.WithContext(dbc.Ctx).Where("content_id = ?", contentID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ContentID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *contentFatigueRepo) GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.ContentFatigue, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.ContentFatigue
	if len(contentIDs) == 0 {
		return rows, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("content_id IN ?", contentIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentFatigueRepo) Observe(dbc dbctx.Context, contentID uuid.UUID, class types.ContentClass, isSkip bool, watchTimeMs int64, completion float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contentID == uuid.Nil {
		return nil
	}

	skipInc := 0
	delta := fatigueEngageDelta
	if isSkip {
		skipInc = 1
		delta = fatigueSkipDelta
	}

	now := time.Now().UTC()
	row := &types.ContentFatigue{
		ContentID:      contentID,
		Class:          class,
		Impressions:    1,
		Skips:          int64(skipInc),
		SkipRate:       float64(skipInc),
		AvgWatchTimeMs: float64(watchTimeMs),
		AvgCompletion:  completion,
		Fatigue:        clampScore(delta),
		LastShownAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"impressions": gorm.Expr("content_fatigue.impressions + 1"),
				"skips":       gorm.Expr("content_fatigue.skips + ?", skipInc),
				"skip_rate": gorm.Expr(
					"(content_fatigue.skips + ?)::float / (content_fatigue.impressions + 1)", skipInc),
				"avg_watch_time_ms": gorm.Expr(
					"(content_fatigue.avg_watch_time_ms * content_fatigue.impressions + ?) / (content_fatigue.impressions + 1)",
					float64(watchTimeMs)),
				"avg_completion": gorm.Expr(
					"(content_fatigue.avg_completion * content_fatigue.impressions + ?) / (content_fatigue.impressions + 1)",
					completion),
				"fatigue":       gorm.Expr("LEAST(100, GREATEST(0, content_fatigue.fatigue + ?))", delta),
				"last_shown_at": now,
				"updated_at":    now,
			}),
		}).
		Create(row).Error
}
