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

type CreatorAffinityRepo interface {
	GetByViewerAndCreator(dbc dbctx.Context, viewerID, creatorID uuid.UUID) (*types.CreatorAffinity, error)
	// ApplyEngagement upserts the (viewer, creator) row for a qualifying
	// interaction: affinity moves by delta, the kind's counter increments,
	// and the running averages fold in the new sample.
	ApplyEngagement(dbc dbctx.Context, viewerID, creatorID uuid.UUID, kind types.InteractionKind, delta int, watchTimeMs int64, completion float64) error
	// RecordView bumps view counters on an existing row only; plain views
	// never create affinity rows.
	RecordView(dbc dbctx.Context, viewerID, creatorID uuid.UUID, watchTimeMs int64, completion float64) error
	// TopCreatorIDs returns the viewer's highest-affinity creators.
	TopCreatorIDs(dbc dbctx.Context, viewerID uuid.UUID, limit int) ([]uuid.UUID, error)
}

type creatorAffinityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorAffinityRepo(db *gorm.DB, baseLog *logger.Logger) CreatorAffinityRepo {
	return &creatorAffinityRepo{db: db, log: baseLog.With("repo", "CreatorAffinityRepo")}
}

func (r *creatorAffinityRepo) GetByViewerAndCreator(dbc dbctx.Context, viewerID, creatorID uuid.UUID) (*types.CreatorAffinity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || creatorID == uuid.Nil {
		return nil, nil
	}
	var row types.CreatorAffinity
	if err := t.WithContext(dbc.Ctx).
		Where("viewer_id = ? AND creator_id = ?", viewerID, creatorID).
		Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func kindCounterColumn(kind types.InteractionKind) string {
	switch kind {
	case types.KindLike:
		return "like_count"
	case types.KindSave:
		return "save_count"
	case types.KindShare:
		return "share_count"
	case types.KindRewatch:
		return "view_count"
	default:
		return ""
	}
}

func (r *creatorAffinityRepo) ApplyEngagement(dbc dbctx.Context, viewerID, creatorID uuid.UUID, kind types.InteractionKind, delta int, watchTimeMs int64, completion float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || creatorID == uuid.Nil {
		return nil
	}

	now := time.Now().UTC()
	row := &types.CreatorAffinity{
		ID:                uuid.New(),
		ViewerID:          viewerID,
		CreatorID:         creatorID,
		Affinity:          delta,
		AvgWatchTimeMs:    float64(watchTimeMs),
		AvgCompletion:     completion,
		InteractionCount:  1,
		LastInteractionAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	counter := kindCounterColumn(kind)
	switch counter {
	case "like_count":
		row.LikeCount = 1
	case "save_count":
		row.SaveCount = 1
	case "share_count":
		row.ShareCount = 1
	case "view_count":
		row.ViewCount = 1
	}

	updates := map[string]interface{}{
		"affinity": gorm.Expr("creator_affinity.affinity + ?", delta),
		"avg_watch_time_ms": gorm.Expr(
			"(creator_affinity.avg_watch_time_ms * creator_affinity.interaction_count + ?) / (creator_affinity.interaction_count + 1)",
			float64(watchTimeMs)),
		"avg_completion": gorm.Expr(
			"(creator_affinity.avg_completion * creator_affinity.interaction_count + ?) / (creator_affinity.interaction_count + 1)",
			completion),
		"interaction_count":   gorm.Expr("creator_affinity.interaction_count + 1"),
		"last_interaction_at": now,
		"updated_at":          now,
	}
	if counter != "" {
		updates[counter] = gorm.Expr("creator_affinity."+counter+" + 1")
	}

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "creator_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(row).Error
}

func (r *creatorAffinityRepo) RecordView(dbc dbctx.Context, viewerID, creatorID uuid.UUID, watchTimeMs int64, completion float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || creatorID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.CreatorAffinity{}).
		Where("viewer_id = ? AND creator_id = ?", viewerID, creatorID).
		Updates(map[string]interface{}{
			"view_count": gorm.Expr("creator_affinity.view_count + 1"),
			"avg_watch_time_ms": gorm.Expr(
				"(creator_affinity.avg_watch_time_ms * creator_affinity.interaction_count + ?) / (creator_affinity.interaction_count + 1)",
				float64(watchTimeMs)),
			"avg_completion": gorm.Expr(
				"(creator_affinity.avg_completion * creator_affinity.interaction_count + ?) / (creator_affinity.interaction_count + 1)",
				completion),
			"interaction_count":   gorm.Expr("creator_affinity.interaction_count + 1"),
			"last_interaction_at": now,
			"updated_at":          now,
		}).Error
}

func (r *creatorAffinityRepo) TopCreatorIDs(dbc dbctx.Context, viewerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.CreatorAffinity{}).
		Where("viewer_id = ?", viewerID).
		Order("affinity DESC").
		Limit(limit).
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
