package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

var engagementKinds = []types.InteractionKind{
	types.KindLike, types.KindSave, types.KindShare, types.KindComment,
}

type InteractionLogRepo interface {
	Append(dbc dbctx.Context, row *types.InteractionEvent) error
	// RecentEngagerIDs returns viewers who engaged with the creator's content
	// since the given time, most recent first.
	RecentEngagerIDs(dbc dbctx.Context, creatorID uuid.UUID, since time.Time, limit int) ([]uuid.UUID, error)
	// LikeOverlapViewerIDs returns other viewers who liked content the viewer
	// also liked recently.
	LikeOverlapViewerIDs(dbc dbctx.Context, viewerID uuid.UUID, since time.Time, limit int) ([]uuid.UUID, error)
	// CoEngagementCounts returns, per candidate, how many distinct content
	// items both the viewer and the candidate engaged with.
	CoEngagementCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
}

type interactionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionLogRepo(db *gorm.DB, baseLog *logger.Logger) InteractionLogRepo {
	return &interactionLogRepo{db: db, log: baseLog.With("repo", "InteractionLogRepo")}
}

func (r *interactionLogRepo) Append(dbc dbctx.Context, row *types.InteractionEvent) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *interactionLogRepo) RecentEngagerIDs(dbc dbctx.Context, creatorID uuid.UUID, since time.Time, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if creatorID == uuid.Nil || limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.InteractionEvent{}).
		Distinct("viewer_id").
		Where("creator_id = ?", creatorID).
		Where("viewer_id <> ?", creatorID).
		Where("kind IN ?", engagementKinds).
		Where("created_at >= ?", since).
		Limit(limit).
		Pluck("viewer_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *interactionLogRepo) LikeOverlapViewerIDs(dbc dbctx.Context, viewerID uuid.UUID, since time.Time, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).Raw(`
SELECT DISTINCT e2.viewer_id
FROM interaction_event e1
JOIN interaction_event e2 ON e1.content_id = e2.content_id
WHERE e1.viewer_id = ?
  AND e2.viewer_id <> ?
  AND e1.kind = ?
  AND e2.kind = ?
  AND e1.created_at >= ?
  AND e2.created_at >= ?
LIMIT ?`,
		viewerID, viewerID, types.KindLike, types.KindLike, since, since, limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *interactionLogRepo) CoEngagementCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]int{}
	if viewerID == uuid.Nil || len(candidateIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ViewerID uuid.UUID
		N        int
	}
	err := t.WithContext(dbc.Ctx).Raw(`
SELECT e2.viewer_id AS viewer_id, COUNT(DISTINCT e2.content_id) AS n
FROM interaction_event e1
JOIN interaction_event e2 ON e1.content_id = e2.content_id
WHERE e1.viewer_id = ?
  AND e2.viewer_id IN ?
  AND e1.kind IN ?
  AND e2.kind IN ?
  AND e1.created_at >= ?
  AND e2.created_at >= ?
GROUP BY e2.viewer_id`,
		viewerID, candidateIDs, engagementKinds, engagementKinds, since, since,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ViewerID] = row.N
	}
	return out, nil
}
