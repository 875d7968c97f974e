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

type SeenRecordRepo interface {
	// Mark records the item as shown to the viewer; a repeat sighting extends
	// the expiry.
	Mark(dbc dbctx.Context, viewerID, itemID uuid.UUID, itemType types.SeenItemType, sessionID string, ttl time.Duration) error
	// ActiveItemIDs returns items whose seen record has not expired. Queries
	// filter on expires_at, so stale rows the sweep has not reached yet are
	// harmless.
	ActiveItemIDs(dbc dbctx.Context, viewerID uuid.UUID, itemType types.SeenItemType) ([]uuid.UUID, error)
	// DeleteExpired removes rows past expiry; advisory cleanup only.
	DeleteExpired(dbc dbctx.Context) (int64, error)
}

type seenRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeenRecordRepo(db *gorm.DB, baseLog *logger.Logger) SeenRecordRepo {
	return &seenRecordRepo{db: db, log: baseLog.With("repo", "SeenRecordRepo")}
}

func (r *seenRecordRepo) Mark(dbc dbctx.Context, viewerID, itemID uuid.UUID, itemType types.SeenItemType, sessionID string, ttl time.Duration) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || itemID == uuid.Nil || ttl <= 0 {
		return nil
	}
	now := time.Now().UTC()
	row := &types.SeenRecord{
		ID:        uuid.New(),
		ViewerID:  viewerID,
		ItemID:    itemID,
		ItemType:  itemType,
		SessionID: sessionID,
		SeenAt:    now,
		ExpiresAt: now.Add(ttl),
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "viewer_id"}, {Name: "item_id"}, {Name: "item_type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"seen_at":    now,
				"expires_at": now.Add(ttl),
				"session_id": sessionID,
			}),
		}).
		Create(row).Error
}

func (r *seenRecordRepo) ActiveItemIDs(dbc dbctx.Context, viewerID uuid.UUID, itemType types.SeenItemType) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.SeenRecord{}).
		Where("viewer_id = ? AND item_type = ?", viewerID, itemType).
		Where("expires_at > ?", time.Now().UTC()).
		Pluck("item_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *seenRecordRepo) DeleteExpired(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&types.SeenRecord{})
	return res.RowsAffected, res.Error
}
