package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

type ContentRepo interface {
	// GetByID returns errors.ErrNotFound when no such item exists.
	GetByID(dbc dbctx.Context, contentID uuid.UUID) (*types.Content, error)
	GetByIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.Content, error)
	// ListCandidates pulls public content of the class, excluding the
	// viewer's own items and any excluded IDs, newest first.
	ListCandidates(dbc dbctx.Context, class types.ContentClass, excludeCreator uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*types.Content, error)
	// CountByCreatorSince reports how many items the creator published after
	// the given time.
	CountByCreatorSince(dbc dbctx.Context, creatorID uuid.UUID, since time.Time) (int64, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) GetByID(dbc dbctx.Context, contentID uuid.UUID) (*types.Content, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contentID == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	var row types.Content
	if err := t.WithContext(dbc.Ctx).Where("id = ?", contentID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return &row, nil
}

func (r *contentRepo) GetByIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.Content, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Content
	if len(contentIDs) == 0 {
		return rows, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", contentIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentRepo) ListCandidates(dbc dbctx.Context, class types.ContentClass, excludeCreator uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*types.Content, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx).
		Where("visibility = ?", types.VisibilityPublic).
		Where("class = ?", class)
	if excludeCreator != uuid.Nil {
		q = q.Where("creator_id <> ?", excludeCreator)
	}
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var rows []*types.Content
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentRepo) CountByCreatorSince(dbc dbctx.Context, creatorID uuid.UUID, since time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if creatorID == uuid.Nil {
		return 0, nil
	}
	var count int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.Content{}).
		Where("creator_id = ?", creatorID).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
