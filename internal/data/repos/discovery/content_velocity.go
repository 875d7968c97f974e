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

// velocityWeights maps interaction kinds to their contribution in the bucket
// score. Kinds absent here (skip, rewatch) do not feed velocity.
var velocityWeights = map[types.InteractionKind]float64{
	types.KindView:    1.0,
	types.KindLike:    2.0,
	types.KindSave:    3.0,
	types.KindShare:   4.0,
	types.KindComment: 2.5,
}

var velocityCounterColumns = map[types.InteractionKind]string{
	types.KindView:    "views",
	types.KindLike:    "likes",
	types.KindSave:    "saves",
	types.KindShare:   "shares",
	types.KindComment: "comments",
}

// VelocityWeight reports the scoring weight for a kind; ok is false for kinds
// that velocity ignores.
func VelocityWeight(kind types.InteractionKind) (float64, bool) {
	w, ok := velocityWeights[kind]
	return w, ok
}

type ContentVelocityRepo interface {
	// Increment upserts the (content, hour bucket) row, bumping the kind's
	// counter and recomputing the bucket's velocity score in the same
	// statement. Kinds without a velocity weight are a no-op.
	Increment(dbc dbctx.Context, contentID uuid.UUID, class types.ContentClass, hourBucket int, kind types.InteractionKind) error
	// ViralContentIDs returns distinct content whose best bucket inside the
	// window beats the threshold, highest first.
	ViralContentIDs(dbc dbctx.Context, class *types.ContentClass, since time.Time, threshold float64, limit int) ([]uuid.UUID, error)
	// MaxScoresSince returns each item's best bucket score recorded within
	// the window.
	MaxScoresSince(dbc dbctx.Context, contentIDs []uuid.UUID, since time.Time) (map[uuid.UUID]float64, error)
	GetBuckets(dbc dbctx.Context, contentID uuid.UUID) ([]*types.ContentVelocity, error)
}

type contentVelocityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentVelocityRepo(db *gorm.DB, baseLog *logger.Logger) ContentVelocityRepo {
	return &contentVelocityRepo{db: db, log: baseLog.With("repo", "ContentVelocityRepo")}
}

func (r *contentVelocityRepo) Increment(dbc dbctx.Context, contentID uuid.UUID, class types.ContentClass, hourBucket int, kind types.InteractionKind) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contentID == uuid.Nil || hourBucket < 0 {
		return nil
	}
	counter, ok := velocityCounterColumns[kind]
	if !ok {
		return nil
	}

	divisor := hourBucket + 1
	if divisor < 1 {
		divisor = 1
	}

	now := time.Now().UTC()
	row := &types.ContentVelocity{
		ID:            uuid.New(),
		ContentID:     contentID,
		HourBucket:    hourBucket,
		Class:         class,
		VelocityScore: velocityWeights[kind] / float64(divisor),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	switch kind {
	case types.KindView:
		row.Views = 1
	case types.KindLike:
		row.Likes = 1
	case types.KindSave:
		row.Saves = 1
	case types.KindShare:
		row.Shares = 1
	case types.KindComment:
		row.Comments = 1
	}

	// The score expression folds the in-flight increment into the counter it
	// touches, since assignments see pre-update column values.
	inc := func(col string) string {
		if col == counter {
			return fmt.Sprintf("(content_velocity.%s + 1)", col)
		}
		return "content_velocity." + col
	}
	scoreExpr := fmt.Sprintf(
		"(%s * 1.0 + %s * 2.0 + %s * 3.0 + %s * 4.0 + %s * 2.5) / %d",
		inc("views"), inc("likes"), inc("saves"), inc("shares"), inc("comments"), divisor,
	)

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_id"}, {Name: "hour_bucket"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				counter:          gorm.Expr("content_velocity." + counter + " + 1"),
				"velocity_score": gorm.Expr(scoreExpr),
				"updated_at":     now,
			}),
		}).
		Create(row).Error
}

func (r *contentVelocityRepo) ViralContentIDs(dbc dbctx.Context, class *types.ContentClass, since time.Time, threshold float64, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.ContentVelocity{}).
		Select("content_id").
		Where("updated_at >= ?", since).
		Group("content_id").
		Having("MAX(velocity_score) > ?", threshold).
		Order("MAX(velocity_score) DESC").
		Limit(limit)
	if class != nil {
		q = q.Where("class = ?", *class)
	}
	var ids []uuid.UUID
	if err := q.Pluck("content_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *contentVelocityRepo) MaxScoresSince(dbc dbctx.Context, contentIDs []uuid.UUID, since time.Time) (map[uuid.UUID]float64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]float64{}
	if len(contentIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ContentID uuid.UUID
		Score     float64
	}
	err := t.WithContext(dbc.Ctx).
		Model(&types.ContentVelocity{}).
		Select("content_id, MAX(velocity_score) AS score").
		Where("content_id IN ?", contentIDs).
		Where("updated_at >= ?", since).
		Group("content_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ContentID] = row.Score
	}
	return out, nil
}

func (r *contentVelocityRepo) GetBuckets(dbc dbctx.Context, contentID uuid.UUID) ([]*types.ContentVelocity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if contentID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.ContentVelocity
	if err := t.WithContext(dbc.Ctx).
		Where("content_id = ?", contentID).
		Order("hour_bucket ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
