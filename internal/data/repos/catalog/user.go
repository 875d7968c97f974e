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

type UserRepo interface {
	// GetByID returns errors.ErrNotFound when no such user exists.
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	FollowingIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// SecondDegreeIDs walks the follow graph two hops out from the viewer.
	SecondDegreeIDs(dbc dbctx.Context, viewerID uuid.UUID, limit int) ([]uuid.UUID, error)
	NewlyJoinedIDs(dbc dbctx.Context, since time.Time, limit int) ([]uuid.UUID, error)
	// RecentlyActiveIDs returns accounts ordered by most recent activity.
	RecentlyActiveIDs(dbc dbctx.Context, limit int) ([]uuid.UUID, error)
	// MutualCounts returns, per candidate, how many accounts the viewer
	// follows that also follow the candidate.
	MutualCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]int, error)
	// SharedFolloweeCounts returns, per candidate, how many accounts both the
	// viewer and the candidate follow.
	SharedFolloweeCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]int, error)
	// FollowsViewer reports which candidates already follow the viewer.
	FollowsViewer(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	var row types.User
	if err := t.WithContext(dbc.Ctx).Where("id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return &row, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.User
	if len(userIDs) == 0 {
		return rows, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepo) FollowingIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepo) FollowerIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepo) SecondDegreeIDs(dbc dbctx.Context, viewerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if viewerID == uuid.Nil || limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).Raw(`
SELECT DISTINCT f2.followee_id
FROM follow f1
JOIN follow f2 ON f1.followee_id = f2.follower_id
WHERE f1.follower_id = ?
  AND f2.followee_id <> ?
  AND f2.followee_id NOT IN (SELECT followee_id FROM follow WHERE follower_id = ?)
LIMIT ?`,
		viewerID, viewerID, viewerID, limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepo) NewlyJoinedIDs(dbc dbctx.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepo) RecentlyActiveIDs(dbc dbctx.Context, limit int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Order("last_active_at DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepo) MutualCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]int{}
	if viewerID == uuid.Nil || len(candidateIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CandidateID uuid.UUID
		N           int
	}
	err := t.WithContext(dbc.Ctx).Raw(`
SELECT f2.followee_id AS candidate_id, COUNT(*) AS n
FROM follow f1
JOIN follow f2 ON f1.followee_id = f2.follower_id
WHERE f1.follower_id = ?
  AND f2.followee_id IN ?
GROUP BY f2.followee_id`,
		viewerID, candidateIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CandidateID] = row.N
	}
	return out, nil
}

func (r *userRepo) SharedFolloweeCounts(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]int{}
	if viewerID == uuid.Nil || len(candidateIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CandidateID uuid.UUID
		N           int
	}
	err := t.WithContext(dbc.Ctx).Raw(`
SELECT f2.follower_id AS candidate_id, COUNT(*) AS n
FROM follow f1
JOIN follow f2 ON f1.followee_id = f2.followee_id
WHERE f1.follower_id = ?
  AND f2.follower_id IN ?
GROUP BY f2.follower_id`,
		viewerID, candidateIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CandidateID] = row.N
	}
	return out, nil
}

func (r *userRepo) FollowsViewer(dbc dbctx.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]bool{}
	if viewerID == uuid.Nil || len(candidateIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := t.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("followee_id = ?", viewerID).
		Where("follower_id IN ?", candidateIDs).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
