package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// Repo fakes with overridable behavior. Unset functions succeed with zero
// values so each test only wires the calls it cares about.

type fakeInteractionLogRepo struct {
	appended     []*types.InteractionEvent
	appendErr    error
	engagerIDs   []uuid.UUID
	overlapIDs   []uuid.UUID
	coEngagement map[uuid.UUID]int
}

func (f *fakeInteractionLogRepo) Append(_ dbctx.Context, row *types.InteractionEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, row)
	return nil
}

func (f *fakeInteractionLogRepo) RecentEngagerIDs(_ dbctx.Context, _ uuid.UUID, _ time.Time, _ int) ([]uuid.UUID, error) {
	return f.engagerIDs, nil
}

func (f *fakeInteractionLogRepo) LikeOverlapViewerIDs(_ dbctx.Context, _ uuid.UUID, _ time.Time, _ int) ([]uuid.UUID, error) {
	return f.overlapIDs, nil
}

func (f *fakeInteractionLogRepo) CoEngagementCounts(_ dbctx.Context, _ uuid.UUID, _ []uuid.UUID, _ time.Time) (map[uuid.UUID]int, error) {
	if f.coEngagement == nil {
		return map[uuid.UUID]int{}, nil
	}
	return f.coEngagement, nil
}

type profileApply struct {
	ViewerID    uuid.UUID
	Class       types.ContentClass
	Delta       int
	WatchTimeMs int64
	Completion  float64
}

type fakeInterestProfileRepo struct {
	profile  *types.InterestProfile
	getErr   error
	applied  []profileApply
	applyErr error
}

func (f *fakeInterestProfileRepo) GetByViewerID(_ dbctx.Context, _ uuid.UUID) (*types.InterestProfile, error) {
	return f.profile, f.getErr
}

func (f *fakeInterestProfileRepo) ApplyInteraction(_ dbctx.Context, viewerID uuid.UUID, class types.ContentClass, delta int, watchTimeMs int64, completion float64) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, profileApply{viewerID, class, delta, watchTimeMs, completion})
	return nil
}

type affinityApply struct {
	ViewerID  uuid.UUID
	CreatorID uuid.UUID
	Kind      types.InteractionKind
	Delta     int
}

type fakeCreatorAffinityRepo struct {
	applied     []affinityApply
	viewsOnly   []uuid.UUID
	topCreators []uuid.UUID
	topErr      error
}

func (f *fakeCreatorAffinityRepo) GetByViewerAndCreator(_ dbctx.Context, _, _ uuid.UUID) (*types.CreatorAffinity, error) {
	return nil, nil
}

func (f *fakeCreatorAffinityRepo) ApplyEngagement(_ dbctx.Context, viewerID, creatorID uuid.UUID, kind types.InteractionKind, delta int, _ int64, _ float64) error {
	f.applied = append(f.applied, affinityApply{viewerID, creatorID, kind, delta})
	return nil
}

func (f *fakeCreatorAffinityRepo) RecordView(_ dbctx.Context, _, creatorID uuid.UUID, _ int64, _ float64) error {
	f.viewsOnly = append(f.viewsOnly, creatorID)
	return nil
}

func (f *fakeCreatorAffinityRepo) TopCreatorIDs(_ dbctx.Context, _ uuid.UUID, _ int) ([]uuid.UUID, error) {
	return f.topCreators, f.topErr
}

type fatigueObserve struct {
	ContentID uuid.UUID
	IsSkip    bool
}

type fakeContentFatigueRepo struct {
	observed []fatigueObserve
	rows     []*types.ContentFatigue
	rowsErr  error
}

func (f *fakeContentFatigueRepo) GetByContentID(_ dbctx.Context, _ uuid.UUID) (*types.ContentFatigue, error) {
	return nil, nil
}

func (f *fakeContentFatigueRepo) GetByContentIDs(_ dbctx.Context, _ []uuid.UUID) ([]*types.ContentFatigue, error) {
	return f.rows, f.rowsErr
}

func (f *fakeContentFatigueRepo) Observe(_ dbctx.Context, contentID uuid.UUID, _ types.ContentClass, isSkip bool, _ int64, _ float64) error {
	f.observed = append(f.observed, fatigueObserve{contentID, isSkip})
	return nil
}

type velocityIncrement struct {
	ContentID  uuid.UUID
	HourBucket int
	Kind       types.InteractionKind
}

type fakeContentVelocityRepo struct {
	incremented []velocityIncrement
	viralIDs    []uuid.UUID
	viralCalls  int
	maxScores   map[uuid.UUID]float64
	maxErr      error
}

func (f *fakeContentVelocityRepo) Increment(_ dbctx.Context, contentID uuid.UUID, _ types.ContentClass, hourBucket int, kind types.InteractionKind) error {
	f.incremented = append(f.incremented, velocityIncrement{contentID, hourBucket, kind})
	return nil
}

func (f *fakeContentVelocityRepo) ViralContentIDs(_ dbctx.Context, _ *types.ContentClass, _ time.Time, _ float64, _ int) ([]uuid.UUID, error) {
	f.viralCalls++
	return f.viralIDs, nil
}

func (f *fakeContentVelocityRepo) MaxScoresSince(_ dbctx.Context, _ []uuid.UUID, _ time.Time) (map[uuid.UUID]float64, error) {
	if f.maxErr != nil {
		return nil, f.maxErr
	}
	if f.maxScores == nil {
		return map[uuid.UUID]float64{}, nil
	}
	return f.maxScores, nil
}

func (f *fakeContentVelocityRepo) GetBuckets(_ dbctx.Context, _ uuid.UUID) ([]*types.ContentVelocity, error) {
	return nil, nil
}

type seenMark struct {
	ViewerID uuid.UUID
	ItemID   uuid.UUID
	ItemType types.SeenItemType
	TTL      time.Duration
}

type fakeSeenRecordRepo struct {
	marked       []seenMark
	markErr      error
	activeByType map[types.SeenItemType][]uuid.UUID
	activeErr    error
	purged       int64
	purgeErr     error
}

func (f *fakeSeenRecordRepo) Mark(_ dbctx.Context, viewerID, itemID uuid.UUID, itemType types.SeenItemType, _ string, ttl time.Duration) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, seenMark{viewerID, itemID, itemType, ttl})
	return nil
}

func (f *fakeSeenRecordRepo) ActiveItemIDs(_ dbctx.Context, _ uuid.UUID, itemType types.SeenItemType) ([]uuid.UUID, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.activeByType[itemType], nil
}

func (f *fakeSeenRecordRepo) DeleteExpired(_ dbctx.Context) (int64, error) {
	return f.purged, f.purgeErr
}

type fakeContentRepo struct {
	byID          map[uuid.UUID]*types.Content
	candidates    []*types.Content
	listErr       error
	creatorCounts map[uuid.UUID]int64
}

func (f *fakeContentRepo) GetByID(_ dbctx.Context, contentID uuid.UUID) (*types.Content, error) {
	return f.byID[contentID], nil
}

func (f *fakeContentRepo) GetByIDs(_ dbctx.Context, contentIDs []uuid.UUID) ([]*types.Content, error) {
	out := make([]*types.Content, 0, len(contentIDs))
	for _, id := range contentIDs {
		if c := f.byID[id]; c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) ListCandidates(_ dbctx.Context, class types.ContentClass, excludeCreator uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*types.Content, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	excluded := map[uuid.UUID]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := make([]*types.Content, 0, len(f.candidates))
	for _, c := range f.candidates {
		if c.Class != class || c.CreatorID == excludeCreator || excluded[c.ID] {
			continue
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeContentRepo) CountByCreatorSince(_ dbctx.Context, creatorID uuid.UUID, _ time.Time) (int64, error) {
	return f.creatorCounts[creatorID], nil
}

type fakeUserRepo struct {
	byID         map[uuid.UUID]*types.User
	following    []uuid.UUID
	followingErr error
	followers    []uuid.UUID
	secondDegree []uuid.UUID
	newlyJoined  []uuid.UUID
	active       []uuid.UUID
	mutuals      map[uuid.UUID]int
	mutualsErr   error
	shared       map[uuid.UUID]int
	followsBack  map[uuid.UUID]bool
}

func (f *fakeUserRepo) GetByID(_ dbctx.Context, userID uuid.UUID) (*types.User, error) {
	return f.byID[userID], nil
}

func (f *fakeUserRepo) GetByIDs(_ dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	out := make([]*types.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u := f.byID[id]; u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FollowingIDs(_ dbctx.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	if f.followingErr != nil {
		return nil, f.followingErr
	}
	return f.following, nil
}

func (f *fakeUserRepo) FollowerIDs(_ dbctx.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return f.followers, nil
}

func (f *fakeUserRepo) SecondDegreeIDs(_ dbctx.Context, _ uuid.UUID, _ int) ([]uuid.UUID, error) {
	return f.secondDegree, nil
}

func (f *fakeUserRepo) NewlyJoinedIDs(_ dbctx.Context, _ time.Time, _ int) ([]uuid.UUID, error) {
	return f.newlyJoined, nil
}

func (f *fakeUserRepo) RecentlyActiveIDs(_ dbctx.Context, _ int) ([]uuid.UUID, error) {
	return f.active, nil
}

func (f *fakeUserRepo) MutualCounts(_ dbctx.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]int, error) {
	if f.mutualsErr != nil {
		return nil, f.mutualsErr
	}
	if f.mutuals == nil {
		return map[uuid.UUID]int{}, nil
	}
	return f.mutuals, nil
}

func (f *fakeUserRepo) SharedFolloweeCounts(_ dbctx.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]int, error) {
	if f.shared == nil {
		return map[uuid.UUID]int{}, nil
	}
	return f.shared, nil
}

func (f *fakeUserRepo) FollowsViewer(_ dbctx.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]bool, error) {
	if f.followsBack == nil {
		return map[uuid.UUID]bool{}, nil
	}
	return f.followsBack, nil
}
