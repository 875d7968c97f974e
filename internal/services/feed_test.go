package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
)

type feedFixture struct {
	svc      FeedService
	users    *fakeUserRepo
	content  *fakeContentRepo
	profiles *fakeInterestProfileRepo
	affinity *fakeCreatorAffinityRepo
	fatigue  *fakeContentFatigueRepo
	velocity *fakeContentVelocityRepo
	seen     *fakeSeenRecordRepo
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	f := &feedFixture{
		users:    &fakeUserRepo{byID: map[uuid.UUID]*types.User{}},
		content:  &fakeContentRepo{byID: map[uuid.UUID]*types.Content{}},
		profiles: &fakeInterestProfileRepo{},
		affinity: &fakeCreatorAffinityRepo{},
		fatigue:  &fakeContentFatigueRepo{},
		velocity: &fakeContentVelocityRepo{},
		seen:     &fakeSeenRecordRepo{activeByType: map[types.SeenItemType][]uuid.UUID{}},
	}
	f.svc = NewFeedService(nil, testLogger(t),
		f.content, f.users, f.profiles, f.affinity, f.fatigue, f.velocity, f.seen, nil, nil)
	return f
}

func (f *feedFixture) seedContent(n int, class types.ContentClass) []*types.Content {
	now := time.Now().UTC()
	out := make([]*types.Content, 0, n)
	for i := 0; i < n; i++ {
		c := &types.Content{
			ID:         uuid.New(),
			CreatorID:  uuid.New(),
			Class:      class,
			Visibility: types.VisibilityPublic,
			LikeCount:  int64(i * 3),
			CreatedAt:  now.Add(-time.Duration(i) * time.Hour),
		}
		f.content.byID[c.ID] = c
		f.content.candidates = append(f.content.candidates, c)
		out = append(out, c)
	}
	return out
}

func TestGetPersonalizedFeedReturnsPage(t *testing.T) {
	f := newFeedFixture(t)
	f.seedContent(30, types.ClassVideo)
	viewerID := uuid.New()

	page, err := f.svc.GetPersonalizedFeed(context.Background(), viewerID, types.ClassVideo, 10, "sess-1")
	if err != nil {
		t.Fatalf("GetPersonalizedFeed: %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page))
	}
	for _, item := range page {
		if item.Content == nil {
			t.Fatal("every ranked item must carry its content row")
		}
		if item.Content.Class != types.ClassVideo {
			t.Fatalf("class filter leaked: got %s", item.Content.Class)
		}
		if len(item.Breakdown) == 0 {
			t.Fatal("score breakdown missing")
		}
	}
	if len(f.seen.marked) != 10 {
		t.Fatalf("served items must be marked seen, got %d marks", len(f.seen.marked))
	}
	for _, m := range f.seen.marked {
		if m.ItemType != types.SeenItemContent || m.TTL != seenContentTTL {
			t.Fatalf("content marks use the content TTL, got %+v", m)
		}
	}
}

func TestGetPersonalizedFeedExactPoolServedOnce(t *testing.T) {
	f := newFeedFixture(t)
	items := f.seedContent(20, types.ClassVideo)
	viewerID := uuid.New()

	page, err := f.svc.GetPersonalizedFeed(context.Background(), viewerID, types.ClassVideo, 20, "sess-1")
	if err != nil {
		t.Fatalf("GetPersonalizedFeed: %v", err)
	}
	if len(page) != 20 {
		t.Fatalf("a pool of exactly 20 distinct creators fills the page, got %d", len(page))
	}
	seen := map[uuid.UUID]bool{}
	perCreator := map[uuid.UUID]int{}
	for _, item := range page {
		if seen[item.Content.ID] {
			t.Fatalf("item %s served twice", item.Content.ID)
		}
		seen[item.Content.ID] = true
		perCreator[item.Content.CreatorID]++
	}
	if len(seen) != len(items) {
		t.Fatalf("every pooled item appears exactly once, got %d distinct", len(seen))
	}
	for id, n := range perCreator {
		if n > contentMaxPerCreator {
			t.Fatalf("creator %s exceeds the per-page cap: %d", id, n)
		}
	}
}

func TestGetPersonalizedFeedEmptyPoolIsNotAnError(t *testing.T) {
	f := newFeedFixture(t)
	viewerID := uuid.New()

	page, err := f.svc.GetPersonalizedFeed(context.Background(), viewerID, types.ClassVoice, 10, "sess-1")
	if err != nil {
		t.Fatalf("empty pool must not error: %v", err)
	}
	if page == nil || len(page) != 0 {
		t.Fatalf("expected an empty page, got %v", page)
	}
}

func TestGetPersonalizedFeedExcludesSeen(t *testing.T) {
	f := newFeedFixture(t)
	items := f.seedContent(5, types.ClassVideo)
	viewerID := uuid.New()
	f.seen.activeByType[types.SeenItemContent] = []uuid.UUID{items[0].ID, items[1].ID}

	page, err := f.svc.GetPersonalizedFeed(context.Background(), viewerID, types.ClassVideo, 10, "sess-1")
	if err != nil {
		t.Fatalf("GetPersonalizedFeed: %v", err)
	}
	for _, item := range page {
		if item.Content.ID == items[0].ID || item.Content.ID == items[1].ID {
			t.Fatal("unexpired seen items must not be served again")
		}
	}
	if len(page) != 3 {
		t.Fatalf("expected the 3 unseen items, got %d", len(page))
	}
}

func TestGetPersonalizedFeedDeterministicPerSession(t *testing.T) {
	f := newFeedFixture(t)
	f.seedContent(40, types.ClassVideo)
	viewerID := uuid.New()

	order := func(sessionID string) string {
		// A fresh fixture view each time: clear the seen marks so the second
		// request sees the same pool.
		f.seen.marked = nil
		page, err := f.svc.GetPersonalizedFeed(context.Background(), viewerID, types.ClassVideo, 10, sessionID)
		if err != nil {
			t.Fatalf("GetPersonalizedFeed: %v", err)
		}
		s := ""
		for _, item := range page {
			s += item.Content.ID.String() + "|"
		}
		return s
	}

	a1 := order("session-A")
	a2 := order("session-A")
	if a1 != a2 {
		t.Fatal("same session must reproduce the same page")
	}
	b := order("session-B")
	if a1 == b {
		t.Fatal("a new session should reshuffle within score tiers")
	}
}

func TestGetPersonalizedFeedRejectsBadInput(t *testing.T) {
	f := newFeedFixture(t)
	if _, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.Nil, types.ClassVideo, 10, ""); err == nil {
		t.Fatal("nil viewer must be rejected")
	}
	if _, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.New(), "hologram", 10, ""); err == nil {
		t.Fatal("unknown class must be rejected")
	}
	if _, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.New(), types.ClassVideo, -1, ""); err == nil {
		t.Fatal("negative limit must be rejected")
	}
}

func TestGetPersonalizedFeedDegradesWhenSignalLoadsFail(t *testing.T) {
	f := newFeedFixture(t)
	f.seedContent(10, types.ClassVideo)
	down := errors.New("connection timed out")
	f.profiles.getErr = down
	f.affinity.topErr = down
	f.fatigue.rowsErr = down
	f.velocity.maxErr = down
	f.users.followingErr = down

	page, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.New(), types.ClassVideo, 10, "sess-1")
	if err != nil {
		t.Fatalf("signal failures must degrade, not fail the page: %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("expected a full page despite failing signals, got %d", len(page))
	}
	for _, item := range page {
		if item.Breakdown["class_preference"] != 50 {
			t.Fatalf("a missing profile scores neutral 50, got %.1f", item.Breakdown["class_preference"])
		}
		if item.Breakdown["creator_affinity"] != 0 || item.Breakdown["velocity"] != 0 {
			t.Fatalf("failed signals must score zero, got %+v", item.Breakdown)
		}
	}
}

func TestGetPersonalizedFeedEmptyPageWhenSeenLedgerFails(t *testing.T) {
	f := newFeedFixture(t)
	f.seedContent(10, types.ClassVideo)
	f.seen.activeErr = errors.New("connection refused")

	page, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.New(), types.ClassVideo, 10, "sess-1")
	if err != nil {
		t.Fatalf("a ledger failure must degrade, not fail the page: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("without the seen ledger the page degrades to empty, got %d items", len(page))
	}
	if len(f.seen.marked) != 0 {
		t.Fatalf("nothing served means nothing marked, got %d marks", len(f.seen.marked))
	}
}

func TestGetPersonalizedFeedEmptyPageWhenCandidateLoadFails(t *testing.T) {
	f := newFeedFixture(t)
	f.seedContent(10, types.ClassVideo)
	f.content.listErr = errors.New("connection refused")

	page, err := f.svc.GetPersonalizedFeed(context.Background(), uuid.New(), types.ClassVideo, 10, "sess-1")
	if err != nil {
		t.Fatalf("a candidate load failure must degrade, not fail the page: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected an empty page, got %d items", len(page))
	}
}

func TestGetViralContentUsesCacheWhenPresent(t *testing.T) {
	f := newFeedFixture(t)
	f.velocity.viralIDs = []uuid.UUID{uuid.New(), uuid.New()}

	ids, err := f.svc.GetViralContent(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("GetViralContent: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 viral ids, got %d", len(ids))
	}
	if f.velocity.viralCalls != 1 {
		t.Fatalf("expected one store query without a cache, got %d", f.velocity.viralCalls)
	}
}
