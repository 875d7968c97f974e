package discovery

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
)

func TestContentVelocityBucketScore(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewContentVelocityRepo(gdb, testutil.Logger(t))

	contentID := uuid.New()

	// 10 likes, 2 shares, 1 save in hour bucket 0:
	// (10*2 + 2*4 + 1*3) / 1 = 31.0
	for i := 0; i < 10; i++ {
		if err := repo.Increment(dbc, contentID, types.ClassVideo, 0, types.KindLike); err != nil {
			t.Fatalf("Increment like: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := repo.Increment(dbc, contentID, types.ClassVideo, 0, types.KindShare); err != nil {
			t.Fatalf("Increment share: %v", err)
		}
	}
	if err := repo.Increment(dbc, contentID, types.ClassVideo, 0, types.KindSave); err != nil {
		t.Fatalf("Increment save: %v", err)
	}

	buckets, err := repo.GetBuckets(dbc, contentID)
	if err != nil {
		t.Fatalf("GetBuckets: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected a single bucket, got %d", len(buckets))
	}
	b := buckets[0]
	if b.Likes != 10 || b.Shares != 2 || b.Saves != 1 {
		t.Fatalf("counters: %+v", b)
	}
	if math.Abs(b.VelocityScore-31.0) > 1e-6 {
		t.Fatalf("velocity score: got %.4f, want 31.0", b.VelocityScore)
	}

	ids, err := repo.ViralContentIDs(dbc, nil, time.Now().UTC().Add(-24*time.Hour), 5.0, 10)
	if err != nil {
		t.Fatalf("ViralContentIDs: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == contentID {
			found = true
		}
	}
	if !found {
		t.Fatal("a bucket at 31.0 must clear the 5.0 viral threshold")
	}
}

func TestContentVelocityDividesByBucketAge(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewContentVelocityRepo(gdb, testutil.Logger(t))

	contentID := uuid.New()
	// 4 shares in hour bucket 3: (4*4) / 4 = 4.0
	for i := 0; i < 4; i++ {
		if err := repo.Increment(dbc, contentID, types.ClassPhoto, 3, types.KindShare); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	buckets, err := repo.GetBuckets(dbc, contentID)
	if err != nil {
		t.Fatalf("GetBuckets: %v", err)
	}
	if len(buckets) != 1 || math.Abs(buckets[0].VelocityScore-4.0) > 1e-6 {
		t.Fatalf("expected one bucket at 4.0, got %+v", buckets)
	}

	// Below the threshold, so not viral.
	ids, err := repo.ViralContentIDs(dbc, nil, time.Now().UTC().Add(-24*time.Hour), 5.0, 10)
	if err != nil {
		t.Fatalf("ViralContentIDs: %v", err)
	}
	for _, id := range ids {
		if id == contentID {
			t.Fatal("4.0 must not clear the 5.0 threshold")
		}
	}
}

func TestContentVelocityIgnoredKinds(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewContentVelocityRepo(gdb, testutil.Logger(t))

	contentID := uuid.New()
	if err := repo.Increment(dbc, contentID, types.ClassVideo, 0, types.KindSkip); err != nil {
		t.Fatalf("Increment skip: %v", err)
	}
	buckets, err := repo.GetBuckets(dbc, contentID)
	if err != nil {
		t.Fatalf("GetBuckets: %v", err)
	}
	if len(buckets) != 0 {
		t.Fatalf("skips carry no velocity weight, got %+v", buckets)
	}
}

func TestContentVelocityMaxScoresSince(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewContentVelocityRepo(gdb, testutil.Logger(t))

	contentID := uuid.New()
	// Bucket 0 scores 2.0, bucket 1 scores 4.0/2 = 2.0 then 8.0/2 = 4.0.
	if err := repo.Increment(dbc, contentID, types.ClassVideo, 0, types.KindLike); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := repo.Increment(dbc, contentID, types.ClassVideo, 1, types.KindShare); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := repo.Increment(dbc, contentID, types.ClassVideo, 1, types.KindShare); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	scores, err := repo.MaxScoresSince(dbc, []uuid.UUID{contentID}, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("MaxScoresSince: %v", err)
	}
	if math.Abs(scores[contentID]-4.0) > 1e-6 {
		t.Fatalf("max bucket score: got %.4f, want 4.0", scores[contentID])
	}
}
