package discovery

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
)

func TestInterestProfileApplyInteraction(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewInterestProfileRepo(gdb, testutil.Logger(t))

	viewerID := uuid.New()

	// First interaction creates the profile seeded from the neutral 50.
	if err := repo.ApplyInteraction(dbc, viewerID, types.ClassVideo, 10, 12000, 1.0); err != nil {
		t.Fatalf("ApplyInteraction: %v", err)
	}
	p, err := repo.GetByViewerID(dbc, viewerID)
	if err != nil {
		t.Fatalf("GetByViewerID: %v", err)
	}
	if p == nil {
		t.Fatal("profile should exist after the first interaction")
	}
	if p.VideoScore != 60 {
		t.Fatalf("a save moves the class score 50 -> 60, got %d", p.VideoScore)
	}
	if p.VoiceScore != 50 || p.PhotoScore != 50 || p.TextScore != 50 {
		t.Fatalf("other class scores stay neutral, got %+v", p)
	}
	if p.InteractionCount != 1 || p.AvgWatchTimeMs != 12000 || p.AvgCompletion != 1.0 {
		t.Fatalf("first sample seeds the averages, got %+v", p)
	}

	// Second interaction folds into the running means.
	if err := repo.ApplyInteraction(dbc, viewerID, types.ClassVideo, 3, 6000, 0.5); err != nil {
		t.Fatalf("ApplyInteraction: %v", err)
	}
	p, err = repo.GetByViewerID(dbc, viewerID)
	if err != nil {
		t.Fatalf("GetByViewerID: %v", err)
	}
	if p.VideoScore != 63 {
		t.Fatalf("like moves 60 -> 63, got %d", p.VideoScore)
	}
	if p.InteractionCount != 2 {
		t.Fatalf("interaction count should be 2, got %d", p.InteractionCount)
	}
	if math.Abs(p.AvgWatchTimeMs-9000) > 1e-6 {
		t.Fatalf("running watch-time mean: got %.2f, want 9000", p.AvgWatchTimeMs)
	}
	if math.Abs(p.AvgCompletion-0.75) > 1e-6 {
		t.Fatalf("running completion mean: got %.4f, want 0.75", p.AvgCompletion)
	}
}

func TestInterestProfileScoresStayClamped(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewInterestProfileRepo(gdb, testutil.Logger(t))

	viewerID := uuid.New()
	for i := 0; i < 10; i++ {
		if err := repo.ApplyInteraction(dbc, viewerID, types.ClassPhoto, 15, 0, 0); err != nil {
			t.Fatalf("ApplyInteraction: %v", err)
		}
	}
	p, err := repo.GetByViewerID(dbc, viewerID)
	if err != nil {
		t.Fatalf("GetByViewerID: %v", err)
	}
	if p.PhotoScore != 100 {
		t.Fatalf("score must clamp at 100, got %d", p.PhotoScore)
	}

	for i := 0; i < 30; i++ {
		if err := repo.ApplyInteraction(dbc, viewerID, types.ClassPhoto, -5, 0, 0); err != nil {
			t.Fatalf("ApplyInteraction: %v", err)
		}
	}
	p, err = repo.GetByViewerID(dbc, viewerID)
	if err != nil {
		t.Fatalf("GetByViewerID: %v", err)
	}
	if p.PhotoScore != 0 {
		t.Fatalf("score must clamp at 0, got %d", p.PhotoScore)
	}
}

func TestInterestProfileUnknownClassRejected(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewInterestProfileRepo(gdb, testutil.Logger(t))

	if err := repo.ApplyInteraction(dbc, uuid.New(), "hologram", 10, 0, 0); err == nil {
		t.Fatal("unknown class must be rejected")
	}
}
