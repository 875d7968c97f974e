package discovery

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
)

func TestSeenRecordMarkAndActive(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewSeenRecordRepo(gdb, testutil.Logger(t))

	viewerID := uuid.New()
	contentID, profileID := uuid.New(), uuid.New()

	if err := repo.Mark(dbc, viewerID, contentID, types.SeenItemContent, "sess", 24*time.Hour); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := repo.Mark(dbc, viewerID, profileID, types.SeenItemProfile, "sess", 6*time.Hour); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	ids, err := repo.ActiveItemIDs(dbc, viewerID, types.SeenItemContent)
	if err != nil {
		t.Fatalf("ActiveItemIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != contentID {
		t.Fatalf("content ledger holds only the content item, got %v", ids)
	}

	ids, err = repo.ActiveItemIDs(dbc, viewerID, types.SeenItemProfile)
	if err != nil {
		t.Fatalf("ActiveItemIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != profileID {
		t.Fatalf("profile ledger holds only the profile item, got %v", ids)
	}
}

func TestSeenRecordExpiryFiltersAndRepeatExtends(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewSeenRecordRepo(gdb, testutil.Logger(t))

	viewerID := uuid.New()
	shortLived, extended := uuid.New(), uuid.New()

	if err := repo.Mark(dbc, viewerID, shortLived, types.SeenItemContent, "sess", 30*time.Millisecond); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := repo.Mark(dbc, viewerID, extended, types.SeenItemContent, "sess", 30*time.Millisecond); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	// A repeat sighting pushes the expiry out.
	if err := repo.Mark(dbc, viewerID, extended, types.SeenItemContent, "sess-2", time.Hour); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	ids, err := repo.ActiveItemIDs(dbc, viewerID, types.SeenItemContent)
	if err != nil {
		t.Fatalf("ActiveItemIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != extended {
		t.Fatalf("only the extended record survives expiry, got %v", ids)
	}
}

func TestSeenRecordDeleteExpired(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := testutil.Ctx(t, gdb)
	repo := NewSeenRecordRepo(gdb, testutil.Logger(t))

	viewerID := uuid.New()
	if err := repo.Mark(dbc, viewerID, uuid.New(), types.SeenItemContent, "sess", 10*time.Millisecond); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := repo.Mark(dbc, viewerID, uuid.New(), types.SeenItemContent, "sess", time.Hour); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	n, err := repo.DeleteExpired(dbc)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected at least one purged row, got %d", n)
	}

	ids, err := repo.ActiveItemIDs(dbc, viewerID, types.SeenItemContent)
	if err != nil {
		t.Fatalf("ActiveItemIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("the unexpired record must survive the sweep, got %v", ids)
	}
}
