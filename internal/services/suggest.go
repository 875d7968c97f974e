package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/pulsefeed-backend/internal/data/graph"
	catalogrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/catalog"
	discoveryrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/discovery"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/shuffle"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
	"github.com/yungbote/pulsefeed-backend/internal/platform/neo4jdb"
)

type RankedPerson struct {
	User      *types.User        `json:"user"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

type SuggestionService interface {
	// GetSuggestedPeople assembles one page of people the viewer may want to
	// follow. Sourcing strategies run concurrently and degrade independently;
	// an empty pool falls back to newly-joined and recently-active accounts.
	GetSuggestedPeople(ctx context.Context, viewerID uuid.UUID, limit int, sessionID string) ([]RankedPerson, error)
}

type suggestionService struct {
	db       *gorm.DB
	log      *logger.Logger
	graph    *neo4jdb.Client
	users    catalogrepos.UserRepo
	content  catalogrepos.ContentRepo
	eventLog discoveryrepos.InteractionLogRepo
	seen     discoveryrepos.SeenRecordRepo
}

func NewSuggestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	graphClient *neo4jdb.Client,
	users catalogrepos.UserRepo,
	content catalogrepos.ContentRepo,
	eventLog discoveryrepos.InteractionLogRepo,
	seen discoveryrepos.SeenRecordRepo,
) SuggestionService {
	return &suggestionService{
		db:       db,
		log:      baseLog.With("service", "SuggestionService"),
		graph:    graphClient,
		users:    users,
		content:  content,
		eventLog: eventLog,
		seen:     seen,
	}
}

func (s *suggestionService) GetSuggestedPeople(ctx context.Context, viewerID uuid.UUID, limit int, sessionID string) ([]RankedPerson, error) {
	if viewerID == uuid.Nil {
		return nil, fmt.Errorf("%w: viewer id required", errs.ErrInvalidArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: page size must be non-negative", errs.ErrInvalidArgument)
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	dbc := dbctx.New(ctx)
	now := time.Now().UTC()

	// The exclusion reads guard the page's guarantees (never suggest someone
	// already followed or just shown); when they fail the page degrades to
	// empty rather than risking repeats.
	var followingIDs []uuid.UUID
	err := withRetry(func() error {
		var lErr error
		followingIDs, lErr = s.users.FollowingIDs(dbc, viewerID)
		return lErr
	})
	if err != nil {
		s.log.Warn("following load failed, serving an empty page", "error", err, "viewer_id", viewerID)
		return []RankedPerson{}, nil
	}
	var seenIDs []uuid.UUID
	err = withRetry(func() error {
		var lErr error
		seenIDs, lErr = s.seen.ActiveItemIDs(dbc, viewerID, types.SeenItemProfile)
		return lErr
	})
	if err != nil {
		s.log.Warn("seen profile load failed, serving an empty page", "error", err, "viewer_id", viewerID)
		return []RankedPerson{}, nil
	}
	excluded := idSet(followingIDs)
	for _, id := range seenIDs {
		excluded[id] = true
	}
	excluded[viewerID] = true

	pool, recentEngagers := s.sourceCandidatePool(ctx, dbc, viewerID, limit, excluded)
	if len(pool) == 0 {
		pool = s.coldStartPool(dbc, limit, excluded, now)
	}
	if len(pool) == 0 {
		return []RankedPerson{}, nil
	}

	var viewer *types.User
	err = withRetry(func() error {
		var lErr error
		viewer, lErr = s.users.GetByID(dbc, viewerID)
		return lErr
	})
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("viewer load failed, scoring without viewer attributes", "error", err, "viewer_id", viewerID)
		viewer = nil
	}

	candidates := s.loadCandidates(dbc, viewerID, viewer, pool, recentEngagers, now)
	if len(candidates) == 0 {
		return []RankedPerson{}, nil
	}

	seed := sessionID
	if seed == "" {
		seed = viewerID.String()
	}
	rng := shuffle.NewFromString(seed + ":jitter")

	byID := make(map[uuid.UUID]*types.User, len(candidates))
	ranked := make([]RankedItem, 0, len(candidates))
	for _, pc := range candidates {
		score, breakdown := ScorePerson(pc, viewer, now, rng)
		byID[pc.User.ID] = pc.User
		ranked = append(ranked, RankedItem{
			ID:        pc.User.ID,
			CreatorID: pc.User.ID,
			Score:     score,
			Breakdown: breakdown,
			GroupKey:  mutualBucket(pc.MutualCount),
		})
	}

	page := Diversify(ranked, DiversifyConstraints{
		Limit:         limit,
		MaxPerCreator: 1,
		MaxPerGroup:   (limit + 2) / 3,
		Seed:          seed,
	})

	out := make([]RankedPerson, 0, len(page))
	for _, item := range page {
		out = append(out, RankedPerson{
			User:      byID[item.ID],
			Score:     item.Score,
			Breakdown: item.Breakdown,
		})
		if err := s.seen.Mark(dbc, viewerID, item.ID, types.SeenItemProfile, sessionID, seenProfileTTL); err != nil {
			s.log.Warn("seen record mark failed", "error", err, "viewer_id", viewerID)
		}
	}
	return out, nil
}

// sourceCandidatePool runs the sourcing strategies concurrently and unions
// their results. A failed strategy is logged and skipped; the pool is built
// from whatever succeeded.
func (s *suggestionService) sourceCandidatePool(ctx context.Context, dbc dbctx.Context, viewerID uuid.UUID, limit int, excluded map[uuid.UUID]bool) ([]uuid.UUID, map[uuid.UUID]bool) {
	fetch := limit * suggestionStrategyFanout
	since := time.Now().UTC().Add(-engagementLookback)

	var mu sync.Mutex
	union := map[uuid.UUID]bool{}
	order := make([]uuid.UUID, 0, fetch*5)
	recentEngagers := map[uuid.UUID]bool{}

	add := func(ids []uuid.UUID) {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range ids {
			if id == uuid.Nil || excluded[id] || union[id] {
				continue
			}
			union[id] = true
			order = append(order, id)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids, err := graph.FriendsOfFriendsIDs(gctx, s.graph, s.log, viewerID, fetch)
		if err != nil {
			s.log.Warn("friends-of-friends graph query failed, using relational fallback", "error", err)
			ids = nil
		}
		if len(ids) == 0 {
			ids, err = s.users.SecondDegreeIDs(dbc, viewerID, fetch)
			if err != nil {
				s.log.Warn("second-degree strategy failed", "error", err)
				return nil
			}
		}
		add(ids)
		return nil
	})

	g.Go(func() error {
		ids, err := s.users.FollowerIDs(dbc, viewerID)
		if err != nil {
			s.log.Warn("followers strategy failed", "error", err)
			return nil
		}
		if len(ids) > fetch {
			ids = ids[:fetch]
		}
		add(ids)
		return nil
	})

	g.Go(func() error {
		ids, err := s.eventLog.LikeOverlapViewerIDs(dbc, viewerID, since, fetch)
		if err != nil {
			s.log.Warn("like-overlap strategy failed", "error", err)
			return nil
		}
		add(ids)
		return nil
	})

	g.Go(func() error {
		ids, err := s.users.NewlyJoinedIDs(dbc, time.Now().UTC().Add(-newlyJoinedWindow), fetch)
		if err != nil {
			s.log.Warn("newly-joined strategy failed", "error", err)
			return nil
		}
		add(ids)
		return nil
	})

	g.Go(func() error {
		ids, err := s.eventLog.RecentEngagerIDs(dbc, viewerID, since, fetch)
		if err != nil {
			s.log.Warn("recent-engagers strategy failed", "error", err)
			return nil
		}
		mu.Lock()
		for _, id := range ids {
			recentEngagers[id] = true
		}
		mu.Unlock()
		add(ids)
		return nil
	})

	_ = g.Wait()
	return order, recentEngagers
}

func (s *suggestionService) coldStartPool(dbc dbctx.Context, limit int, excluded map[uuid.UUID]bool, now time.Time) []uuid.UUID {
	fetch := limit * suggestionStrategyFanout
	pool := make([]uuid.UUID, 0, fetch)
	seen := map[uuid.UUID]bool{}

	newIDs, err := s.users.NewlyJoinedIDs(dbc, now.Add(-newlyJoinedWindow), fetch)
	if err != nil {
		s.log.Warn("cold-start newly-joined lookup failed", "error", err)
	}
	activeIDs, err := s.users.RecentlyActiveIDs(dbc, fetch)
	if err != nil {
		s.log.Warn("cold-start recently-active lookup failed", "error", err)
	}
	for _, id := range append(newIDs, activeIDs...) {
		if id == uuid.Nil || excluded[id] || seen[id] {
			continue
		}
		seen[id] = true
		pool = append(pool, id)
	}
	return pool
}

// loadCandidates batch-loads the scorer's signals for the pooled IDs. The
// candidate rows themselves are required; each signal map degrades to empty
// (the signal scores zero) when its load fails.
func (s *suggestionService) loadCandidates(dbc dbctx.Context, viewerID uuid.UUID, viewer *types.User, pool []uuid.UUID, recentEngagers map[uuid.UUID]bool, now time.Time) []PersonCandidate {
	var users []*types.User
	err := withRetry(func() error {
		var lErr error
		users, lErr = s.users.GetByIDs(dbc, pool)
		return lErr
	})
	if err != nil {
		s.log.Warn("candidate user load failed, serving an empty page", "error", err, "viewer_id", viewerID)
		return nil
	}

	var mutuals map[uuid.UUID]int
	err = withRetry(func() error {
		var lErr error
		mutuals, lErr = s.users.MutualCounts(dbc, viewerID, pool)
		return lErr
	})
	if err != nil {
		s.log.Warn("mutual count load failed, scoring without mutuals", "error", err, "viewer_id", viewerID)
		mutuals = nil
	}
	var shared map[uuid.UUID]int
	err = withRetry(func() error {
		var lErr error
		shared, lErr = s.users.SharedFolloweeCounts(dbc, viewerID, pool)
		return lErr
	})
	if err != nil {
		s.log.Warn("shared followee load failed, scoring without the signal", "error", err, "viewer_id", viewerID)
		shared = nil
	}
	var followsBack map[uuid.UUID]bool
	err = withRetry(func() error {
		var lErr error
		followsBack, lErr = s.users.FollowsViewer(dbc, viewerID, pool)
		return lErr
	})
	if err != nil {
		s.log.Warn("follows-viewer load failed, scoring without the signal", "error", err, "viewer_id", viewerID)
		followsBack = nil
	}
	var coEngagement map[uuid.UUID]int
	err = withRetry(func() error {
		var lErr error
		coEngagement, lErr = s.eventLog.CoEngagementCounts(dbc, viewerID, pool, now.Add(-engagementLookback))
		return lErr
	})
	if err != nil {
		s.log.Warn("co-engagement load failed, scoring without the signal", "error", err, "viewer_id", viewerID)
		coEngagement = nil
	}

	viewerBio := ""
	if viewer != nil {
		viewerBio = viewer.Bio
	}

	out := make([]PersonCandidate, 0, len(users))
	for _, u := range users {
		pc := PersonCandidate{
			User:          u,
			MutualCount:   mutuals[u.ID],
			SecondDegree:  shared[u.ID],
			FollowsViewer: followsBack[u.ID],
			CoEngagement:  coEngagement[u.ID],
			BioOverlap:    bioKeywordOverlap(viewerBio, u.Bio),
			RecentEngager: recentEngagers[u.ID],
		}
		if now.Sub(u.CreatedAt) <= brandNewWindow {
			n, cErr := s.content.CountByCreatorSince(dbc, u.ID, u.CreatedAt)
			if cErr != nil {
				s.log.Warn("published-content lookup failed", "error", cErr, "user_id", u.ID)
			}
			pc.PublishedContent = n > 0
		}
		out = append(out, pc)
	}
	return out
}

// mutualBucket groups candidates by mutual-connection count so one bucket
// cannot dominate a page.
func mutualBucket(n int) string {
	switch {
	case n == 0:
		return "mutuals:0"
	case n <= 3:
		return "mutuals:1-3"
	default:
		return "mutuals:4+"
	}
}
