package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/pulsefeed-backend/internal/clients/redis"
	catalogrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/catalog"
	discoveryrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/discovery"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/shuffle"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	viralCacheTTL = 5 * time.Minute
)

// ExclusionProvider supplies extra per-viewer exclusions ("not interested",
// blocks). Policy concerns live with the surrounding app; the engine only
// honors the resulting ID set. Implementations may be nil.
type ExclusionProvider interface {
	ExcludedIDs(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error)
}

type RankedContent struct {
	Content   *types.Content     `json:"content"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

type FeedService interface {
	// GetPersonalizedFeed sources, scores and diversifies one page for the
	// viewer. An empty candidate pool yields an empty page, not an error.
	GetPersonalizedFeed(ctx context.Context, viewerID uuid.UUID, class types.ContentClass, limit int, sessionID string) ([]RankedContent, error)
	// GetViralContent returns content whose trailing-24h velocity beats the
	// viral threshold, highest first.
	GetViralContent(ctx context.Context, class *types.ContentClass, limit int) ([]uuid.UUID, error)
}

type feedService struct {
	db         *gorm.DB
	log        *logger.Logger
	content    catalogrepos.ContentRepo
	users      catalogrepos.UserRepo
	profiles   discoveryrepos.InterestProfileRepo
	affinity   discoveryrepos.CreatorAffinityRepo
	fatigue    discoveryrepos.ContentFatigueRepo
	velocity   discoveryrepos.ContentVelocityRepo
	seen       discoveryrepos.SeenRecordRepo
	exclusions ExclusionProvider
	viralCache redisclient.ViralCache
}

func NewFeedService(
	db *gorm.DB,
	baseLog *logger.Logger,
	content catalogrepos.ContentRepo,
	users catalogrepos.UserRepo,
	profiles discoveryrepos.InterestProfileRepo,
	affinity discoveryrepos.CreatorAffinityRepo,
	fatigue discoveryrepos.ContentFatigueRepo,
	velocity discoveryrepos.ContentVelocityRepo,
	seen discoveryrepos.SeenRecordRepo,
	exclusions ExclusionProvider,
	viralCache redisclient.ViralCache,
) FeedService {
	return &feedService{
		db:         db,
		log:        baseLog.With("service", "FeedService"),
		content:    content,
		users:      users,
		profiles:   profiles,
		affinity:   affinity,
		fatigue:    fatigue,
		velocity:   velocity,
		seen:       seen,
		exclusions: exclusions,
		viralCache: viralCache,
	}
}

func (s *feedService) GetPersonalizedFeed(ctx context.Context, viewerID uuid.UUID, class types.ContentClass, limit int, sessionID string) ([]RankedContent, error) {
	if viewerID == uuid.Nil {
		return nil, fmt.Errorf("%w: viewer id required", errs.ErrInvalidArgument)
	}
	if !class.Valid() {
		return nil, fmt.Errorf("%w: unknown content class %q", errs.ErrInvalidArgument, class)
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

	candidates := s.sourceCandidates(dbc, viewerID, class, limit)
	if len(candidates) == 0 {
		return []RankedContent{}, nil
	}

	vc := s.viewerContext(dbc, viewerID, candidates)
	seed := sessionID
	if seed == "" {
		seed = viewerID.String()
	}
	vc.Rand = shuffle.NewFromString(seed + ":jitter")

	byID := make(map[uuid.UUID]*types.Content, len(candidates))
	ranked := make([]RankedItem, 0, len(candidates))
	for _, c := range candidates {
		score, breakdown := ScoreContent(c, vc)
		byID[c.ID] = c
		ranked = append(ranked, RankedItem{
			ID:        c.ID,
			CreatorID: c.CreatorID,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	page := Diversify(ranked, DiversifyConstraints{
		Limit:         limit,
		MinCreatorGap: contentCreatorGap,
		MaxPerCreator: contentMaxPerCreator,
		Seed:          seed,
	})

	out := make([]RankedContent, 0, len(page))
	for _, item := range page {
		out = append(out, RankedContent{
			Content:   byID[item.ID],
			Score:     item.Score,
			Breakdown: item.Breakdown,
		})
		if err := s.seen.Mark(dbc, viewerID, item.ID, types.SeenItemContent, sessionID, seenContentTTL); err != nil {
			s.log.Warn("seen record mark failed", "error", err, "viewer_id", viewerID)
		}
	}
	return out, nil
}

// sourceCandidates over-fetches public content of the class, excluding the
// viewer's own items, unexpired seen records and caller-supplied exclusions.
// The seen-ledger and candidate reads degrade to an empty pool on failure;
// serving without the ledger would repeat items the viewer just saw, so there
// is no partial fallback for those two reads.
func (s *feedService) sourceCandidates(dbc dbctx.Context, viewerID uuid.UUID, class types.ContentClass, limit int) []*types.Content {
	var exclude []uuid.UUID
	err := withRetry(func() error {
		var lErr error
		exclude, lErr = s.seen.ActiveItemIDs(dbc, viewerID, types.SeenItemContent)
		return lErr
	})
	if err != nil {
		s.log.Warn("seen record load failed, serving an empty page", "error", err, "viewer_id", viewerID)
		return nil
	}
	if s.exclusions != nil {
		extra, exErr := s.exclusions.ExcludedIDs(dbc.Ctx, viewerID)
		if exErr != nil {
			s.log.Warn("exclusion provider failed (continuing without)", "error", exErr, "viewer_id", viewerID)
		} else {
			exclude = append(exclude, extra...)
		}
	}
	var rows []*types.Content
	err = withRetry(func() error {
		var lErr error
		rows, lErr = s.content.ListCandidates(dbc, class, viewerID, exclude, limit*candidateOverfetch)
		return lErr
	})
	if err != nil {
		s.log.Warn("candidate load failed, serving an empty page", "error", err, "viewer_id", viewerID)
		return nil
	}
	return rows
}

// viewerContext batch-loads the scorer's signals. Every load is best-effort:
// a failed signal degrades to its neutral default (score 50 profile, no
// creator boost, zero fatigue and velocity) instead of failing the page.
func (s *feedService) viewerContext(dbc dbctx.Context, viewerID uuid.UUID, candidates []*types.Content) ContentViewerContext {
	vc := ContentViewerContext{Now: time.Now().UTC()}

	err := withRetry(func() error {
		var lErr error
		vc.Profile, lErr = s.profiles.GetByViewerID(dbc, viewerID)
		return lErr
	})
	if err != nil {
		s.log.Warn("interest profile load failed, scoring with defaults", "error", err, "viewer_id", viewerID)
		vc.Profile = nil
	}

	var followingIDs []uuid.UUID
	err = withRetry(func() error {
		var lErr error
		followingIDs, lErr = s.users.FollowingIDs(dbc, viewerID)
		return lErr
	})
	if err != nil {
		s.log.Warn("following load failed, skipping the followed-creator boost", "error", err, "viewer_id", viewerID)
		followingIDs = nil
	}
	vc.Following = idSet(followingIDs)

	var topIDs []uuid.UUID
	err = withRetry(func() error {
		var lErr error
		topIDs, lErr = s.affinity.TopCreatorIDs(dbc, viewerID, topAffinityCreators)
		return lErr
	})
	if err != nil {
		s.log.Warn("top creator load failed, skipping the affinity boost", "error", err, "viewer_id", viewerID)
		topIDs = nil
	}
	vc.TopCreators = idSet(topIDs)

	contentIDs := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		contentIDs = append(contentIDs, c.ID)
	}

	var fatigueRows []*types.ContentFatigue
	err = withRetry(func() error {
		var lErr error
		fatigueRows, lErr = s.fatigue.GetByContentIDs(dbc, contentIDs)
		return lErr
	})
	if err != nil {
		s.log.Warn("fatigue load failed, scoring without fatigue", "error", err, "viewer_id", viewerID)
		fatigueRows = nil
	}
	vc.Fatigue = make(map[uuid.UUID]int, len(fatigueRows))
	for _, row := range fatigueRows {
		vc.Fatigue[row.ContentID] = row.Fatigue
	}

	err = withRetry(func() error {
		var lErr error
		vc.Velocity, lErr = s.velocity.MaxScoresSince(dbc, contentIDs, vc.Now.Add(-viralWindow))
		return lErr
	})
	if err != nil {
		s.log.Warn("velocity load failed, scoring without velocity", "error", err, "viewer_id", viewerID)
		vc.Velocity = nil
	}

	return vc
}

func (s *feedService) GetViralContent(ctx context.Context, class *types.ContentClass, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	cacheKey := "all"
	if class != nil {
		cacheKey = string(*class)
	}
	cacheKey += ":" + strconv.Itoa(limit)

	if s.viralCache != nil {
		if ids, ok := s.viralCache.Get(ctx, cacheKey); ok {
			return ids, nil
		}
	}

	dbc := dbctx.New(ctx)
	ids, err := s.velocity.ViralContentIDs(dbc, class, time.Now().UTC().Add(-viralWindow), viralThreshold, limit)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	if s.viralCache != nil {
		s.viralCache.Set(ctx, cacheKey, ids, viralCacheTTL)
	}
	return ids, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
