package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/catalog"
	discoveryrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/discovery"
	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

type InteractionInput struct {
	ViewerID  uuid.UUID             `json:"viewer_id"`
	ContentID uuid.UUID             `json:"content_id"`
	CreatorID *uuid.UUID            `json:"creator_id,omitempty"`
	Class     types.ContentClass    `json:"class"`
	Kind      types.InteractionKind `json:"kind"`

	WatchTimeMs int64   `json:"watch_time_ms"`
	Completion  float64 `json:"completion"`

	SessionID string         `json:"session_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type InteractionService interface {
	// RecordInteraction validates the event and fans it out to the signal
	// stores. Each store update is best-effort: a failed update is logged
	// and skipped, never surfaced to the caller.
	RecordInteraction(ctx context.Context, input InteractionInput) error
}

type interactionService struct {
	db       *gorm.DB
	log      *logger.Logger
	eventLog discoveryrepos.InteractionLogRepo
	profiles discoveryrepos.InterestProfileRepo
	affinity discoveryrepos.CreatorAffinityRepo
	fatigue  discoveryrepos.ContentFatigueRepo
	velocity discoveryrepos.ContentVelocityRepo
	seen     discoveryrepos.SeenRecordRepo
	content  catalogrepos.ContentRepo
}

func NewInteractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	eventLog discoveryrepos.InteractionLogRepo,
	profiles discoveryrepos.InterestProfileRepo,
	affinity discoveryrepos.CreatorAffinityRepo,
	fatigue discoveryrepos.ContentFatigueRepo,
	velocity discoveryrepos.ContentVelocityRepo,
	seen discoveryrepos.SeenRecordRepo,
	content catalogrepos.ContentRepo,
) InteractionService {
	return &interactionService{
		db:       db,
		log:      baseLog.With("service", "InteractionService"),
		eventLog: eventLog,
		profiles: profiles,
		affinity: affinity,
		fatigue:  fatigue,
		velocity: velocity,
		seen:     seen,
		content:  content,
	}
}

func (s *interactionService) RecordInteraction(ctx context.Context, input InteractionInput) error {
	if input.ViewerID == uuid.Nil {
		return fmt.Errorf("%w: viewer id required", errs.ErrInvalidArgument)
	}
	if input.ContentID == uuid.Nil {
		return fmt.Errorf("%w: content id required", errs.ErrInvalidArgument)
	}
	if !input.Class.Valid() {
		return fmt.Errorf("%w: unknown content class %q", errs.ErrInvalidArgument, input.Class)
	}
	if !input.Kind.Valid() {
		return fmt.Errorf("%w: unknown interaction kind %q", errs.ErrInvalidArgument, input.Kind)
	}
	if input.Completion < 0 || input.Completion > 1 {
		return fmt.Errorf("%w: completion must be within [0,1]", errs.ErrInvalidArgument)
	}
	if input.WatchTimeMs < 0 {
		return fmt.Errorf("%w: watch time must be non-negative", errs.ErrInvalidArgument)
	}

	dbc := dbctx.New(ctx)
	deltas := DeltasFor(input.Kind, input.Completion)

	s.appendEvent(dbc, input)
	s.updateAffinity(dbc, input, deltas)
	s.updateProfile(dbc, input, deltas)
	s.markSeen(dbc, input)
	s.updateFatigue(dbc, input)
	s.updateVelocity(dbc, input)

	return nil
}

func (s *interactionService) appendEvent(dbc dbctx.Context, input InteractionInput) {
	row := &types.InteractionEvent{
		ViewerID:    input.ViewerID,
		ContentID:   input.ContentID,
		CreatorID:   input.CreatorID,
		Class:       input.Class,
		Kind:        input.Kind,
		WatchTimeMs: input.WatchTimeMs,
		Completion:  input.Completion,
		SessionID:   input.SessionID,
	}
	if len(input.Metadata) > 0 {
		if raw, err := json.Marshal(input.Metadata); err == nil {
			row.Metadata = datatypes.JSON(raw)
		}
	}
	if err := withRetry(func() error { return s.eventLog.Append(dbc, row) }); err != nil {
		s.log.Warn("interaction log append failed", "error", err, "viewer_id", input.ViewerID)
	}
}

func (s *interactionService) updateAffinity(dbc dbctx.Context, input InteractionInput, deltas InteractionDeltas) {
	if input.CreatorID == nil || *input.CreatorID == uuid.Nil {
		return
	}
	creatorID := *input.CreatorID
	var err error
	switch {
	case AffinityQualifies(input.Kind):
		err = withRetry(func() error {
			return s.affinity.ApplyEngagement(dbc, input.ViewerID, creatorID, input.Kind, deltas.Affinity, input.WatchTimeMs, input.Completion)
		})
	case input.Kind == types.KindView:
		err = withRetry(func() error {
			return s.affinity.RecordView(dbc, input.ViewerID, creatorID, input.WatchTimeMs, input.Completion)
		})
	default:
		return
	}
	if err != nil {
		s.log.Warn("creator affinity update failed", "error", err, "viewer_id", input.ViewerID)
	}
}

func (s *interactionService) updateProfile(dbc dbctx.Context, input InteractionInput, deltas InteractionDeltas) {
	err := withRetry(func() error {
		return s.profiles.ApplyInteraction(dbc, input.ViewerID, input.Class, deltas.Profile, input.WatchTimeMs, input.Completion)
	})
	if err != nil {
		s.log.Warn("interest profile update failed", "error", err, "viewer_id", input.ViewerID)
	}
}

func (s *interactionService) markSeen(dbc dbctx.Context, input InteractionInput) {
	err := withRetry(func() error {
		return s.seen.Mark(dbc, input.ViewerID, input.ContentID, types.SeenItemContent, input.SessionID, seenContentTTL)
	})
	if err != nil {
		s.log.Warn("seen record mark failed", "error", err, "viewer_id", input.ViewerID)
	}
}

func (s *interactionService) updateFatigue(dbc dbctx.Context, input InteractionInput) {
	isSkip := input.Kind == types.KindSkip
	err := withRetry(func() error {
		return s.fatigue.Observe(dbc, input.ContentID, input.Class, isSkip, input.WatchTimeMs, input.Completion)
	})
	if err != nil {
		s.log.Warn("content fatigue update failed", "error", err, "content_id", input.ContentID)
	}
}

func (s *interactionService) updateVelocity(dbc dbctx.Context, input InteractionInput) {
	if _, ok := discoveryrepos.VelocityWeight(input.Kind); !ok {
		return
	}
	content, err := s.content.GetByID(dbc, input.ContentID)
	if errors.Is(err, errs.ErrNotFound) || (err == nil && content == nil) {
		s.log.Warn("velocity update skipped: content not found", "content_id", input.ContentID)
		return
	}
	if err != nil {
		s.log.Warn("velocity content lookup failed", "error", err, "content_id", input.ContentID)
		return
	}
	hourBucket := int(time.Since(content.CreatedAt) / time.Hour)
	if hourBucket < 0 {
		hourBucket = 0
	}
	err = withRetry(func() error {
		return s.velocity.Increment(dbc, input.ContentID, input.Class, hourBucket, input.Kind)
	})
	if err != nil {
		s.log.Warn("content velocity update failed", "error", err, "content_id", input.ContentID)
	}
}

// withRetry retries a store call once after a short backoff; transient
// failures beyond that are the caller's to log and degrade around. Sentinel
// errors are not transient and return immediately.
func withRetry(fn func() error) error {
	err := fn()
	if err == nil || errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrInvalidArgument) {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return fn()
}
