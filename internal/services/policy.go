package services

import (
	"time"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
)

// Engagement deltas are policy constants, applied verbatim. The asymmetry
// between skip penalty and engagement recovery elsewhere (fatigue +10/-2) is
// deliberate: fast penalty, slow recovery.
type InteractionDeltas struct {
	Profile  int
	Affinity int
}

var interactionDeltas = map[types.InteractionKind]InteractionDeltas{
	types.KindSave:    {Profile: 10, Affinity: 20},
	types.KindShare:   {Profile: 8, Affinity: 15},
	types.KindComment: {Profile: 5, Affinity: 10},
	types.KindLike:    {Profile: 3, Affinity: 5},
	types.KindRewatch: {Profile: 15, Affinity: 25},
	types.KindSkip:    {Profile: -5, Affinity: 0},
}

// completedViewThreshold is the completion ratio above which a plain view
// counts as a positive interest signal.
const completedViewThreshold = 0.8

// DeltasFor resolves the profile/affinity deltas for one interaction. Views
// only move the profile when mostly completed.
func DeltasFor(kind types.InteractionKind, completion float64) InteractionDeltas {
	if kind == types.KindView {
		if completion > completedViewThreshold {
			return InteractionDeltas{Profile: 2}
		}
		return InteractionDeltas{}
	}
	return interactionDeltas[kind]
}

// AffinityQualifies reports whether the kind creates/updates a creator
// affinity row.
func AffinityQualifies(kind types.InteractionKind) bool {
	switch kind {
	case types.KindLike, types.KindSave, types.KindShare, types.KindComment, types.KindRewatch:
		return true
	default:
		return false
	}
}

const (
	// Seen-ledger expirations: content repeats are blocked for a day,
	// profile suggestions refresh faster.
	seenContentTTL = 24 * time.Hour
	seenProfileTTL = 6 * time.Hour

	// viralThreshold is the minimum bucket velocity for the viral surface.
	viralThreshold = 5.0
	// viralWindow bounds which buckets count as "current" velocity.
	viralWindow = 24 * time.Hour

	// candidateOverfetch multiplies the page size when sourcing so the
	// diversifier has spare material.
	candidateOverfetch = 3

	// Content diversification: same creator at least this many positions
	// apart, at most this many items per creator per page.
	contentCreatorGap    = 4
	contentMaxPerCreator = 3

	// People sourcing windows.
	newlyJoinedWindow        = 14 * 24 * time.Hour
	brandNewWindow           = 7 * 24 * time.Hour
	engagementLookback       = 7 * 24 * time.Hour
	topAffinityCreators      = 20
	suggestionStrategyFanout = 3
)
