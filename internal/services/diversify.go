package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/pkg/shuffle"
)

// RankedItem is one scored candidate entering the diversifier. GroupKey is an
// optional spacing bucket (people surface: mutual-connection-count bucket);
// empty keys are unconstrained.
type RankedItem struct {
	ID        uuid.UUID
	CreatorID uuid.UUID
	Score     float64
	Breakdown map[string]float64
	GroupKey  string
}

// DiversifyConstraints configures the assembly pass.
type DiversifyConstraints struct {
	Limit         int
	MinCreatorGap int
	MaxPerCreator int
	MaxPerGroup   int
	Seed          string
}

// scoreTierSpan groups scores into tiers for the seeded same-tier shuffle.
const scoreTierSpan = 50.0

// Diversify sorts candidates by score, applies a session-seeded shuffle
// within equal score tiers, then greedily selects under the spacing and
// per-creator constraints, refilling from the remainder if the page would
// come up short. Identical inputs and seed reproduce identical output; the
// shuffle precedes selection so it can never undo the spacing guarantees.
func Diversify(items []RankedItem, c DiversifyConstraints) []RankedItem {
	if c.Limit <= 0 || len(items) == 0 {
		return nil
	}

	sorted := make([]RankedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	shuffleWithinTiers(sorted, c.Seed)

	selected := make([]RankedItem, 0, c.Limit)
	picked := make(map[uuid.UUID]bool, c.Limit)
	creatorCount := map[uuid.UUID]int{}
	creatorLastPos := map[uuid.UUID]int{}
	groupCount := map[string]int{}

	for _, item := range sorted {
		if len(selected) >= c.Limit {
			break
		}
		if c.MaxPerCreator > 0 && creatorCount[item.CreatorID] >= c.MaxPerCreator {
			continue
		}
		if last, ok := creatorLastPos[item.CreatorID]; ok && c.MinCreatorGap > 0 {
			if len(selected)-last < c.MinCreatorGap {
				continue
			}
		}
		if c.MaxPerGroup > 0 && item.GroupKey != "" && groupCount[item.GroupKey] >= c.MaxPerGroup {
			continue
		}
		creatorLastPos[item.CreatorID] = len(selected)
		creatorCount[item.CreatorID]++
		if item.GroupKey != "" {
			groupCount[item.GroupKey]++
		}
		picked[item.ID] = true
		selected = append(selected, item)
	}

	// Refill pass: a short page is worse than imperfect spacing.
	if len(selected) < c.Limit {
		for _, item := range sorted {
			if len(selected) >= c.Limit {
				break
			}
			if picked[item.ID] {
				continue
			}
			picked[item.ID] = true
			selected = append(selected, item)
		}
	}

	return selected
}

// shuffleWithinTiers runs a seeded Fisher-Yates over each run of consecutive
// items in the same score tier, so variation stays local and the overall
// ranking order is preserved.
func shuffleWithinTiers(items []RankedItem, seed string) {
	if len(items) < 2 {
		return
	}
	rng := shuffle.NewFromString(seed)
	tier := func(score float64) int {
		return int(score / scoreTierSpan)
	}
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || tier(items[i].Score) != tier(items[start].Score) {
			if run := items[start:i]; len(run) > 1 {
				rng.Shuffle(len(run), func(a, b int) {
					run[a], run[b] = run[b], run[a]
				})
			}
			start = i
		}
	}
}
