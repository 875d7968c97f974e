package services

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/shuffle"
)

// jitterRange is the uniform random span added to every composite score so a
// viewer's feed never becomes a fully deterministic filter bubble.
const jitterRange = 15.0

// ContentViewerContext carries the per-request signals the content scorer
// reads. Maps may be nil; missing signals score as zero.
type ContentViewerContext struct {
	Profile     *types.InterestProfile
	Following   map[uuid.UUID]bool
	TopCreators map[uuid.UUID]bool
	Fatigue     map[uuid.UUID]int
	Velocity    map[uuid.UUID]float64
	Now         time.Time
	Rand        *shuffle.Rand
}

// ScoreContent combines class preference, creator affinity, engagement minus
// fatigue, velocity, recency and jitter into one composite score with a
// per-signal breakdown.
func ScoreContent(c *types.Content, vc ContentViewerContext) (float64, map[string]float64) {
	breakdown := map[string]float64{}

	classPref := float64(vc.Profile.ScoreFor(c.Class))
	breakdown["class_preference"] = classPref

	var creator float64
	switch {
	case vc.Following[c.CreatorID]:
		creator = 100
	case vc.TopCreators[c.CreatorID]:
		creator = 80
	}
	breakdown["creator_affinity"] = creator

	engagement := float64(c.LikeCount) + 2*float64(c.CommentCount) - float64(vc.Fatigue[c.ID])
	breakdown["engagement"] = engagement

	velocity := math.Min(vc.Velocity[c.ID], 50)
	breakdown["velocity"] = velocity

	recency := math.Max(0, 50-vc.Now.Sub(c.CreatedAt).Hours())
	breakdown["recency"] = recency

	jitter := 0.0
	if vc.Rand != nil {
		jitter = vc.Rand.Float64() * jitterRange
	}
	breakdown["jitter"] = jitter

	total := classPref + creator + engagement + velocity + recency + jitter
	return total, breakdown
}

// PersonCandidate bundles a suggestion candidate with the batch-loaded
// signals the people scorer needs.
type PersonCandidate struct {
	User             *types.User
	MutualCount      int
	SecondDegree     int
	FollowsViewer    bool
	CoEngagement     int
	BioOverlap       int
	RecentEngager    bool
	PublishedContent bool
}

// Tier caps keep any single signal from dominating the suggestion order.
const (
	socialTierCap     = 400.0
	overlapTierCap    = 250.0
	similarityTierCap = 200.0
	qualityTierCap    = 150.0
)

// ScorePerson computes the people-suggestion composite: capped social,
// overlap, similarity and quality tiers plus uncapped growth boosts and
// jitter.
func ScorePerson(p PersonCandidate, viewer *types.User, now time.Time, rng *shuffle.Rand) (float64, map[string]float64) {
	breakdown := map[string]float64{}

	social := math.Min(float64(p.MutualCount)*40, 200) +
		math.Min(float64(p.SecondDegree)*25, 100)
	if p.FollowsViewer {
		social += 100
	}
	social = math.Min(social, socialTierCap)
	breakdown["social"] = social

	overlap := math.Min(float64(p.CoEngagement)*15, 150) +
		math.Min(float64(p.BioOverlap)*10, 100)
	overlap = math.Min(overlap, overlapTierCap)
	breakdown["overlap"] = overlap

	similarity := float64(bucketSimilarity(influenceBucket(viewerInfluence(viewer)), influenceBucket(p.User.InfluenceScore)))
	similarity = math.Min(similarity, similarityTierCap)
	breakdown["similarity"] = similarity

	quality := 0.0
	if p.User.Verified {
		quality += 50
	}
	quality += completenessPoints(p.User)
	daysSinceActive := now.Sub(p.User.LastActiveAt).Hours() / 24
	quality += math.Max(0, 30-daysSinceActive)
	if p.User.FollowingCount > 0 {
		ratio := float64(p.User.FollowerCount) / float64(p.User.FollowingCount)
		if ratio >= 1 {
			quality += math.Min(ratio*10, 30)
		}
	}
	quality += math.Min(float64(p.User.InfluenceScore)/50, 40)
	quality = math.Min(quality, qualityTierCap)
	breakdown["quality"] = quality

	growth := 0.0
	accountAgeDays := now.Sub(p.User.CreatedAt).Hours() / 24
	if accountAgeDays <= 14 {
		growth += math.Max(0, 75-accountAgeDays*5)
	}
	if p.RecentEngager {
		growth += 80
	}
	if accountAgeDays <= 7 && p.PublishedContent {
		growth += 40
	}
	breakdown["growth"] = growth

	jitter := 0.0
	if rng != nil {
		jitter = rng.Float64() * jitterRange
	}
	breakdown["jitter"] = jitter

	total := social + overlap + similarity + quality + growth + jitter
	return total, breakdown
}

func viewerInfluence(viewer *types.User) int {
	if viewer == nil {
		return 0
	}
	return viewer.InfluenceScore
}

func completenessPoints(u *types.User) float64 {
	points := 0.0
	if u.AvatarURL != "" {
		points += 10
	}
	if len(u.Bio) > 20 {
		points += 10
	}
	if u.DisplayName != "" && !strings.EqualFold(u.DisplayName, u.Username) {
		points += 5
	}
	if u.CoverURL != "" {
		points += 5
	}
	return points
}

// influenceBucket maps raw influence onto a small ordinal scale used for the
// similarity tier.
func influenceBucket(influence int) int {
	b := influence / 1000
	if b < 0 {
		b = 0
	}
	if b > 4 {
		b = 4
	}
	return b
}

func bucketSimilarity(a, b int) int {
	switch diff := int(math.Abs(float64(a - b))); diff {
	case 0:
		return 50
	case 1:
		return 25
	case 2:
		return 10
	default:
		return 0
	}
}

// bioKeywordOverlap counts distinct words of four or more characters shared
// by two bios.
func bioKeywordOverlap(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	wordsA := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(a)) {
		w = strings.Trim(w, ".,!?#@:;()")
		if len(w) >= 4 {
			wordsA[w] = true
		}
	}
	seen := map[string]bool{}
	count := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		w = strings.Trim(w, ".,!?#@:;()")
		if len(w) >= 4 && wordsA[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}
