package discovery

import (
	"time"

	"github.com/google/uuid"
)

// InterestProfile tracks a viewer's per-class affinity. Every score lives in
// [0,100]; the upsert clamps in SQL so concurrent writers cannot escape the
// bounds.
type InterestProfile struct {
	ViewerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"viewer_id"`

	VideoScore int `gorm:"column:video_score;not null;default:50" json:"video_score"`
	VoiceScore int `gorm:"column:voice_score;not null;default:50" json:"voice_score"`
	PhotoScore int `gorm:"column:photo_score;not null;default:50" json:"photo_score"`
	TextScore  int `gorm:"column:text_score;not null;default:50" json:"text_score"`

	AvgWatchTimeMs   float64 `gorm:"column:avg_watch_time_ms;not null;default:0" json:"avg_watch_time_ms"`
	AvgCompletion    float64 `gorm:"column:avg_completion;not null;default:0" json:"avg_completion"`
	InteractionCount int64   `gorm:"column:interaction_count;not null;default:0" json:"interaction_count"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (InterestProfile) TableName() string { return "interest_profile" }

// ScoreFor returns the class-preference score, defaulting to the neutral 50
// for an unknown class.
func (p *InterestProfile) ScoreFor(class ContentClass) int {
	if p == nil {
		return 50
	}
	switch class {
	case ClassVideo:
		return p.VideoScore
	case ClassVoice:
		return p.VoiceScore
	case ClassPhoto:
		return p.PhotoScore
	case ClassText:
		return p.TextScore
	default:
		return 50
	}
}
