package discovery

import (
	"time"

	"github.com/google/uuid"
)

// ContentFatigue is a population-wide over-exposure penalty per content item.
// Fatigue stays in [0,100]: it rises on skips, recovers slowly on genuine
// engagement, and is subtracted in the scorer rather than filtering content
// out.
type ContentFatigue struct {
	ContentID uuid.UUID    `gorm:"type:uuid;primaryKey" json:"content_id"`
	Class     ContentClass `gorm:"column:class;not null" json:"class"`

	Impressions int64   `gorm:"column:impressions;not null;default:0" json:"impressions"`
	Skips       int64   `gorm:"column:skips;not null;default:0" json:"skips"`
	SkipRate    float64 `gorm:"column:skip_rate;not null;default:0" json:"skip_rate"`

	AvgWatchTimeMs float64 `gorm:"column:avg_watch_time_ms;not null;default:0" json:"avg_watch_time_ms"`
	AvgCompletion  float64 `gorm:"column:avg_completion;not null;default:0" json:"avg_completion"`

	Fatigue int `gorm:"column:fatigue;not null;default:0" json:"fatigue"`

	LastShownAt time.Time `gorm:"column:last_shown_at;not null;default:now()" json:"last_shown_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentFatigue) TableName() string { return "content_fatigue" }
