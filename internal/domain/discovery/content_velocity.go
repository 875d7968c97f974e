package discovery

import (
	"time"

	"github.com/google/uuid"
)

// ContentVelocity is one row per (content item, hour since publish). A bucket
// whose hour has passed is immutable history; the item's current velocity is
// the best bucket touched within the trailing 24h.
type ContentVelocity struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContentID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_content_velocity,unique,priority:1" json:"content_id"`
	HourBucket int          `gorm:"column:hour_bucket;not null;index:idx_content_velocity,unique,priority:2" json:"hour_bucket"`
	Class      ContentClass `gorm:"column:class;not null;index" json:"class"`

	Views    int64 `gorm:"column:views;not null;default:0" json:"views"`
	Likes    int64 `gorm:"column:likes;not null;default:0" json:"likes"`
	Saves    int64 `gorm:"column:saves;not null;default:0" json:"saves"`
	Shares   int64 `gorm:"column:shares;not null;default:0" json:"shares"`
	Comments int64 `gorm:"column:comments;not null;default:0" json:"comments"`

	VelocityScore float64 `gorm:"column:velocity_score;not null;default:0" json:"velocity_score"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (ContentVelocity) TableName() string { return "content_velocity" }
