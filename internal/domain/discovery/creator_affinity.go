package discovery

import (
	"time"

	"github.com/google/uuid"
)

// CreatorAffinity accumulates per (viewer, creator) engagement. The affinity
// score is unbounded; rows are created on the first qualifying interaction
// (like/save/share/comment/rewatch) and only adjusted afterwards.
type CreatorAffinity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ViewerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_creator_affinity,unique,priority:1" json:"viewer_id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index:idx_creator_affinity,unique,priority:2" json:"creator_id"`

	Affinity int `gorm:"column:affinity;not null;default:0" json:"affinity"`

	ViewCount  int64 `gorm:"column:view_count;not null;default:0" json:"view_count"`
	LikeCount  int64 `gorm:"column:like_count;not null;default:0" json:"like_count"`
	ShareCount int64 `gorm:"column:share_count;not null;default:0" json:"share_count"`
	SaveCount  int64 `gorm:"column:save_count;not null;default:0" json:"save_count"`

	AvgWatchTimeMs   float64 `gorm:"column:avg_watch_time_ms;not null;default:0" json:"avg_watch_time_ms"`
	AvgCompletion    float64 `gorm:"column:avg_completion;not null;default:0" json:"avg_completion"`
	InteractionCount int64   `gorm:"column:interaction_count;not null;default:0" json:"interaction_count"`

	LastInteractionAt time.Time `gorm:"column:last_interaction_at;not null;default:now()" json:"last_interaction_at"`
	CreatedAt         time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CreatorAffinity) TableName() string { return "creator_affinity" }
