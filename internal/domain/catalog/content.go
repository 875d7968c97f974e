package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/domain/discovery"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Content is the engine's read-side view of the app-owned content table. The
// engine never writes it.
type Content struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID uuid.UUID              `gorm:"type:uuid;not null;index" json:"creator_id"`
	Class     discovery.ContentClass `gorm:"column:class;not null;index" json:"class"`

	Caption    string `gorm:"column:caption" json:"caption"`
	Visibility string `gorm:"column:visibility;not null;default:public;index" json:"visibility"`

	LikeCount    int64 `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CommentCount int64 `gorm:"column:comment_count;not null;default:0" json:"comment_count"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Content) TableName() string { return "content" }
