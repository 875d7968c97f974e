package catalog

import (
	"time"

	"github.com/google/uuid"
)

// User is the engine's read-side view of the app-owned user table.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Bio         string    `gorm:"column:bio" json:"bio"`

	AvatarURL string `gorm:"column:avatar_url" json:"avatar_url"`
	CoverURL  string `gorm:"column:cover_url" json:"cover_url"`

	Verified       bool `gorm:"column:verified;not null;default:false" json:"verified"`
	InfluenceScore int  `gorm:"column:influence_score;not null;default:0" json:"influence_score"`

	FollowerCount  int64 `gorm:"column:follower_count;not null;default:0" json:"follower_count"`
	FollowingCount int64 `gorm:"column:following_count;not null;default:0" json:"following_count"`

	LastActiveAt time.Time `gorm:"column:last_active_at;not null;default:now();index" json:"last_active_at"`
	CreatedAt    time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

// Follow is one directed edge of the follow graph.
type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;index:idx_follow_edge,unique,priority:1" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;index:idx_follow_edge,unique,priority:2;index:idx_follow_followee" json:"followee_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Follow) TableName() string { return "follow" }
