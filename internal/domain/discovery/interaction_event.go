package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContentClass string

const (
	ClassVideo ContentClass = "video"
	ClassVoice ContentClass = "voice"
	ClassPhoto ContentClass = "photo"
	ClassText  ContentClass = "text"
)

func (c ContentClass) Valid() bool {
	switch c {
	case ClassVideo, ClassVoice, ClassPhoto, ClassText:
		return true
	default:
		return false
	}
}

type InteractionKind string

const (
	KindView    InteractionKind = "view"
	KindLike    InteractionKind = "like"
	KindSave    InteractionKind = "save"
	KindShare   InteractionKind = "share"
	KindComment InteractionKind = "comment"
	KindSkip    InteractionKind = "skip"
	KindRewatch InteractionKind = "rewatch"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case KindView, KindLike, KindSave, KindShare, KindComment, KindSkip, KindRewatch:
		return true
	default:
		return false
	}
}

// InteractionEvent is the append-only audit log of viewer actions. Derived
// signal rows are rebuilt from it for analytics; the engine itself only
// appends here.
type InteractionEvent struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ViewerID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_interaction_viewer" json:"viewer_id"`
	ContentID uuid.UUID       `gorm:"type:uuid;not null;index:idx_interaction_content" json:"content_id"`
	CreatorID *uuid.UUID      `gorm:"type:uuid;index:idx_interaction_creator" json:"creator_id,omitempty"`
	Class     ContentClass    `gorm:"column:class;not null" json:"class"`
	Kind      InteractionKind `gorm:"column:kind;not null" json:"kind"`

	WatchTimeMs int64   `gorm:"column:watch_time_ms;not null;default:0" json:"watch_time_ms"`
	Completion  float64 `gorm:"column:completion;not null;default:0" json:"completion"`

	SessionID string         `gorm:"column:session_id" json:"session_id,omitempty"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (InteractionEvent) TableName() string { return "interaction_event" }
