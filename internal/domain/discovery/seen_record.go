package discovery

import (
	"time"

	"github.com/google/uuid"
)

type SeenItemType string

const (
	SeenItemContent SeenItemType = "content"
	SeenItemProfile SeenItemType = "profile"
)

// SeenRecord marks an item as recently shown to a viewer. Exclusion always
// filters on expires_at, never on row absence, so the background sweep is
// purely advisory.
type SeenRecord struct {
	ID       uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ViewerID uuid.UUID    `gorm:"type:uuid;not null;index:idx_seen_record,unique,priority:1" json:"viewer_id"`
	ItemID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_seen_record,unique,priority:2" json:"item_id"`
	ItemType SeenItemType `gorm:"column:item_type;not null;index:idx_seen_record,unique,priority:3" json:"item_type"`

	SessionID string `gorm:"column:session_id" json:"session_id,omitempty"`

	SeenAt    time.Time `gorm:"column:seen_at;not null;default:now()" json:"seen_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
}

func (SeenRecord) TableName() string { return "seen_record" }
