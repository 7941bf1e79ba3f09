package models

import (
	"time"
)

// BlockRelation is a directed "blocker blocks blocked" rule.
// Unique on (blockerId, blockedId); removed by a hard delete on unblock.
type BlockRelation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	BlockerID string    `gorm:"size:36;uniqueIndex:idx_blocker_blocked;index" json:"blockerId"`
	BlockedID string    `gorm:"size:36;uniqueIndex:idx_blocker_blocked" json:"blockedId"`
	CreatedAt time.Time `json:"blockedAt"`

	Blocked User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}
