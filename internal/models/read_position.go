package models

import (
	"time"
)

// ReadPosition tracks, per (group, user), the server time of the last
// read acknowledgement. Absence of a row is a valid state meaning the
// user has never read the group. Writes are unconditional last-write-wins:
// a stale writer can regress LastReadAt and the store does not guard
// against it.
type ReadPosition struct {
	GroupID    uint      `gorm:"primaryKey" json:"group_id"`
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	LastReadAt time.Time `gorm:"not null" json:"last_read_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
