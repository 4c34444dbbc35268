package models

import "time"

// SyncLock is the mutual-exclusion row that keeps two price sync runs from
// executing at the same time and double-inserting inside the dedup window.
// A row older than the configured TTL is considered abandoned and may be
// taken over by the next run.
type SyncLock struct {
	Name     string    `gorm:"primaryKey;type:text"`
	LockedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (SyncLock) TableName() string {
	return "sync_locks"
}
