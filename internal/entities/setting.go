package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// SettingKeyLastSyncPrefix is joined with a label, e.g. "last_sync_at:persons".
	SettingKeyLastSyncPrefix = "last_sync_at:"
)

// LastSyncKey returns the settings key holding a label's last refresh time.
func LastSyncKey(label Label) string {
	return SettingKeyLastSyncPrefix + string(label)
}
