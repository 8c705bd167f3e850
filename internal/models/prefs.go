// ABOUTME: SyncPreferences model controlling background sync behavior
// ABOUTME: Persisted across restarts; interval is clamped to a floor

package models

import "time"

// MinSyncIntervalHours is the floor for the background sync period.
const MinSyncIntervalHours = 6

// DefaultSyncIntervalHours is used when preferences are first created.
const DefaultSyncIntervalHours = 12

// SyncPreferences holds durable background-sync settings and the
// bookkeeping timestamps the scheduler and notifier rely on.
type SyncPreferences struct {
	BackgroundSync    bool       `json:"background_sync"`
	SyncIntervalHours int        `json:"sync_interval_hours"`
	NotifyOnNewItems  bool       `json:"notify_on_new_items"`
	LastSyncAttemptAt *time.Time `json:"last_sync_attempt_at,omitempty"`
	LastSyncSuccessAt *time.Time `json:"last_sync_success_at,omitempty"`
	LastItemCount     int        `json:"last_item_count"`
	LastNotifiedAt    *time.Time `json:"last_notified_at,omitempty"`
}

// DefaultSyncPreferences returns first-run preferences.
func DefaultSyncPreferences() SyncPreferences {
	return SyncPreferences{
		BackgroundSync:    false,
		SyncIntervalHours: DefaultSyncIntervalHours,
		NotifyOnNewItems:  true,
	}
}

// Interval returns the effective sync period, never below the floor.
func (p SyncPreferences) Interval() time.Duration {
	hours := p.SyncIntervalHours
	if hours < MinSyncIntervalHours {
		hours = MinSyncIntervalHours
	}
	return time.Duration(hours) * time.Hour
}
