// ABOUTME: Tests for the scheduler's single run pass and bookkeeping.
// ABOUTME: In-memory prefs, recorded notifier, injected fetch and clock.

package schedule_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/notify"
	"github.com/quinn/skimmer/internal/schedule"
	"github.com/quinn/skimmer/internal/storage"
	"github.com/quinn/skimmer/internal/syncer"
)

type memPrefs struct {
	prefs models.SyncPreferences
}

func (m *memPrefs) Load() (models.SyncPreferences, error) { return m.prefs, nil }
func (m *memPrefs) Save(p models.SyncPreferences) error   { m.prefs = p; return nil }

type recordingNotifier struct {
	counts []int
}

func (r *recordingNotifier) NotifyNewItems(count int) { r.counts = append(r.counts, count) }

var _ notify.Notifier = (*recordingNotifier)(nil)

type alwaysOK struct{}

func (alwaysOK) NetworkAvailable() bool { return true }
func (alwaysOK) BatteryOK() bool        { return true }

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunOnce_NoSources(t *testing.T) {
	store := newTestStore(t)
	prefs := &memPrefs{prefs: models.DefaultSyncPreferences()}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	s := schedule.New(syncer.New(store), store, prefs, &recordingNotifier{},
		schedule.WithConstraintChecker(alwaysOK{}),
		schedule.WithClock(fixedClock(now)))

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if prefs.prefs.LastSyncAttemptAt == nil || !prefs.prefs.LastSyncAttemptAt.Equal(now) {
		t.Error("expected attempt timestamp recorded")
	}
	if prefs.prefs.LastSyncSuccessAt == nil {
		t.Error("zero sources is a trivial success")
	}
}

func TestRunOnce_AllFailedIsRetryable(t *testing.T) {
	store := newTestStore(t)
	source := models.NewSource("Broken", models.TypeRSS, "https://broken.example.com/feed")
	if err := store.CreateSource(source); err != nil {
		t.Fatalf("create source: %v", err)
	}

	failing := func(ctx context.Context, feedURL string) (*feed.Feed, error) {
		return nil, fmt.Errorf("connection refused")
	}
	prefs := &memPrefs{prefs: models.DefaultSyncPreferences()}

	s := schedule.New(syncer.New(store, syncer.WithFetchFunc(failing)), store, prefs, &recordingNotifier{},
		schedule.WithConstraintChecker(alwaysOK{}))

	if err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error when every source fails")
	}
	if prefs.prefs.LastSyncAttemptAt == nil {
		t.Error("attempt must be recorded even on failure")
	}
	if prefs.prefs.LastSyncSuccessAt != nil {
		t.Error("failed run must not record a success")
	}
}

func TestRunOnce_NotifiesAboveThreshold(t *testing.T) {
	store := newTestStore(t)
	source := models.NewSource("Blog", models.TypeRSS, "https://a.example.com/feed")
	if err := store.CreateSource(source); err != nil {
		t.Fatalf("create source: %v", err)
	}

	serving := func(ctx context.Context, feedURL string) (*feed.Feed, error) {
		return &feed.Feed{Items: []feed.RawItem{
			{GUID: "p1"}, {GUID: "p2"}, {GUID: "p3"},
		}}, nil
	}

	prefs := &memPrefs{prefs: models.DefaultSyncPreferences()}
	notifier := &recordingNotifier{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	s := schedule.New(syncer.New(store, syncer.WithFetchFunc(serving)), store, prefs, notifier,
		schedule.WithConstraintChecker(alwaysOK{}),
		schedule.WithClock(fixedClock(now)))

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(notifier.counts) != 1 || notifier.counts[0] != 3 {
		t.Errorf("expected one notification for 3 items, got %v", notifier.counts)
	}
	if prefs.prefs.LastItemCount != 3 {
		t.Errorf("expected baseline 3, got %d", prefs.prefs.LastItemCount)
	}
	if prefs.prefs.LastNotifiedAt == nil {
		t.Error("expected LastNotifiedAt recorded")
	}

	// A second run with no new items must stay quiet.
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(notifier.counts) != 1 {
		t.Errorf("expected no further notifications, got %v", notifier.counts)
	}
}

func TestRunOnce_NotificationsDisabled(t *testing.T) {
	store := newTestStore(t)
	source := models.NewSource("Blog", models.TypeRSS, "https://a.example.com/feed")
	if err := store.CreateSource(source); err != nil {
		t.Fatalf("create source: %v", err)
	}

	serving := func(ctx context.Context, feedURL string) (*feed.Feed, error) {
		return &feed.Feed{Items: []feed.RawItem{{GUID: "p1"}, {GUID: "p2"}, {GUID: "p3"}}}, nil
	}

	p := models.DefaultSyncPreferences()
	p.NotifyOnNewItems = false
	prefs := &memPrefs{prefs: p}
	notifier := &recordingNotifier{}

	s := schedule.New(syncer.New(store, syncer.WithFetchFunc(serving)), store, prefs, notifier,
		schedule.WithConstraintChecker(alwaysOK{}))

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(notifier.counts) != 0 {
		t.Errorf("expected no notifications when disabled, got %v", notifier.counts)
	}
	if prefs.prefs.LastItemCount != 3 {
		t.Errorf("baseline must still advance, got %d", prefs.prefs.LastItemCount)
	}
}

func TestRescheduleAndStop(t *testing.T) {
	store := newTestStore(t)
	prefs := &memPrefs{prefs: models.SyncPreferences{BackgroundSync: true, SyncIntervalHours: 6}}

	s := schedule.New(syncer.New(store), store, prefs, &recordingNotifier{},
		schedule.WithConstraintChecker(alwaysOK{}))

	p, _ := prefs.Load()
	s.Reschedule(p)
	// Rescheduling again replaces rather than stacking.
	s.Reschedule(p)
	s.Stop()
	// Stop is idempotent.
	s.Stop()
}

func TestInterval_Clamped(t *testing.T) {
	p := models.SyncPreferences{SyncIntervalHours: 1}
	if p.Interval() != time.Duration(models.MinSyncIntervalHours)*time.Hour {
		t.Errorf("expected clamp to %dh, got %s", models.MinSyncIntervalHours, p.Interval())
	}
	p.SyncIntervalHours = 24
	if p.Interval() != 24*time.Hour {
		t.Errorf("expected 24h, got %s", p.Interval())
	}
}
