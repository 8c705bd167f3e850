// ABOUTME: Background scheduler triggering periodic full syncs
// ABOUTME: Constraint-gated with exponential backoff; reschedule replaces

package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/notify"
	"github.com/quinn/skimmer/internal/storage"
	"github.com/quinn/skimmer/internal/syncer"
)

// JobName uniquely identifies the periodic sync job; rescheduling
// replaces the job of this name rather than duplicating it.
const JobName = "skimmer-background-sync"

// initialBackoff is the first retry delay after a failed run.
const initialBackoff = 30 * time.Minute

// constraintRetry is how long to wait before rechecking unmet
// constraints (offline, low battery).
const constraintRetry = 5 * time.Minute

// lowBatteryThreshold is the battery percentage below which scheduled
// runs are deferred while discharging.
const lowBatteryThreshold = 20

// ConstraintChecker gates scheduled runs on device conditions.
type ConstraintChecker interface {
	NetworkAvailable() bool
	BatteryOK() bool
}

// PrefsStore loads and persists sync preferences durably.
type PrefsStore interface {
	Load() (models.SyncPreferences, error)
	Save(models.SyncPreferences) error
}

// Scheduler owns the periodic sync job. It wires the orchestrator,
// preference bookkeeping, and notification throttling together; the
// run itself stays free of scheduling concerns.
type Scheduler struct {
	orch     *syncer.Orchestrator
	store    storage.Store
	prefs    PrefsStore
	notifier notify.Notifier
	checker  ConstraintChecker
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConstraintChecker replaces the device-condition checker.
func WithConstraintChecker(c ConstraintChecker) Option {
	return func(s *Scheduler) { s.checker = c }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler.
func New(orch *syncer.Orchestrator, store storage.Store, prefs PrefsStore, notifier notify.Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		orch:     orch,
		store:    store,
		prefs:    prefs,
		notifier: notifier,
		checker:  &hostChecker{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reschedule installs the periodic trigger for the given preferences,
// replacing any existing schedule. Disabled preferences cancel the
// schedule instead.
func (s *Scheduler) Reschedule(p models.SyncPreferences) {
	s.Stop()

	if !p.BackgroundSync {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, p.Interval(), done)
}

// Stop cancels any installed schedule and waits for it to wind down.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// loop fires RunOnce on the configured period. A failed run shortens
// the next delay to an exponential backoff starting at 30 minutes and
// capped at the period; success restores the period.
func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	backoff := initialBackoff
	delay := interval

	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !s.checker.NetworkAvailable() || !s.checker.BatteryOK() {
			delay = constraintRetry
			continue
		}

		if err := s.RunOnce(ctx); err != nil {
			log.Printf("%s: run failed: %v (retrying in %s)", JobName, err, backoff)
			delay = backoff
			backoff *= 2
			if backoff > interval {
				backoff = interval
			}
			continue
		}

		backoff = initialBackoff
		delay = interval
	}
}

// RunOnce executes one scheduled sync pass: records the attempt, runs
// a full batch, and on success updates the item-count baseline and
// evaluates the notification throttle. An all-sources-failed batch is
// a retryable error; zero sources is a trivial success.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	p, err := s.prefs.Load()
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	attempt := s.now()
	p.LastSyncAttemptAt = &attempt
	if err := s.prefs.Save(p); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	sources, err := s.store.ListSources()
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	if len(sources) == 0 {
		p.LastSyncSuccessAt = &attempt
		return s.prefs.Save(p)
	}

	batch, err := s.orch.SyncAll(ctx)
	if errors.Is(err, syncer.ErrSyncInProgress) {
		// Another batch is mid-flight; this trigger has nothing to do.
		return nil
	}
	if err != nil {
		return err
	}

	if batch.AllFailed() {
		return fmt.Errorf("all %d sources failed: %w", len(batch.Results), batch.LastError())
	}

	count, err := s.store.CountItems()
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	finished := s.now()
	delta := count - p.LastItemCount
	if delta < 0 {
		delta = 0
	}

	p.LastSyncSuccessAt = &finished
	p.LastItemCount = count

	if notify.ShouldNotify(delta, p.NotifyOnNewItems, p.LastNotifiedAt, finished) {
		s.notifier.NotifyNewItems(delta)
		p.LastNotifiedAt = &finished
	}

	return s.prefs.Save(p)
}

// hostChecker is the default constraint checker: network reachability
// via a short TCP dial, battery via sysfs where available.
type hostChecker struct{}

func (hostChecker) NetworkAvailable() bool {
	conn, err := net.DialTimeout("tcp", "1.1.1.1:443", 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (hostChecker) BatteryOK() bool {
	// No battery info means mains power; don't block the run.
	status, err := os.ReadFile("/sys/class/power_supply/BAT0/status")
	if err != nil {
		return true
	}
	if strings.TrimSpace(string(status)) == "Charging" {
		return true
	}
	capacity, err := os.ReadFile("/sys/class/power_supply/BAT0/capacity")
	if err != nil {
		return true
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(capacity)))
	if err != nil {
		return true
	}
	return pct >= lowBatteryThreshold
}
