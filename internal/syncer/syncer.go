// ABOUTME: Sync orchestrator driving batch syncs across sources
// ABOUTME: Single-flight, per-source failure isolation, observable status

package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/merge"
	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/normalize"
	"github.com/quinn/skimmer/internal/storage"
)

// ErrSyncInProgress is returned when a batch is requested while another
// batch is already running. The running batch is unaffected.
var ErrSyncInProgress = errors.New("a sync is already running")

// Status is the transient, process-local view of the current batch.
// Completed increases monotonically from 0 to Total within one batch.
type Status struct {
	Syncing         bool
	Completed       int
	Total           int
	CurrentSourceID string
	LastSyncedAt    *time.Time
	ErrorMessage    string
}

// SourceResult is the per-source outcome inside a batch.
type SourceResult struct {
	SourceID   string
	SourceName string
	NewItems   int
	Err        error
}

// BatchResult aggregates per-source outcomes for one batch. One source
// failing never aborts the remaining sources.
type BatchResult struct {
	Results  []SourceResult
	NewItems int
}

// Failed returns the number of sources that errored in the batch.
func (b *BatchResult) Failed() int {
	return lo.CountBy(b.Results, func(r SourceResult) bool { return r.Err != nil })
}

// AllFailed reports whether every source in a non-empty batch errored.
func (b *BatchResult) AllFailed() bool {
	return len(b.Results) > 0 && b.Failed() == len(b.Results)
}

// LastError returns the error of the last failed source, if any.
func (b *BatchResult) LastError() error {
	var last error
	for _, r := range b.Results {
		if r.Err != nil {
			last = r.Err
		}
	}
	return last
}

// FetchFunc retrieves and parses one feed location. Injectable for tests.
type FetchFunc func(ctx context.Context, feedURL string) (*feed.Feed, error)

// Orchestrator runs batch syncs over stored sources. At most one batch
// is in flight at a time; status mutation is confined to the running
// batch's sequential execution path.
type Orchestrator struct {
	store storage.Store
	fetch FetchFunc
	now   func() time.Time

	mu      sync.Mutex
	status  Status
	subs    map[int]chan Status
	nextSub int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFetchFunc replaces the feed fetcher.
func WithFetchFunc(f FetchFunc) Option {
	return func(o *Orchestrator) { o.fetch = f }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator over the given store.
func New(store storage.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store: store,
		fetch: feed.Fetch,
		now:   time.Now,
		subs:  make(map[int]chan Status),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status returns a snapshot of the current sync status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Subscribe returns a channel receiving status snapshots and a cancel
// function. Slow receivers miss intermediate updates rather than
// blocking the batch.
func (o *Orchestrator) Subscribe() (<-chan Status, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSub
	o.nextSub++
	ch := make(chan Status, 16)
	o.subs[id] = ch

	cancel := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if existing, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// SyncAll runs a batch over every stored source.
func (o *Orchestrator) SyncAll(ctx context.Context) (*BatchResult, error) {
	sources, err := o.store.ListSources()
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return o.syncBatch(ctx, sources)
}

// SyncOne runs a batch over a single source.
func (o *Orchestrator) SyncOne(ctx context.Context, sourceID string) (*BatchResult, error) {
	source, err := o.store.GetSource(sourceID)
	if err != nil {
		return nil, err
	}
	return o.syncBatch(ctx, []*models.Source{source})
}

// syncBatch drives the state machine Idle -> Running -> Idle. Sources
// are processed sequentially; a batch runs to completion over all
// requested sources with no mid-flight cancellation.
func (o *Orchestrator) syncBatch(ctx context.Context, sources []*models.Source) (*BatchResult, error) {
	if !o.begin(len(sources)) {
		return nil, ErrSyncInProgress
	}

	batch := &BatchResult{Results: make([]SourceResult, 0, len(sources))}
	var lastErr error
	var lastErrSource string

	for _, source := range sources {
		o.setStatus(func(st *Status) {
			st.CurrentSourceID = source.ID
		})

		result := o.syncSource(ctx, source)
		batch.Results = append(batch.Results, result)
		batch.NewItems += result.NewItems
		if result.Err != nil {
			lastErr = result.Err
			lastErrSource = source.DisplayName()
		}

		o.setStatus(func(st *Status) {
			st.Completed++
		})
	}

	finished := o.now()
	o.setStatus(func(st *Status) {
		st.Syncing = false
		st.CurrentSourceID = ""
		st.LastSyncedAt = &finished
		if lastErr != nil {
			st.ErrorMessage = fmt.Sprintf("%s: %v", lastErrSource, lastErr)
		}
	})

	return batch, nil
}

// begin transitions Idle -> Running, or reports false if a batch is
// already running (single-flight; counters of the running batch are
// left untouched).
func (o *Orchestrator) begin(total int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.Syncing {
		return false
	}
	o.status = Status{
		Syncing:      true,
		Total:        total,
		LastSyncedAt: o.status.LastSyncedAt,
	}
	o.publishLocked()
	return true
}

// syncSource runs fetch -> normalize -> merge -> persist for one
// source. Failures are captured in the result, never propagated.
func (o *Orchestrator) syncSource(ctx context.Context, source *models.Source) SourceResult {
	result := SourceResult{SourceID: source.ID, SourceName: source.DisplayName()}

	parsed, err := o.fetch(ctx, source.URL)
	if err != nil {
		result.Err = fmt.Errorf("fetch: %w", err)
		return result
	}

	candidates := make([]models.ContentItem, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		if item, ok := normalize.Item(source, raw); ok {
			candidates = append(candidates, item)
		}
	}

	ids := lo.Map(candidates, func(c models.ContentItem, _ int) string { return c.ID })
	stored, err := o.store.GetItemsByIDs(ids)
	if err != nil {
		result.Err = fmt.Errorf("load existing items: %w", err)
		return result
	}

	existing := make(map[string]models.ContentItem, len(stored))
	for _, item := range stored {
		existing[item.ID] = *item
	}

	merged := merge.Items(existing, candidates, o.now())
	if err := o.store.UpsertItems(merged); err != nil {
		result.Err = fmt.Errorf("persist items: %w", err)
		return result
	}

	for _, c := range candidates {
		if _, ok := existing[c.ID]; !ok {
			result.NewItems++
		}
	}
	return result
}

// setStatus mutates status under the lock and publishes a snapshot so
// observers only ever see consistent states.
func (o *Orchestrator) setStatus(mutate func(*Status)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.status)
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	snapshot := o.status
	for _, ch := range o.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
