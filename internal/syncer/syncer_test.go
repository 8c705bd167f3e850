// ABOUTME: Tests for the sync orchestrator: isolation, identity, user state.
// ABOUTME: Uses a real SQLite store with an injected fetch function.

package syncer_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/storage"
	"github.com/quinn/skimmer/internal/syncer"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addSource(t *testing.T, store storage.Store, name, url string) *models.Source {
	t.Helper()
	source := models.NewSource(name, models.TypeRSS, url)
	if err := store.CreateSource(source); err != nil {
		t.Fatalf("create source: %v", err)
	}
	return source
}

// feedsByURL builds a fetch func serving fixed raw items per feed URL.
// URLs mapped to nil report a fetch failure.
func feedsByURL(feeds map[string][]feed.RawItem) syncer.FetchFunc {
	return func(ctx context.Context, feedURL string) (*feed.Feed, error) {
		items, ok := feeds[feedURL]
		if !ok || items == nil {
			return nil, fmt.Errorf("fetch %s: connection refused", feedURL)
		}
		return &feed.Feed{Title: "Feed", Items: items}, nil
	}
}

func TestSyncAll_NewItems(t *testing.T) {
	store := newTestStore(t)
	source := addSource(t, store, "Blog", "https://a.example.com/feed")

	orch := syncer.New(store, syncer.WithFetchFunc(feedsByURL(map[string][]feed.RawItem{
		"https://a.example.com/feed": {
			{GUID: "p1", Title: "One"},
			{GUID: "p2", Title: "Two"},
		},
	})))

	batch, err := orch.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if batch.NewItems != 2 {
		t.Errorf("expected 2 new items, got %d", batch.NewItems)
	}

	items, err := store.ListItems(&storage.ItemFilter{SourceID: &source.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 stored items, got %d", len(items))
	}
}

func TestSyncAll_Resync_NoDuplicates(t *testing.T) {
	store := newTestStore(t)
	addSource(t, store, "Blog", "https://a.example.com/feed")

	fetcher := feedsByURL(map[string][]feed.RawItem{
		"https://a.example.com/feed": {{GUID: "p1", Title: "One"}},
	})
	orch := syncer.New(store, syncer.WithFetchFunc(fetcher))

	for i := 0; i < 2; i++ {
		if _, err := orch.SyncAll(context.Background()); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}

	count, _ := store.CountItems()
	if count != 1 {
		t.Errorf("expected 1 item after re-sync, got %d", count)
	}
}

func TestSyncAll_PreservesUserState(t *testing.T) {
	store := newTestStore(t)
	addSource(t, store, "Blog", "https://a.example.com/feed")

	orch := syncer.New(store, syncer.WithFetchFunc(feedsByURL(map[string][]feed.RawItem{
		"https://a.example.com/feed": {{GUID: "p1", Title: "One"}},
	})))

	if _, err := orch.SyncAll(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	items, _ := store.ListItems(nil)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	id := items[0].ID
	if err := store.UpdateReadState(id, models.StateRead); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := store.UpdateSaved(id, true); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := orch.SyncAll(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got, _ := store.GetItemByIDOrPrefix(id)
	if got.ReadState != models.StateRead || !got.Saved {
		t.Error("read and saved state must survive a re-sync")
	}
}

func TestSyncAll_PartialFailureIsolation(t *testing.T) {
	store := newTestStore(t)
	addSource(t, store, "Good A", "https://a.example.com/feed")
	addSource(t, store, "Broken", "https://broken.example.com/feed")
	addSource(t, store, "Good B", "https://b.example.com/feed")

	orch := syncer.New(store, syncer.WithFetchFunc(feedsByURL(map[string][]feed.RawItem{
		"https://a.example.com/feed": {{GUID: "a1"}},
		"https://b.example.com/feed": {{GUID: "b1"}},
	})))

	batch, err := orch.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	if batch.Failed() != 1 {
		t.Errorf("expected 1 failed source, got %d", batch.Failed())
	}
	if batch.NewItems != 2 {
		t.Errorf("expected 2 new items from healthy sources, got %d", batch.NewItems)
	}
	if batch.AllFailed() {
		t.Error("AllFailed must be false with healthy sources present")
	}

	status := orch.Status()
	if status.Syncing {
		t.Error("expected idle status after batch")
	}
	if status.Completed != 3 || status.Total != 3 {
		t.Errorf("expected completed 3/3, got %d/%d", status.Completed, status.Total)
	}
	if status.ErrorMessage == "" {
		t.Error("expected error message naming the failed source")
	}
	if status.LastSyncedAt == nil {
		t.Error("expected LastSyncedAt set after batch")
	}
}

func TestSyncAll_SingleFlight(t *testing.T) {
	store := newTestStore(t)
	addSource(t, store, "Blog", "https://a.example.com/feed")

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := func(ctx context.Context, feedURL string) (*feed.Feed, error) {
		close(started)
		<-release
		return &feed.Feed{Items: []feed.RawItem{{GUID: "p1"}}}, nil
	}

	orch := syncer.New(store, syncer.WithFetchFunc(blocking))

	done := make(chan error, 1)
	go func() {
		_, err := orch.SyncAll(context.Background())
		done <- err
	}()

	<-started
	_, err := orch.SyncAll(context.Background())
	if !errors.Is(err, syncer.ErrSyncInProgress) {
		t.Errorf("concurrent sync error = %v, want ErrSyncInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Once idle, a new batch is accepted again.
	if _, err := orch.SyncAll(context.Background()); err != nil {
		t.Fatalf("follow-up sync: %v", err)
	}
}

func TestSyncAll_EmptySources(t *testing.T) {
	store := newTestStore(t)
	orch := syncer.New(store)

	batch, err := orch.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(batch.Results) != 0 || batch.NewItems != 0 {
		t.Errorf("expected empty batch, got %+v", batch)
	}
}

func TestSubscribe_SeesTerminalStatus(t *testing.T) {
	store := newTestStore(t)
	addSource(t, store, "Blog", "https://a.example.com/feed")

	orch := syncer.New(store, syncer.WithFetchFunc(feedsByURL(map[string][]feed.RawItem{
		"https://a.example.com/feed": {{GUID: "p1"}},
	})))

	ch, cancel := orch.Subscribe()
	defer cancel()

	if _, err := orch.SyncAll(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Publication is synchronous with the batch, so the buffered
	// snapshots are already queued. The last one must be the idle state.
	var last syncer.Status
	received := 0
drain:
	for {
		select {
		case st := <-ch:
			last = st
			received++
		default:
			break drain
		}
	}

	if received == 0 {
		t.Fatal("no status updates received")
	}
	if last.Syncing {
		t.Error("final snapshot must be idle")
	}
	if last.Completed != 1 {
		t.Errorf("final snapshot completed = %d, want 1", last.Completed)
	}
}

func TestSyncOne_UnknownSource(t *testing.T) {
	store := newTestStore(t)
	orch := syncer.New(store)

	_, err := orch.SyncOne(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
