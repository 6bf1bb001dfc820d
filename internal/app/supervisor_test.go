package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staysearch/internal/app"
	"staysearch/internal/domain"
	"staysearch/internal/storage/memory"
)

func newSupervisor(repo *fakeRepo) (*app.Supervisor, *app.Status, *memory.Store) {
	mem := memory.New()
	status := &app.Status{}
	sup := app.NewSupervisor(repo, app.NewSeeder(repo, mem), status, 100*time.Millisecond, 10*time.Millisecond)
	return sup, status, mem
}

func TestStart_Unreachable(t *testing.T) {
	repo := &fakeRepo{pingErr: errDown}
	sup, status, mem := newSupervisor(repo)

	if sup.Start(context.Background()) {
		t.Fatalf("Start should report failure")
	}
	if status.StoreAvailable() {
		t.Fatalf("store must be unavailable")
	}
	if status.Source() != app.SourceMemory {
		t.Fatalf("unexpected source %s", status.Source())
	}
	if mem.Len() != 8 {
		t.Fatalf("expected memory seed, got %d", mem.Len())
	}
	if repo.inserts != 0 {
		t.Fatalf("must not touch durable store")
	}
}

func TestStart_ConnectedSeedsDurableStore(t *testing.T) {
	repo := &fakeRepo{}
	sup, status, mem := newSupervisor(repo)

	if !sup.Start(context.Background()) {
		t.Fatalf("Start should succeed")
	}
	if !status.StoreAvailable() {
		t.Fatalf("store must be available")
	}
	if len(repo.rows) != 8 {
		t.Fatalf("expected 8 durable rows, got %d", len(repo.rows))
	}
	if mem.Len() != 0 {
		t.Fatalf("memory should stay empty, got %d", mem.Len())
	}
}

func TestStart_ConnectedButSeedFails(t *testing.T) {
	repo := &fakeRepo{countErr: errors.New("no table")}
	sup, status, mem := newSupervisor(repo)

	sup.Start(context.Background())
	if !status.StoreAvailable() {
		t.Fatalf("seed failure does not make the store unavailable")
	}
	if mem.Len() != 8 {
		t.Fatalf("expected memory fallback seed, got %d", mem.Len())
	}
}

func TestProbe_Transitions(t *testing.T) {
	repo := &fakeRepo{}
	sup, status, mem := newSupervisor(repo)
	ctx := context.Background()
	sup.Start(ctx)

	repo.setPingErr(errDown)
	sup.Probe(ctx)
	if status.StoreAvailable() {
		t.Fatalf("probe failure should mark the store unavailable")
	}
	if mem.Len() != 8 {
		t.Fatalf("connectivity loss should seed an empty memory cache, got %d", mem.Len())
	}

	repo.setPingErr(nil)
	sup.Probe(ctx)
	if !status.StoreAvailable() {
		t.Fatalf("probe success should restore availability")
	}
	if repo.inserts != 1 {
		t.Fatalf("restore must not duplicate seed data, inserts=%d", repo.inserts)
	}
	if len(repo.rows) != 8 {
		t.Fatalf("expected 8 durable rows, got %d", len(repo.rows))
	}
}

func TestProbe_RestoreAfterFailedStartSeedsStore(t *testing.T) {
	repo := &fakeRepo{pingErr: errDown}
	sup, status, _ := newSupervisor(repo)
	ctx := context.Background()
	sup.Start(ctx)

	repo.setPingErr(nil)
	sup.Probe(ctx)
	if !status.StoreAvailable() {
		t.Fatalf("expected store available after restore")
	}
	if len(repo.rows) != 8 {
		t.Fatalf("expected seed-if-empty on restore, got %d rows", len(repo.rows))
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	repo := &fakeRepo{}
	sup, status, _ := newSupervisor(repo)
	ctx, cancel := context.WithCancel(context.Background())
	sup.Start(ctx)
	repo.setPingErr(errDown)

	done := make(chan error, 1)
	go func() { done <- sup.Watch(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for status.StoreAvailable() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if status.StoreAvailable() {
		t.Fatalf("watch never observed the outage")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not stop after cancel")
	}
}

// seedWatcher records whether the store was still reported available when memory got seeded.
type seedWatcher struct {
	*memory.Store
	status   *app.Status
	upAtSeed []bool
}

func (w *seedWatcher) ReplaceIfEmpty(ls []domain.Listing) bool {
	w.upAtSeed = append(w.upAtSeed, w.status.StoreAvailable())
	return w.Store.ReplaceIfEmpty(ls)
}

func TestMarkUnavailable_SeedsMemoryBeforeSwitchingSource(t *testing.T) {
	repo := &fakeRepo{}
	status := &app.Status{}
	mem := &seedWatcher{Store: memory.New(), status: status}
	sup := app.NewSupervisor(repo, app.NewSeeder(repo, mem), status, 100*time.Millisecond, 10*time.Millisecond)

	if !sup.Start(context.Background()) {
		t.Fatalf("Start should connect")
	}
	if mem.Len() != 0 {
		t.Fatalf("memory must stay empty while the store is up")
	}

	sup.MarkUnavailable(errDown)
	if len(mem.upAtSeed) != 1 || !mem.upAtSeed[0] {
		t.Fatalf("memory seeded after the source switched: %v", mem.upAtSeed)
	}
	if status.StoreAvailable() || mem.Len() != 8 {
		t.Fatalf("expected memory source with 8 listings, got available=%v len=%d", status.StoreAvailable(), mem.Len())
	}

	// already down: nothing more to do
	sup.MarkUnavailable(errDown)
	if len(mem.upAtSeed) != 1 {
		t.Fatalf("second loss must not reseed, calls=%d", len(mem.upAtSeed))
	}
}
