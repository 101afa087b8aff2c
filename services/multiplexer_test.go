package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nvraman/suraksha/core"
)

func recvSnapshot(t *testing.T, sub *Subscription) core.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return core.Snapshot{}
}

func doc(id, status string) core.Document {
	return core.Document{ID: id, Fields: map[string]any{"status": status}}
}

func TestObserve_DeliversSnapshotsInOrder(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	sub, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	defer sub.Cancel()

	source.Emit(core.CollectionSOSAlerts, []core.Document{doc("A", "active")})
	first := recvSnapshot(t, sub)
	if len(first.Docs) != 1 {
		t.Fatalf("first snapshot has %d docs, want 1", len(first.Docs))
	}

	source.Emit(core.CollectionSOSAlerts, []core.Document{doc("A", "active"), doc("B", "pending")})
	second := recvSnapshot(t, sub)
	if len(second.Docs) != 2 {
		t.Fatalf("second snapshot has %d docs, want 2", len(second.Docs))
	}
	if second.ServerTime.Before(first.ServerTime) {
		t.Error("snapshots delivered out of server-time order")
	}
}

// Requirement: exactly one live subscription per collection key.
func TestObserve_DuplicateKeyRejected(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	sub, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	defer sub.Cancel()

	if _, err := mux.Observe(context.Background(), core.CollectionSOSAlerts); !errors.Is(err, core.ErrAlreadyObserved) {
		t.Errorf("second Observe() error = %v, want ErrAlreadyObserved", err)
	}

	// A different collection is unaffected.
	other, err := mux.Observe(context.Background(), core.CollectionHelpRequests)
	if err != nil {
		t.Errorf("Observe(other collection) error = %v", err)
	}
	other.Cancel()
}

// Requirement: Cancel is idempotent, and no snapshot is delivered after it.
func TestCancel_IdempotentAndStopsDelivery(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	sub, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	sub.Cancel()
	sub.Cancel() // no-op

	// The channel must close without delivering anything further.
	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			t.Error("snapshot delivered after Cancel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after Cancel")
	}

	// Wait for the watcher to unregister, then confirm the source side
	// is released too.
	deadline := time.Now().Add(time.Second)
	for source.WatcherCount(core.CollectionSOSAlerts) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("source watcher leaked after Cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestObserve_KeyReusableAfterCancel(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	first, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	first.Cancel()

	second, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() after Cancel error = %v", err)
	}
	second.Cancel()
}

// Requirement: establishment errors surface once; nothing is retried.
func TestObserve_EstablishmentErrorPropagates(t *testing.T) {
	source := NewFakeCollectionSource()
	source.watchErr = core.ErrUnavailable
	mux := NewLiveViewMultiplexer(source, nil)

	if _, err := mux.Observe(context.Background(), core.CollectionSOSAlerts); !errors.Is(err, core.ErrUnavailable) {
		t.Fatalf("Observe() error = %v, want ErrUnavailable", err)
	}

	// The failed attempt must not occupy the key.
	source.watchErr = nil
	sub, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() after failure error = %v", err)
	}
	sub.Cancel()
}

func TestCancelAll_TearsDownEverySubscription(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	subA, _ := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	subB, _ := mux.Observe(context.Background(), core.CollectionHelpRequests)

	mux.CancelAll()

	for _, sub := range []*Subscription{subA, subB} {
		select {
		case _, ok := <-sub.Snapshots():
			if ok {
				t.Error("snapshot delivered after CancelAll")
			}
		case <-time.After(time.Second):
			t.Error("channel not closed after CancelAll")
		}
	}

	if mux.Live(core.CollectionSOSAlerts) || mux.Live(core.CollectionHelpRequests) {
		t.Error("subscriptions still registered after CancelAll")
	}
}

// Scenario: snapshot [A,B] then [A,B,C] - the derived pending count is
// recomputed from each snapshot independently and ends reflecting C.
func TestDerivedViews_RecomputePerSnapshot(t *testing.T) {
	source := NewFakeCollectionSource()
	mux := NewLiveViewMultiplexer(source, nil)

	sub, err := mux.Observe(context.Background(), core.CollectionSOSAlerts)
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	defer sub.Cancel()

	source.Emit(core.CollectionSOSAlerts, []core.Document{doc("A", "pending"), doc("B", "resolved")})
	if got := PendingCount(recvSnapshot(t, sub)); got != 1 {
		t.Errorf("PendingCount = %d, want 1", got)
	}

	source.Emit(core.CollectionSOSAlerts, []core.Document{doc("A", "pending"), doc("B", "resolved"), doc("C", "pending")})
	snap := recvSnapshot(t, sub)
	if got := PendingCount(snap); got != 2 {
		t.Errorf("PendingCount = %d, want 2", got)
	}
	if got := len(UnresolvedAlerts(snap)); got != 2 {
		t.Errorf("UnresolvedAlerts = %d docs, want 2", got)
	}
}

func TestDerivedViews_EmptySnapshot(t *testing.T) {
	snap := core.Snapshot{Collection: core.CollectionSOSAlerts}
	if PendingCount(snap) != 0 {
		t.Error("PendingCount of empty snapshot != 0")
	}
	if UnresolvedAlerts(snap) != nil {
		t.Error("UnresolvedAlerts of empty snapshot != nil")
	}
	if len(ActiveIncidents(snap)) != 0 {
		t.Error("ActiveIncidents of empty snapshot not empty")
	}
}
