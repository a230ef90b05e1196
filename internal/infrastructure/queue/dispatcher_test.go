package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopline/commerce/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (r *recordingRepo) InsertEvent(_ context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return r.err
}

func (r *recordingRepo) snapshot() []domain.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderEvent(nil), r.events...)
}

func TestDispatcher_PersistsAllEventsOnClose(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Publish(context.Background(), domain.OrderEvent{OrderID: "order-" + strconv.Itoa(i%5), Type: domain.OrderEventCreated})
	}
	d.Close()

	if got := len(repo.snapshot()); got != 50 {
		t.Fatalf("expected 50 persisted events, got %d", got)
	}
}

func TestDispatcher_PreservesPerOrderOrdering(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	statuses := []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusDelivered}
	for _, st := range statuses {
		for _, id := range []string{"a", "b", "c"} {
			d.Publish(context.Background(), domain.OrderEvent{OrderID: id, Status: st})
		}
	}
	d.Close()

	seen := map[string][]domain.OrderStatus{}
	for _, e := range repo.snapshot() {
		seen[e.OrderID] = append(seen[e.OrderID], e.Status)
	}
	for id, got := range seen {
		for i := range statuses {
			if got[i] != statuses[i] {
				t.Fatalf("order %s: events out of order: %v", id, got)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	for _, id := range []string{"", "x", "65f1c0ffee", "order-123"} {
		first := d.shardIndex(id)
		if first < 0 || first >= 8 {
			t.Fatalf("shard %d out of range", first)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard index for %q is not deterministic", id)
		}
	}
}

func TestDispatcher_InsertFailureDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Publish(context.Background(), domain.OrderEvent{OrderID: "a"})
	d.Publish(context.Background(), domain.OrderEvent{OrderID: "a"})
	d.Close()

	if got := len(repo.snapshot()); got != 2 {
		t.Fatalf("expected both events attempted, got %d", got)
	}
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Close()

	d.Publish(context.Background(), domain.OrderEvent{OrderID: "late"})
	d.Close()

	if got := len(repo.snapshot()); got != 0 {
		t.Fatalf("expected no events, got %d", got)
	}
}

func TestDispatcher_PublishGivesUpOnCancelledContext(t *testing.T) {
	d := NewDispatcher(1, &recordingRepo{}, zerolog.Nop())
	// Not started: the buffer fills and nothing drains it.
	for i := 0; i < channelBuffer; i++ {
		d.Publish(context.Background(), domain.OrderEvent{OrderID: "a"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		d.Publish(ctx, domain.OrderEvent{OrderID: "a"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a cancelled context")
	}
}
