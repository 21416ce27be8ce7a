package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewNotifier(rdb)
}

func TestNotifierSignalsSubscribers(t *testing.T) {
	n := newTestNotifier(t)
	ch, stop := n.Subscribe("products")
	defer stop()

	ctx := context.Background()
	// The pub/sub registration races with the publish; retry until the
	// subscriber is wired up.
	deadline := time.After(2 * time.Second)
	for {
		if err := n.Publish(ctx, "products"); err != nil {
			t.Fatal(err)
		}
		select {
		case <-ch:
			return
		case <-deadline:
			t.Fatal("no signal received")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNotifierIgnoresOtherCollections(t *testing.T) {
	n := newTestNotifier(t)
	ch, stop := n.Subscribe("orders")
	defer stop()

	if err := n.Publish(context.Background(), "products"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ch:
		t.Fatal("received signal for a different collection")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifierStopClosesChannel(t *testing.T) {
	n := newTestNotifier(t)
	ch, stop := n.Subscribe("orders")
	stop()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected signal after stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after stop")
	}
}
