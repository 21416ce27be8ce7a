package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pixalium/backend/internal/redisx"
)

// Notifier fans out per-collection change signals over Redis pub/sub.
// Payloads carry no data; receivers refetch the collection.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) Publish(ctx context.Context, collection string) error {
	return n.rdb.Publish(ctx, fmt.Sprintf(redisx.KeyChangeChannel, collection), "1").Err()
}

// Subscribe returns a channel that receives a signal after each change to the
// collection. Signals are coalesced: a slow receiver sees at least one signal
// for any burst of changes. The stop func closes the subscription.
func (n *Notifier) Subscribe(collection string) (<-chan struct{}, func()) {
	ps := n.rdb.Subscribe(context.Background(), fmt.Sprintf(redisx.KeyChangeChannel, collection))
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range ps.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, func() { _ = ps.Close() }
}
