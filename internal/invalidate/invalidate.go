package invalidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-admin/meridian/internal/directory"
)

// Channel is the pub/sub channel invalidation notices travel on.
const Channel = "meridian.invalidate"

// Scope returns the entity kinds whose derived views a confirmed
// mutation of kind invalidates, the mutated kind included. Role edits
// reach group-derived and user-derived permission displays; permission
// and resource edits reach the role views that reference them.
func Scope(kind directory.Kind) []directory.Kind {
	switch kind {
	case directory.KindUser:
		return []directory.Kind{directory.KindUser}
	case directory.KindGroup:
		return []directory.Kind{directory.KindGroup, directory.KindUser}
	case directory.KindRole:
		return []directory.Kind{directory.KindRole, directory.KindGroup, directory.KindUser}
	case directory.KindPermission:
		return []directory.Kind{directory.KindPermission, directory.KindRole, directory.KindUser}
	case directory.KindResource:
		return []directory.Kind{directory.KindResource, directory.KindRole}
	default:
		return []directory.Kind{kind}
	}
}

// Broadcaster publishes invalidation notices over Redis pub/sub so
// sibling consoles can drop their snapshots instead of polling for
// changes. Subscribing is optional; a console may ignore
// the channel and pull-refresh instead.
type Broadcaster struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBroadcaster builds a broadcaster over the given client.
func NewBroadcaster(client *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{client: client, logger: logger}
}

// Publish announces that the given kinds' snapshots are stale. One
// message per kind; publish failures are logged, not fatal, since the
// fallback is an ordinary refresh.
func (b *Broadcaster) Publish(ctx context.Context, kinds ...directory.Kind) {
	if b == nil || b.client == nil {
		return
	}
	for _, kind := range kinds {
		if err := b.client.Publish(ctx, Channel, string(kind)).Err(); err != nil {
			b.logger.Warn("publish invalidation",
				slog.String("kind", string(kind)), slog.Any("error", err))
		}
	}
}

// Listen subscribes to invalidation notices. The returned channel closes
// when ctx is done.
func (b *Broadcaster) Listen(ctx context.Context) (<-chan directory.Kind, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("invalidate: no redis client configured")
	}
	sub := b.client.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("invalidate: subscribe: %w", err)
	}
	out := make(chan directory.Kind)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- directory.Kind(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
