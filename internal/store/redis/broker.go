package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventsTopic is the single channel every process publishes kanban events
// to. Boards are multiplexed onto it; subscribers filter by board ID.
const EventsTopic = "boardlive:kanban-events"

// ErrBrokerUnavailable is returned when the broker cannot be reached for a
// connect, publish or subscribe call.
var ErrBrokerUnavailable = errors.New("redis: broker unavailable") //nolint:gochecknoglobals // sentinel error

const subscriptionBuffer = 64

// Broker holds the process-wide publish and subscribe connections. Both
// clients are safe for concurrent use and reconnect on their own.
type Broker struct {
	pub *redis.Client
	sub *redis.Client
}

// New connects to the broker at url (redis://[:password@]host:port/db).
func New(ctx context.Context, url string) (*Broker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.New: parse url: %w", err)
	}

	subOpts := *opts
	subOpts.PoolSize = 2

	b := &Broker{
		pub: redis.NewClient(opts),
		sub: redis.NewClient(&subOpts),
	}

	if err := b.Ping(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("redis.New: %w", err)
	}

	return b, nil
}

// Ping checks that the publish connection can reach the broker.
func (b *Broker) Ping(ctx context.Context) error {
	if err := b.pub.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrBrokerUnavailable, err)
	}
	return nil
}

func (b *Broker) Close() error {
	pubErr := b.pub.Close()
	subErr := b.sub.Close()
	if err := errors.Join(pubErr, subErr); err != nil {
		return fmt.Errorf("redis.Broker.Close: %w", err)
	}
	return nil
}

func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.pub.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Broker.Publish: %w: %w", ErrBrokerUnavailable, err)
	}
	return nil
}

// Subscribe opens a subscription to channel. The returned stream is closed
// when ctx is cancelled or cleanup is called. Connection drops after the
// subscription is confirmed are healed by the client, which resubscribes
// without closing the stream.
func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := b.sub.Subscribe(ctx, channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.Broker.Subscribe: receive confirmation: %w: %w", ErrBrokerUnavailable, err)
	}

	out := make(chan []byte, subscriptionBuffer)
	redisCh := sub.Channel(redis.WithChannelSize(subscriptionBuffer))

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		cancel()
		_ = sub.Close()
	}

	return out, cleanup, nil
}
