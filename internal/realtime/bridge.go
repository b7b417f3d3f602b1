package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardlive/internal/domain"
	redisstore "github.com/gosuda/boardlive/internal/store/redis"
)

// BrokerSubscriber abstracts the broker subscribe operation.
type BrokerSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// BrokerPinger is implemented by brokers whose health the bridge can check.
// The subscribe stream alone cannot tell: the client heals dropped
// connections without closing it.
type BrokerPinger interface {
	Ping(ctx context.Context) error
}

// Broadcaster receives decoded events from the Bridge.
type Broadcaster interface {
	Broadcast(e domain.KanbanEvent)
}

const (
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
	defaultHealthInterval = 5 * time.Second
)

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBackoff bounds the delay between subscribe attempts.
func WithBackoff(initial, maxDelay time.Duration) BridgeOption {
	return func(b *Bridge) {
		if initial > 0 {
			b.initialBackoff = initial
		}
		if maxDelay > 0 {
			b.maxBackoff = maxDelay
		}
	}
}

// WithHealthCheck sets how often the broker is pinged while subscribed.
func WithHealthCheck(interval time.Duration) BridgeOption {
	return func(b *Bridge) {
		if interval > 0 {
			b.healthInterval = interval
		}
	}
}

// Bridge owns the process's single subscription to the events topic and
// hands every decoded event to the hub.
type Bridge struct {
	broker BrokerSubscriber
	pinger BrokerPinger
	hub    Broadcaster
	topic  string

	initialBackoff time.Duration
	maxBackoff     time.Duration
	healthInterval time.Duration

	subscribed atomic.Bool
	readyOnce  sync.Once
	ready      chan struct{}
}

func NewBridge(broker BrokerSubscriber, hub Broadcaster, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		broker:         broker,
		hub:            hub,
		topic:          redisstore.EventsTopic,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		healthInterval: defaultHealthInterval,
		ready:          make(chan struct{}),
	}
	if p, ok := broker.(BrokerPinger); ok {
		b.pinger = p
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ready is closed the first time the subscription is established.
func (b *Bridge) Ready() <-chan struct{} { return b.ready }

// Subscribed reports whether the bridge currently holds its subscription
// and, when the broker can be pinged, whether the last health check passed.
func (b *Bridge) Subscribed() bool { return b.subscribed.Load() }

// Run subscribes and pumps messages until ctx is cancelled. Subscribe
// failures are retried with exponential backoff for as long as ctx lives;
// a subscription that ends, or whose broker stops answering pings, is
// re-established the same way. Run returns nil on cancellation.
func (b *Bridge) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.initialBackoff
	bo.MaxInterval = b.maxBackoff
	bo.Reset()

	for {
		msgs, cleanup, err := b.broker.Subscribe(ctx, b.topic)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			bridgeSubscribeFailuresTotal.Inc()
			delay := bo.NextBackOff()
			if delay == backoff.Stop {
				delay = b.maxBackoff
			}
			log.Warn().Err(err).
				Str("component", "bridge").
				Dur("retry_in", delay).
				Msg("subscribe to events topic failed")
			if !sleep(ctx, delay) {
				return nil
			}
			continue
		}

		bo.Reset()
		b.subscribed.Store(true)
		b.readyOnce.Do(func() { close(b.ready) })
		log.Info().Str("component", "bridge").Str("topic", b.topic).Msg("subscribed to events topic")

		b.pump(ctx, msgs)
		cleanup()
		b.subscribed.Store(false)

		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Str("component", "bridge").Msg("events subscription lost, resubscribing")
	}
}

func (b *Bridge) pump(ctx context.Context, msgs <-chan []byte) {
	var health <-chan time.Time
	if b.pinger != nil {
		t := time.NewTicker(b.healthInterval)
		defer t.Stop()
		health = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			b.handle(raw)
		case <-health:
			if !b.healthy(ctx) {
				return
			}
		}
	}
}

func (b *Bridge) healthy(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, b.healthInterval)
	defer cancel()

	err := b.pinger.Ping(pctx)
	if err == nil || ctx.Err() != nil {
		return true
	}
	bridgeHealthFailuresTotal.Inc()
	log.Warn().Err(err).Str("component", "bridge").Msg("broker health check failed, dropping subscription")
	return false
}

func (b *Bridge) handle(raw []byte) {
	e, err := domain.DecodeKanbanEvent(raw)
	if err != nil {
		BridgeMalformedTotal.Inc()
		log.Warn().Err(err).
			Str("component", "bridge").
			Int("bytes", len(raw)).
			Msg("discarding malformed broker message")
		return
	}
	b.hub.Broadcast(e)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
