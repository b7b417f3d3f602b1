// Package realtime distributes kanban board events across server processes.
//
// Mutation handlers publish events to a single broker topic through the
// Publisher. Each process runs one Bridge that holds the only subscription
// to that topic and feeds a local Hub, and every client watching a board
// reads from its own Stream on the Hub:
//
//	handler -> Publisher -> broker -> Bridge (per process) -> Hub -> Stream (per client)
package realtime

import (
	"context"
	"time"

	"github.com/gosuda/boardlive/internal/domain"
)

// Broker is the connection pair the service needs.
type Broker interface {
	BrokerPublisher
	BrokerSubscriber
	BrokerPinger
}

// Options configures a Service.
type Options struct {
	QueueSize      int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	HealthInterval time.Duration
}

// Service bundles the publisher, bridge and hub of one process. Construct
// it once at startup and share it.
type Service struct {
	hub       *Hub
	publisher *Publisher
	bridge    *Bridge
}

func NewService(broker Broker, opts Options) *Service {
	hub := NewHub(opts.QueueSize)
	bridge := NewBridge(broker, hub,
		WithBackoff(opts.InitialBackoff, opts.MaxBackoff),
		WithHealthCheck(opts.HealthInterval),
	)
	return &Service{
		hub:       hub,
		publisher: NewPublisher(broker),
		bridge:    bridge,
	}
}

// Run keeps the broker subscription alive until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.bridge.Run(ctx)
}

func (s *Service) Publish(ctx context.Context, e domain.KanbanEvent) error {
	return s.publisher.Publish(ctx, e)
}

func (s *Service) Watch(ctx context.Context, boardID string) *Stream {
	return s.hub.Watch(ctx, boardID)
}

// Ready is closed once the bridge first holds its subscription.
func (s *Service) Ready() <-chan struct{} { return s.bridge.Ready() }

// Subscribed reports whether live updates are currently flowing in.
func (s *Service) Subscribed() bool { return s.bridge.Subscribed() }

// Listeners returns the number of active streams in this process.
func (s *Service) Listeners() int { return s.hub.Len() }
