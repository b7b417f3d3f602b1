package realtime

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardlive/internal/domain"
	redisstore "github.com/gosuda/boardlive/internal/store/redis"
)

// BrokerPublisher abstracts the broker publish operation.
type BrokerPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Publisher writes kanban events to the shared events topic. Mutation
// handlers call it after their transaction commits.
type Publisher struct {
	broker BrokerPublisher
	topic  string
}

func NewPublisher(broker BrokerPublisher) *Publisher {
	return &Publisher{broker: broker, topic: redisstore.EventsTopic}
}

// Publish sends exactly one broker message for e. An event that cannot be
// encoded is a programming error: it is logged and dropped, never retried.
// Broker failures wrap redis.ErrBrokerUnavailable; callers should treat
// them as a lost notification, not a failed mutation.
func (p *Publisher) Publish(ctx context.Context, e domain.KanbanEvent) error {
	payload, err := domain.EncodeKanbanEvent(e)
	if err != nil {
		PublishFailuresTotal.WithLabelValues("encode").Inc()
		log.Error().Err(err).
			Str("component", "publisher").
			Str("kind", string(e.Kind)).
			Str("board_id", e.BoardID).
			Msg("dropping kanban event that cannot be encoded")
		return fmt.Errorf("realtime.Publisher.Publish: encode: %w", err)
	}

	if err := p.broker.Publish(ctx, p.topic, payload); err != nil {
		PublishFailuresTotal.WithLabelValues("broker").Inc()
		return fmt.Errorf("realtime.Publisher.Publish: %w", err)
	}

	publishedTotal.WithLabelValues(string(e.Kind)).Inc()
	return nil
}
