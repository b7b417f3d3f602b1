package v1

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardlive/internal/domain"
	"github.com/gosuda/boardlive/internal/server/middleware"
)

func tenantFrom(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error403Forbidden("missing tenant context")
	}
	return tenantID, nil
}

// writerTenant is tenantFrom for mutations: viewers are rejected.
func writerTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if !middleware.CanWrite(ctx) {
		return uuid.Nil, huma.Error403Forbidden("insufficient permissions")
	}
	return tenantID, nil
}

func loadBoard(ctx context.Context, store DataStore, tenantID, boardID uuid.UUID) (*domain.Board, error) {
	b, err := store.Boards().GetByID(ctx, tenantID, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("board not found")
		}
		return nil, huma.Error500InternalServerError("failed to get board", err)
	}
	return b, nil
}

// loadColumn fetches a column and checks it belongs to boardID.
func loadColumn(ctx context.Context, store DataStore, tenantID, boardID, columnID uuid.UUID) (*domain.Column, error) {
	c, err := store.Columns().GetByID(ctx, tenantID, columnID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("column not found")
		}
		return nil, huma.Error500InternalServerError("failed to get column", err)
	}
	if c.BoardID != boardID {
		return nil, huma.Error404NotFound("column not found")
	}
	return c, nil
}

func loadTask(ctx context.Context, store DataStore, tenantID, id uuid.UUID) (*domain.Task, error) {
	t, err := store.Tasks().GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("task not found")
		}
		return nil, huma.Error500InternalServerError("failed to get task", err)
	}
	return t, nil
}

const announceTimeout = 2 * time.Second

// announce publishes the event for a mutation that has already committed.
// A failed publish only costs live viewers an update, so the request still
// succeeds. The change is durable once committed, so the publish outlives
// a client that hangs up.
func announce(ctx context.Context, events EventPublisher, boardID uuid.UUID, payload domain.EventPayload) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	defer cancel()

	e := domain.NewKanbanEvent(boardID.String(), payload)
	if err := events.Publish(ctx, e); err != nil {
		log.Warn().Err(err).
			Str("component", "api").
			Str("kind", string(e.Kind)).
			Str("board_id", e.BoardID).
			Msg("board change committed but live update was not published")
	}
}
