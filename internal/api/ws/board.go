// Package ws serves live board updates over websocket connections.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardlive/internal/domain"
	"github.com/gosuda/boardlive/internal/realtime"
	"github.com/gosuda/boardlive/internal/server/middleware"
)

const writeTimeout = 10 * time.Second

// Watcher opens a per-client event stream for one board.
// *realtime.Service satisfies this interface.
type Watcher interface {
	Watch(ctx context.Context, boardID string) *realtime.Stream
}

// BoardFinder resolves a board within a tenant.
type BoardFinder interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Board, error)
}

// Handler upgrades board watchers to websockets.
type Handler struct {
	events Watcher
	boards BoardFinder
}

func NewHandler(events Watcher, boards BoardFinder) *Handler {
	return &Handler{events: events, boards: boards}
}

// ServeBoard streams every event for {boardID} as a JSON text frame until
// the client goes away. Nothing is replayed: clients fetch the board
// snapshot over HTTP first.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}

	boardID, err := uuid.Parse(chi.URLParam(r, "boardID"))
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	if _, err := h.boards.GetByID(r.Context(), tenantID, boardID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("websocket board lookup")
		http.Error(w, "board lookup failed", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead cancels ctx when they leave.
	ctx := conn.CloseRead(r.Context())

	stream := h.events.Watch(ctx, boardID.String())
	defer stream.Close()

	logger := log.With().
		Str("component", "ws").
		Str("board_id", boardID.String()).
		Logger()
	logger.Debug().Msg("board watcher connected")

	for e := range stream.Events() {
		data, err := domain.EncodeKanbanEvent(e)
		if err != nil {
			logger.Error().Err(err).Str("kind", string(e.Kind)).Msg("websocket encode")
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			logger.Debug().Err(err).Msg("websocket write")
			return
		}
	}

	logger.Debug().Err(stream.Err()).Uint64("dropped", stream.Dropped()).Msg("board watcher disconnected")
	_ = conn.Close(websocket.StatusNormalClosure, "stream closed")
}
