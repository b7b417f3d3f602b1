package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/boardlive/internal/api/v1"
	"github.com/gosuda/boardlive/internal/api/ws"
)

const readyTimeout = 2 * time.Second

func registerAPIRoutes(api huma.API, store v1.DataStore, events v1.EventPublisher) {
	v1.RegisterBoardRoutes(api, store, events)
	v1.RegisterColumnRoutes(api, store, events)
	v1.RegisterTaskRoutes(api, store, events)
}

func registerWSRoutes(r chi.Router, h *ws.Handler) {
	r.Get("/boards/{boardID}", h.ServeBoard)
}

// registerOpsRoutes mounts the unauthenticated health and metrics endpoints.
func registerOpsRoutes(r chi.Router, store Store, events Events) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Not ready until live updates flow: a process without its broker
	// subscription would accept watchers and never send them anything.
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if !events.Subscribed() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "event subscription not established",
			})
			return
		}

		ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("readiness: database ping failed")
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}

		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Handle("/metrics", promhttp.Handler())
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
