package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")

	// ErrMalformedEvent is returned when a wire message cannot be decoded
	// into a KanbanEvent.
	ErrMalformedEvent = errors.New("domain: malformed kanban event")
	// ErrUnknownEventKind is returned for a kind outside the closed set.
	ErrUnknownEventKind = errors.New("domain: unknown kanban event kind")
)
