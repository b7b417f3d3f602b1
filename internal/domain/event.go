package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventKind discriminates KanbanEvent payloads on the wire.
type EventKind string

const (
	EventTaskCreated   EventKind = "task-created"
	EventTaskUpdated   EventKind = "task-updated"
	EventTaskMoved     EventKind = "task-moved"
	EventTaskDeleted   EventKind = "task-deleted"
	EventColumnCreated EventKind = "column-created"
	EventColumnDeleted EventKind = "column-deleted"
	EventBoardRenamed  EventKind = "board-renamed"
)

// EventKinds lists the closed set of kinds in a stable order.
func EventKinds() []EventKind {
	return []EventKind{
		EventTaskCreated,
		EventTaskUpdated,
		EventTaskMoved,
		EventTaskDeleted,
		EventColumnCreated,
		EventColumnDeleted,
		EventBoardRenamed,
	}
}

// Valid reports whether k belongs to the closed set.
func (k EventKind) Valid() bool {
	_, ok := payloadDecoders[k]
	return ok
}

// EventPayload is the kind-specific body of a KanbanEvent. Implementations
// are plain value types so a constructed event cannot be mutated through a
// shared reference.
type EventPayload interface {
	EventKind() EventKind
}

// TaskSnapshot is the task state a client needs to render a card.
type TaskSnapshot struct {
	ID          string `json:"id"`
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
	Priority    int    `json:"priority"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

type TaskCreated struct {
	Task TaskSnapshot `json:"task"`
}

type TaskUpdated struct {
	Task TaskSnapshot `json:"task"`
}

type TaskMoved struct {
	TaskID   string `json:"taskId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Position int    `json:"position"`
}

type TaskDeleted struct {
	TaskID   string `json:"taskId"`
	ColumnID string `json:"columnId"`
}

type ColumnCreated struct {
	ColumnID string `json:"columnId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type ColumnDeleted struct {
	ColumnID string `json:"columnId"`
}

type BoardRenamed struct {
	Name string `json:"name"`
}

func (TaskCreated) EventKind() EventKind   { return EventTaskCreated }
func (TaskUpdated) EventKind() EventKind   { return EventTaskUpdated }
func (TaskMoved) EventKind() EventKind     { return EventTaskMoved }
func (TaskDeleted) EventKind() EventKind   { return EventTaskDeleted }
func (ColumnCreated) EventKind() EventKind { return EventColumnCreated }
func (ColumnDeleted) EventKind() EventKind { return EventColumnDeleted }
func (BoardRenamed) EventKind() EventKind  { return EventBoardRenamed }

//nolint:gochecknoglobals // closed kind registry
var payloadDecoders = map[EventKind]func(json.RawMessage) (EventPayload, error){
	EventTaskCreated:   decodePayload[TaskCreated],
	EventTaskUpdated:   decodePayload[TaskUpdated],
	EventTaskMoved:     decodePayload[TaskMoved],
	EventTaskDeleted:   decodePayload[TaskDeleted],
	EventColumnCreated: decodePayload[ColumnCreated],
	EventColumnDeleted: decodePayload[ColumnDeleted],
	EventBoardRenamed:  decodePayload[BoardRenamed],
}

func decodePayload[P EventPayload](raw json.RawMessage) (EventPayload, error) {
	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// KanbanEvent is a single board mutation notification. It is never
// persisted; it only exists in transit between a publisher and the
// subscription streams watching BoardID.
type KanbanEvent struct {
	Kind      EventKind
	BoardID   string
	Payload   EventPayload
	Timestamp time.Time
}

// NewKanbanEvent stamps payload for boardID with the current UTC wall-clock
// time. The monotonic reading is stripped so a decoded copy compares equal.
func NewKanbanEvent(boardID string, payload EventPayload) KanbanEvent {
	var kind EventKind
	if payload != nil {
		kind = payload.EventKind()
	}
	return KanbanEvent{
		Kind:      kind,
		BoardID:   boardID,
		Payload:   payload,
		Timestamp: time.Now().UTC().Round(0),
	}
}

// Validate checks the invariants every wire event must satisfy.
func (e KanbanEvent) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownEventKind, e.Kind)
	}
	if e.BoardID == "" {
		return errors.New("kanban event: board ID is required")
	}
	if e.Payload == nil {
		return errors.New("kanban event: payload is required")
	}
	if got := e.Payload.EventKind(); got != e.Kind {
		return fmt.Errorf("kanban event: payload kind %q does not match %q", got, e.Kind)
	}
	return nil
}

type wireEvent struct {
	Kind      EventKind       `json:"kind"`
	BoardID   string          `json:"boardId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func (e KanbanEvent) MarshalJSON() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("kanban event: payload: %w", err)
	}
	return json.Marshal(wireEvent{
		Kind:      e.Kind,
		BoardID:   e.BoardID,
		Timestamp: e.Timestamp,
		Payload:   payload,
	})
}

func (e *KanbanEvent) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	decode, ok := payloadDecoders[w.Kind]
	if !ok {
		return fmt.Errorf("%w: %w %q", ErrMalformedEvent, ErrUnknownEventKind, w.Kind)
	}
	if w.BoardID == "" {
		return fmt.Errorf("%w: missing boardId", ErrMalformedEvent)
	}
	if len(w.Payload) == 0 || string(w.Payload) == "null" {
		return fmt.Errorf("%w: missing payload", ErrMalformedEvent)
	}

	payload, err := decode(w.Payload)
	if err != nil {
		return fmt.Errorf("%w: %s payload: %w", ErrMalformedEvent, w.Kind, err)
	}

	*e = KanbanEvent{
		Kind:      w.Kind,
		BoardID:   w.BoardID,
		Payload:   payload,
		Timestamp: w.Timestamp,
	}
	return nil
}

// EncodeKanbanEvent returns the wire form of e.
func EncodeKanbanEvent(e KanbanEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeKanbanEvent parses a wire message. Every failure wraps
// ErrMalformedEvent.
func DecodeKanbanEvent(data []byte) (KanbanEvent, error) {
	var e KanbanEvent
	if err := json.Unmarshal(data, &e); err != nil {
		if !errors.Is(err, ErrMalformedEvent) {
			err = fmt.Errorf("%w: %w", ErrMalformedEvent, err)
		}
		return KanbanEvent{}, err
	}
	return e, nil
}
