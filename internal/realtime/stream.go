package realtime

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/gosuda/boardlive/internal/domain"
)

// ErrStreamCancelled marks the normal end of a Stream: its context was
// cancelled or Close was called. A Stream has no other way to end.
var ErrStreamCancelled = errors.New("realtime: stream cancelled") //nolint:gochecknoglobals // sentinel error

// Stream is one caller's view of the events for a single board. It starts
// at the moment Watch is called; earlier events are never replayed.
type Stream struct {
	ctx      context.Context //nolint:containedctx // a Stream lives exactly as long as its watch context
	boardID  string
	hub      *Hub
	listener *Listener
	stop     func() bool
	err      error
}

// Watch registers a listener on h and returns a stream of the events for
// boardID. The listener is unregistered as soon as ctx is done, even if
// the caller is not currently reading.
func (h *Hub) Watch(ctx context.Context, boardID string) *Stream {
	l := h.Register()
	s := &Stream{
		ctx:      ctx,
		boardID:  boardID,
		hub:      h,
		listener: l,
	}
	s.stop = context.AfterFunc(ctx, func() { h.Unregister(l) })
	return s
}

// BoardID returns the board this stream is scoped to.
func (s *Stream) BoardID() string { return s.boardID }

// Next blocks until the next event for the stream's board arrives. Events
// for other boards are skipped. Once the stream is cancelled Next returns
// an error matching ErrStreamCancelled, and the listener has already been
// removed from the hub.
func (s *Stream) Next() (domain.KanbanEvent, error) {
	if s.err != nil {
		return domain.KanbanEvent{}, s.err
	}
	for {
		e, err := s.listener.Next(s.ctx)
		if err != nil {
			s.Close()
			if cause := context.Cause(s.ctx); cause != nil {
				err = cause
			}
			s.err = fmt.Errorf("%w: %w", ErrStreamCancelled, err)
			return domain.KanbanEvent{}, s.err
		}
		if e.BoardID == s.boardID {
			return e, nil
		}
	}
}

// Events returns the stream as a sequence. Ranging ends when the stream is
// cancelled; breaking out of the loop closes the stream.
func (s *Stream) Events() iter.Seq[domain.KanbanEvent] {
	return func(yield func(domain.KanbanEvent) bool) {
		defer s.Close()
		for {
			e, err := s.Next()
			if err != nil {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Err returns the error that ended the stream, or nil while it is live.
func (s *Stream) Err() error { return s.err }

// Dropped reports how many events this stream lost to queue overflow.
func (s *Stream) Dropped() uint64 { return s.listener.Dropped() }

// Close unregisters the stream's listener. It is safe to call more than
// once and concurrently with context cancellation.
func (s *Stream) Close() {
	s.stop()
	s.hub.Unregister(s.listener)
}
