package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardlive/internal/domain"
)

// ErrListenerClosed is returned by Listener.Next after Unregister.
var ErrListenerClosed = errors.New("realtime: listener closed") //nolint:gochecknoglobals // sentinel error

// DefaultQueueSize is the per-listener queue capacity used when none is
// configured.
const DefaultQueueSize = 64

const dropLogEvery = 100

// Hub fans events out to every registered listener. Each listener owns a
// bounded queue; when it is full the oldest queued event is dropped, so a
// stalled listener never blocks Broadcast or its other listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]*Listener
	nextID    uint64
	queueSize int
}

// NewHub creates a hub whose listeners buffer up to queueSize events.
func NewHub(queueSize int) *Hub {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		listeners: make(map[uint64]*Listener),
		queueSize: queueSize,
	}
}

// Register adds a listener. It only receives events broadcast after it
// was registered.
func (h *Hub) Register() *Listener {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	l := &Listener{
		id:    h.nextID,
		queue: newRing(h.queueSize),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	h.listeners[l.id] = l
	hubListeners.Inc()
	return l
}

// Unregister removes l. No Broadcast that starts after Unregister returns
// reaches l, and any events still queued for it are discarded. Calling it
// more than once is a no-op.
func (h *Hub) Unregister(l *Listener) {
	if l == nil {
		return
	}

	h.mu.Lock()
	_, ok := h.listeners[l.id]
	delete(h.listeners, l.id)
	h.mu.Unlock()

	if ok {
		hubListeners.Dec()
	}
	l.close()
}

// Broadcast delivers e to the listeners registered when the call starts.
// It never blocks on a listener.
func (h *Hub) Broadcast(e domain.KanbanEvent) {
	h.mu.RLock()
	snapshot := make([]*Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		snapshot = append(snapshot, l)
	}
	h.mu.RUnlock()

	hubBroadcastsTotal.Inc()
	for _, l := range snapshot {
		l.deliver(e)
	}
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Listener is one consumer's registration on a Hub.
type Listener struct {
	id uint64

	mu      sync.Mutex
	queue   *ring
	closed  bool
	dropped uint64

	wake chan struct{}
	done chan struct{}
}

// Next returns the oldest queued event, waiting until one arrives, ctx is
// done, or the listener is unregistered.
func (l *Listener) Next(ctx context.Context) (domain.KanbanEvent, error) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return domain.KanbanEvent{}, ErrListenerClosed
		}
		e, ok := l.queue.pop()
		l.mu.Unlock()
		if ok {
			return e, nil
		}

		select {
		case <-ctx.Done():
			return domain.KanbanEvent{}, ctx.Err()
		case <-l.done:
		case <-l.wake:
		}
	}
}

// Dropped returns how many events were evicted from this listener's queue.
func (l *Listener) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Pending returns the number of queued events.
func (l *Listener) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.len()
}

// Done is closed once the listener has been unregistered.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

func (l *Listener) deliver(e domain.KanbanEvent) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	evicted := l.queue.push(e)
	if evicted {
		l.dropped++
	}
	dropped := l.dropped
	l.mu.Unlock()

	if evicted {
		HubDroppedTotal.Inc()
		if dropped%dropLogEvery == 1 {
			log.Warn().
				Str("component", "hub").
				Uint64("listener", l.id).
				Uint64("dropped", dropped).
				Msg("listener queue full, dropping oldest events")
		}
	}

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue.reset()
	close(l.done)
}
