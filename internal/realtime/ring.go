package realtime

import "github.com/gosuda/boardlive/internal/domain"

// ring is a fixed-capacity FIFO that overwrites its oldest element when
// full. It is not safe for concurrent use; Listener guards it.
type ring struct {
	buf   []domain.KanbanEvent
	head  int // index of the oldest element
	count int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]domain.KanbanEvent, capacity)}
}

// push appends e and reports whether the oldest element was evicted to
// make room for it.
func (r *ring) push(e domain.KanbanEvent) bool {
	if r.count == len(r.buf) {
		r.buf[r.head] = e
		r.head = (r.head + 1) % len(r.buf)
		return true
	}
	r.buf[(r.head+r.count)%len(r.buf)] = e
	r.count++
	return false
}

func (r *ring) pop() (domain.KanbanEvent, bool) {
	if r.count == 0 {
		return domain.KanbanEvent{}, false
	}
	e := r.buf[r.head]
	r.buf[r.head] = domain.KanbanEvent{} // release payload for GC
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return e, true
}

func (r *ring) len() int { return r.count }

func (r *ring) reset() {
	clear(r.buf)
	r.head = 0
	r.count = 0
}
