package quadstore

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/quadstore/internal/rdf"
)

// EventKind names a notification.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventDeleted EventKind = "deleted"
	EventError   EventKind = "error"
)

// Event is a notification delivered to channel subscribers.
type Event struct {
	// Seq is unique per store and increases with emission. Events from
	// concurrent operations may arrive out of Seq order.
	Seq  int64
	Kind EventKind
	// Quad is set for added and deleted events.
	Quad rdf.Quad
	// Err is set for error events.
	Err error
}

// Observer receives store notifications. Methods are called synchronously
// on the goroutine that performed the operation, after the storage
// acknowledgement, so implementations must not block for long.
type Observer interface {
	QuadAdded(q rdf.Quad)
	QuadDeleted(q rdf.Quad)
	StoreError(err error)
}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Added   func(rdf.Quad)
	Deleted func(rdf.Quad)
	Error   func(error)
}

func (f ObserverFuncs) QuadAdded(q rdf.Quad) {
	if f.Added != nil {
		f.Added(q)
	}
}

func (f ObserverFuncs) QuadDeleted(q rdf.Quad) {
	if f.Deleted != nil {
		f.Deleted(q)
	}
}

func (f ObserverFuncs) StoreError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// Sequencer stamps events. Implementations must be safe for concurrent use.
type Sequencer interface {
	Next() int64
}

// counter is the default Sequencer, starting at 1.
type counter struct {
	seq atomic.Int64
}

func (c *counter) Next() int64 {
	return c.seq.Add(1)
}

type registration struct {
	id       int
	observer Observer
}

// hub fans notifications out to observers in registration order.
type hub struct {
	logger *slog.Logger
	seq    Sequencer

	mu     sync.RWMutex
	nextID int
	regs   []registration
}

func newHub(logger *slog.Logger, seq Sequencer) *hub {
	return &hub{logger: logger, seq: seq}
}

func (h *hub) add(o Observer) (remove func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.regs = append(h.regs, registration{id: id, observer: o})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, r := range h.regs {
				if r.id == id {
					h.regs = append(h.regs[:i:i], h.regs[i+1:]...)
					return
				}
			}
		})
	}
}

// snapshot copies the observer list so callbacks may unsubscribe.
func (h *hub) snapshot() []Observer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Observer, len(h.regs))
	for i, r := range h.regs {
		out[i] = r.observer
	}
	return out
}

// emit stamps e and delivers it to every observer.
func (h *hub) emit(e Event) {
	e.Seq = h.seq.Next()
	for _, o := range h.snapshot() {
		if sink, ok := o.(eventSink); ok {
			sink.deliver(e)
			continue
		}
		switch e.Kind {
		case EventAdded:
			o.QuadAdded(e.Quad)
		case EventDeleted:
			o.QuadDeleted(e.Quad)
		case EventError:
			o.StoreError(e.Err)
		}
	}
}

func (h *hub) added(q rdf.Quad)   { h.emit(Event{Kind: EventAdded, Quad: q}) }
func (h *hub) deleted(q rdf.Quad) { h.emit(Event{Kind: EventDeleted, Quad: q}) }
func (h *hub) failed(err error)   { h.emit(Event{Kind: EventError, Err: err}) }

// eventSink is implemented by observers that want the stamped Event.
type eventSink interface {
	deliver(e Event)
}

// subscription delivers events to a buffered channel. Events that do not
// fit in the buffer are dropped and logged.
type subscription struct {
	logger *slog.Logger
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (s *subscription) deliver(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		s.logger.Warn("subscriber buffer full, event dropped", "kind", e.Kind, "seq", e.Seq)
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *subscription) QuadAdded(q rdf.Quad)   { s.deliver(Event{Kind: EventAdded, Quad: q}) }
func (s *subscription) QuadDeleted(q rdf.Quad) { s.deliver(Event{Kind: EventDeleted, Quad: q}) }
func (s *subscription) StoreError(err error)   { s.deliver(Event{Kind: EventError, Err: err}) }
