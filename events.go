package btpower

import (
	"sync"
	"time"

	"github.com/cskr/pubsub/v2"
)

const (
	eventsTopic    = "sequence"
	eventsCapacity = 32
)

// Event is published on every state transition of an enable or disable
// sequence. Err is set only when State is StateFailed.
type Event struct {
	OpID      string
	Operation Operation
	State     SequenceState
	Err       error
	Time      time.Time
}

// Events fans sequence transitions out to subscribers. Publishing never
// blocks the sequence: a subscriber that does not keep up misses events,
// and nothing is published once Events is closed.
type Events struct {
	mu     sync.RWMutex
	closed bool
	ps     *pubsub.PubSub[string, Event]
}

func NewEvents() *Events {
	return &Events{
		ps: pubsub.New[string, Event](eventsCapacity),
	}
}

// Subscribe returns a channel receiving every following event. After Close
// the returned channel is already closed.
func (e *Events) Subscribe() chan Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	return e.ps.Sub(eventsTopic)
}

// Unsubscribe stops delivery to ch and closes it.
func (e *Events) Unsubscribe(ch chan Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	e.ps.Unsub(ch, eventsTopic)
}

// Close closes all subscriber channels. It may be called more than once.
func (e *Events) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.ps.Shutdown()
}

func (e *Events) publish(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	e.ps.TryPub(ev, eventsTopic)
}
