// Package input turns frontend events into game input events and buffers them
// between frames.
package input

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Kind discriminates input events
type Kind uint8

const (
	KindKeyPress Kind = iota
	KindKeyRelease
	KindPointerMotion
	KindCloseRequest
	KindResize
)

// Key is a game action bound to a physical key
type Key uint8

const (
	KeyNone Key = iota
	KeyForward
	KeyBack
	KeyStrafeLeft
	KeyStrafeRight
	KeyEscape
)

var keyNames = map[Key]string{
	KeyForward:     "forward",
	KeyBack:        "back",
	KeyStrafeLeft:  "strafe_left",
	KeyStrafeRight: "strafe_right",
	KeyEscape:      "escape",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "none"
}

// ParseKey resolves an action name as used in config files
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range keyNames {
		if n == name {
			return k, nil
		}
	}
	return KeyNone, errors.Errorf("unknown action %q", name)
}

// Event is one input occurrence
// DX and DY carry pointer motion; Width and Height carry the new size on resize
type Event struct {
	Kind   Kind
	Key    Key
	DX, DY float32
	Width  int
	Height int
}

// Source hands over the events received since the previous call
// Drain never blocks
type Source interface {
	Drain(dst []Event) []Event
}

// Queue is a goroutine-safe FIFO of events
// It is the Source used by tests and the buffer behind the terminal source
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 32)}
}

// Push appends events
func (q *Queue) Push(events ...Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, events...)
}

// Drain appends all queued events to dst and empties the queue
func (q *Queue) Drain(dst []Event) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	dst = append(dst, q.events...)
	q.events = q.events[:0]
	return dst
}

// Len returns the number of queued events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Press is a key press event
func Press(k Key) Event { return Event{Kind: KindKeyPress, Key: k} }

// Release is a key release event
func Release(k Key) Event { return Event{Kind: KindKeyRelease, Key: k} }

// Motion is a pointer motion event
func Motion(dx, dy float32) Event { return Event{Kind: KindPointerMotion, DX: dx, DY: dy} }

// Close is a request to quit
func Close() Event { return Event{Kind: KindCloseRequest} }
