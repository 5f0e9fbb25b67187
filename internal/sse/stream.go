package sse

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrStreamClosed is returned by Send after the stream reached a terminal
	// state. A failed push is an expected outcome (client went away), not a
	// fault to panic over; callers react by pruning the connection.
	ErrStreamClosed = errors.New("stream closed")
	// ErrStreamFull means the client is not draining its buffer; the stream
	// is treated as broken.
	ErrStreamFull = errors.New("stream send buffer full")
)

// Stream is one live push connection. Events sent here are consumed by the
// HTTP layer's write loop via Events. The registry entry owning this stream
// is removed through the close hook, so a stream is reachable from the
// registry only while it is still writable.
type Stream struct {
	id      string
	idle    time.Duration
	events  chan Event
	mu      sync.Mutex
	closed  bool
	onClose func()
}

func NewStream(id string, idle time.Duration, buffer int) *Stream {
	return &Stream{
		id:     id,
		idle:   idle,
		events: make(chan Event, buffer),
	}
}

func (s *Stream) ID() string { return s.id }

// IdleTimeout is how long the write loop waits without traffic before
// treating the connection as dead.
func (s *Stream) IdleTimeout() time.Duration { return s.idle }

// Events is consumed by exactly one write loop. The channel is closed when
// the stream closes; buffered events drain first.
func (s *Stream) Events() <-chan Event { return s.events }

// OnClose registers the cleanup hook (registry unregistration). It runs at
// most once, on whichever terminal transition happens first.
func (s *Stream) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = fn
}

// Send queues an event for the write loop. It never blocks: a full buffer
// means the client stopped reading and is reported as a delivery failure.
func (s *Stream) Send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrStreamFull
	}
}

// Close is idempotent and safe from any goroutine. Completion, idle timeout
// and broken-pipe all funnel through here.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	fn := s.onClose
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
