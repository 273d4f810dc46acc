package run

import (
	"sync"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// Event is either a Frame or a Result.
type Event interface {
	event()
}

// Frame is pushed after every committed tick, including the teleport
// entry and exit, and after Reset and Advance.
type Frame struct {
	Collector puzzle.Collector     `json:"collector"`
	State     puzzle.StateSnapshot `json:"state"`
	Status    Status               `json:"status"`
}

// Result is pushed once per terminal transition.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Coins  int    `json:"coins"`
	Ticks  int    `json:"ticks"`
	Level  string `json:"level"` // level ID
}

func (Frame) event()  {}
func (Result) event() {}

// Sink receives fire-and-forget notifications from a Controller.
// Methods are called with the controller lock held and must not call
// back into the controller.
type Sink interface {
	Snapshot(f Frame)
	Outcome(r Result)
}

// SinkFunc adapts a pair of functions to a Sink. Either may be nil.
type SinkFunc struct {
	OnSnapshot func(Frame)
	OnOutcome  func(Result)
}

// Snapshot calls OnSnapshot.
func (s SinkFunc) Snapshot(f Frame) {
	if s.OnSnapshot != nil {
		s.OnSnapshot(f)
	}
}

// Outcome calls OnOutcome.
func (s SinkFunc) Outcome(r Result) {
	if s.OnOutcome != nil {
		s.OnOutcome(r)
	}
}

// MultiSink fans notifications out to every non-nil sink in order.
type MultiSink []Sink

// Snapshot forwards f to every sink.
func (m MultiSink) Snapshot(f Frame) {
	for _, s := range m {
		if s != nil {
			s.Snapshot(f)
		}
	}
}

// Outcome forwards r to every sink.
func (m MultiSink) Outcome(r Result) {
	for _, s := range m {
		if s != nil {
			s.Outcome(r)
		}
	}
}

type nopSink struct{}

func (nopSink) Snapshot(Frame) {}
func (nopSink) Outcome(Result) {}

// ChanSink buffers events on a channel for a consumer such as a Bubble
// Tea command. It never blocks: when the buffer is full the oldest event
// is dropped.
type ChanSink struct {
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChanSink creates a sink with the given buffer size.
func NewChanSink(size int) *ChanSink {
	if size < 1 {
		size = 64
	}
	return &ChanSink{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Snapshot queues f.
func (s *ChanSink) Snapshot(f Frame) { s.send(f) }

// Outcome queues r.
func (s *ChanSink) Outcome(r Result) { s.send(r) }

func (s *ChanSink) send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		// Buffer full, drop oldest and retry once
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the receive side of the buffer.
func (s *ChanSink) Events() <-chan Event {
	return s.events
}

// Done is closed by Close.
func (s *ChanSink) Done() <-chan struct{} {
	return s.done
}

// Close stops accepting events. Safe to call multiple times.
func (s *ChanSink) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}
