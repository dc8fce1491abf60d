package capture

import (
	"sync/atomic"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
)

// State of a capture session.
type State int32

const (
	Idle State = iota
	Capturing
	Accepted
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Accepted:
		return "accepted"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session can no longer change state.
func (s State) Terminal() bool {
	return s == Accepted || s == Cancelled || s == Failed
}

type EventType int

const (
	EventFrame    EventType = iota // a frame was read
	EventRetry                     // capture requested but the frame did not show exactly one face
	EventWarning                   // the encoder failed on this frame; still capturing
	EventAccepted                  // a single face was encoded
	EventCancelled
	EventFailed
)

// Event is published on the session's event channel.
type Event struct {
	Type  EventType
	Seq   int   // frame sequence number
	Faces int   // faces found, for EventRetry
	Err   error // for EventWarning and EventFailed
}

// Signal is an operator decision relayed into a running session.
type Signal int

const (
	SignalCapture Signal = iota + 1
	SignalCancel
)

const eventBuffer = 32

// Session is one run of the capture loop.
//
// Events are delivered best effort: a consumer that falls behind misses frame
// notifications. Wait is the authoritative result.
type Session struct {
	ID      string
	Prompt  string
	Started time.Time

	state   atomic.Int32
	events  chan Event
	signals chan Signal
	done    chan struct{}

	encoding biometric.Vector
	err      error
}

func newSession(id, prompt string) *Session {
	return &Session{
		ID:      id,
		Prompt:  prompt,
		Started: time.Now(),
		events:  make(chan Event, eventBuffer),
		signals: make(chan Signal, 1),
		done:    make(chan struct{}),
	}
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Events returns the event channel. It is closed after the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed once the session reached a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Capture asks the loop to encode the next frame. It is a no-op after the session ended.
func (s *Session) Capture() {
	s.signal(SignalCapture)
}

// Cancel ends the session without an encoding. It is a no-op after the session ended.
func (s *Session) Cancel() {
	s.signal(SignalCancel)
}

func (s *Session) signal(sig Signal) {
	select {
	case s.signals <- sig:
	case <-s.done:
	}
}

// Wait blocks until the session ends and returns the accepted encoding or the reason
// there is none.
func (s *Session) Wait() (biometric.Vector, error) {
	<-s.done
	return s.encoding, s.err
}

func (s *Session) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
