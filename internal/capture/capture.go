// Package capture drives a camera until the operator accepts a frame that shows exactly
// one face, and hands back that face's encoding.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
)

var (
	// ErrDeviceUnavailable is returned by Begin when the camera cannot be opened.
	ErrDeviceUnavailable = errors.New("camera unavailable")
	// ErrCaptureFailed is returned when a session ends without an accepted encoding.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrAborted marks a session the operator cancelled.
	ErrAborted = errors.New("aborted by operator")
	// ErrEndOfStream is returned by FrameSource.Read when no frames remain.
	ErrEndOfStream = errors.New("end of frame stream")
)

// Frame is one encoded image read from a camera.
type Frame struct {
	Seq        int
	Data       []byte
	CapturedAt time.Time
}

// Camera opens a stream of frames.
type Camera interface {
	Open(ctx context.Context) (FrameSource, error)
}

// FrameSource yields frames until it is closed or runs out.
type FrameSource interface {
	Read(ctx context.Context) (Frame, error)
	Close() error
}

// FaceEncoder finds faces in a frame and returns one encoding per face.
type FaceEncoder interface {
	DetectAndEncode(ctx context.Context, frame Frame) ([]biometric.Vector, error)
}
