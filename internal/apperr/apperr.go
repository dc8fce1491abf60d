// Package apperr classifies errors from the attendance services so the CLI and the
// HTTP API can react to them without matching on strings.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// Kind is a caller-facing error category.
type Kind string

const (
	KindNone              Kind = ""
	KindNotFound          Kind = "not_found"
	KindDuplicateIdentity Kind = "duplicate_identity"
	KindInvalidClass      Kind = "invalid_class"
	KindInvalidInput      Kind = "invalid_input"
	KindDeviceUnavailable Kind = "device_unavailable"
	KindCaptureFailed     Kind = "capture_failed"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindInternal          Kind = "internal"
)

// order matters: a capture error wrapping a dimension mismatch reports the mismatch.
var kinds = []struct {
	target error
	kind   Kind
}{
	{registry.ErrNotFound, KindNotFound},
	{registry.ErrDuplicateIdentity, KindDuplicateIdentity},
	{registry.ErrInvalidClass, KindInvalidClass},
	{registry.ErrInvalidEnrollment, KindInvalidInput},
	{ledger.ErrInvalidDate, KindInvalidInput},
	{biometric.ErrDimensionMismatch, KindDimensionMismatch},
	{capture.ErrDeviceUnavailable, KindDeviceUnavailable},
	{capture.ErrCaptureFailed, KindCaptureFailed},
	{context.DeadlineExceeded, KindCaptureFailed},
	{context.Canceled, KindCaptureFailed},
}

// KindOf returns the Kind of err, KindNone for nil and KindInternal for anything
// unrecognised.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus maps a Kind to a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateIdentity:
		return http.StatusConflict
	case KindInvalidClass, KindInvalidInput:
		return http.StatusBadRequest
	case KindDimensionMismatch:
		return http.StatusUnprocessableEntity
	case KindDeviceUnavailable:
		return http.StatusServiceUnavailable
	case KindCaptureFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	if k == KindNone {
		return "ok"
	}
	return string(k)
}
