package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       Kind
		wantStatus int
	}{
		{"nil", nil, KindNone, http.StatusOK},
		{"not found", fmt.Errorf("check in: %w", registry.ErrNotFound), KindNotFound, http.StatusNotFound},
		{"duplicate", registry.ErrDuplicateIdentity, KindDuplicateIdentity, http.StatusConflict},
		{"invalid class", registry.ErrInvalidClass, KindInvalidClass, http.StatusBadRequest},
		{"invalid enrollment", registry.ErrInvalidEnrollment, KindInvalidInput, http.StatusBadRequest},
		{"invalid date", ledger.ErrInvalidDate, KindInvalidInput, http.StatusBadRequest},
		{"device", fmt.Errorf("%w: /dev/video0", capture.ErrDeviceUnavailable), KindDeviceUnavailable, http.StatusServiceUnavailable},
		{"aborted", fmt.Errorf("%w: %w", capture.ErrCaptureFailed, capture.ErrAborted), KindCaptureFailed, http.StatusConflict},
		{"deadline", fmt.Errorf("%w: %w", capture.ErrCaptureFailed, context.DeadlineExceeded), KindCaptureFailed, http.StatusConflict},
		{"dimension", fmt.Errorf("captured encoding: %w", biometric.ErrDimensionMismatch), KindDimensionMismatch, http.StatusUnprocessableEntity},
		{"unknown", errors.New("connection refused"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KindOf(tt.err)
			if got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
			if s := got.HTTPStatus(); s != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", s, tt.wantStatus)
			}
		})
	}
}
