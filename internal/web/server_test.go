package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/metrics"
	"github.com/kozaktomas/face-attendance/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
)

func testServer(t *testing.T, token string) *Server {
	t.Helper()
	cfg := &config.Config{Web: config.WebConfig{Host: "127.0.0.1", Port: 0, Token: token}}

	store := mock.NewMockStore()
	store.AddPerson(database.StoredPerson{ID: "S1", Name: "Alice", Role: database.RoleStudent, Class: "Form One", Encoding: make(biometric.Vector, 128)})

	classes := config.ClassesConfig{Names: []string{"Form One"}}
	reg := registry.New(store, classes)
	l := ledger.New(reg, nil, biometric.NewMatcher(0, 128), store,
		ledger.WithClock(func() time.Time { return time.Date(2026, 3, 9, 9, 0, 0, 0, time.Local) }))

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	m.IncCheckIn("present")

	return NewServer(cfg, Deps{
		Reports:   l,
		Directory: reg,
		Classes:   classes.Names,
		Health:    func(ctx context.Context) error { return nil },
		Gatherer:  promReg,
	})
}

func TestRoutes(t *testing.T) {
	s := testServer(t, "")

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/api/v1/health", http.StatusOK, `"ok"`},
		{"/api/v1/attendance/today", http.StatusOK, `"date":"2026-03-09"`},
		{"/api/v1/attendance/2026-03-01", http.StatusOK, `"count":0`},
		{"/api/v1/attendance/2026-03-09/summary", http.StatusOK, `"total":0`},
		{"/api/v1/attendance/not-a-date", http.StatusBadRequest, `"invalid_input"`},
		{"/api/v1/people?role=student", http.StatusOK, `"Alice"`},
		{"/api/v1/people/student/S1", http.StatusOK, `"Form One"`},
		{"/api/v1/people/student/S404", http.StatusNotFound, `"not_found"`},
		{"/api/v1/classes", http.StatusOK, `"Form One"`},
		{"/metrics", http.StatusOK, "attendance_checkins_total"},
		{"/", http.StatusOK, "<title>Attendance</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRoutesRequireToken(t *testing.T) {
	s := testServer(t, "s3cret")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	// Health stays open for probes.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open health check, got %d", rec.Code)
	}
}
