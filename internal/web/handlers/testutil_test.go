package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func encoding() biometric.Vector {
	v := make(biometric.Vector, biometric.DefaultDim)
	for i := range v {
		v[i] = 0.25
	}
	return v
}

// seededServices returns a registry and ledger over a mock store holding two
// students, a teacher and two check-ins on testNow's date.
func seededServices(t *testing.T) (*registry.Registry, *ledger.Ledger, *mock.MockStore) {
	t.Helper()
	store := mock.NewMockStore()
	for _, p := range []database.StoredPerson{
		{ID: "S1", Name: "Alice", Role: database.RoleStudent, Class: "Form One", Encoding: encoding()},
		{ID: "S2", Name: "Bruno", Role: database.RoleStudent, Class: "Form Two", Encoding: encoding()},
		{ID: "T1", Name: "Mr Ndi", Role: database.RoleTeacher, Encoding: encoding()},
	} {
		store.AddPerson(p)
	}
	ctx := context.Background()
	for _, a := range []database.StoredAttendance{
		{PersonID: "S1", Date: "2026-03-09", Status: "present", Distance: 0.2},
		{PersonID: "T1", Date: "2026-03-09", Status: "absent", Distance: 0.7},
	} {
		if err := store.UpsertAttendance(ctx, a); err != nil {
			t.Fatalf("seed attendance: %v", err)
		}
	}

	reg := registry.New(store, config.ClassesConfig{Names: []string{"Form One", "Form Two"}})
	l := ledger.New(reg, nil, biometric.NewMatcher(0, biometric.DefaultDim), store,
		ledger.WithClock(func() time.Time { return testNow }))
	return reg, l, store
}
