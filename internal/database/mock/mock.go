// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// MockStore is an in-memory implementation of database.Store
type MockStore struct {
	mu         sync.RWMutex
	people     map[database.Role]map[string]database.StoredPerson
	attendance map[string]database.StoredAttendance // key: personID + "|" + date

	// Error injection
	GetPersonError  error
	FindRoleError   error
	ListPeopleError error
	InsertError     error
	GetAttError     error
	RecordsError    error
	UpsertError     error
	PingError       error

	// Call counters for write paths
	Inserts int
	Upserts int
}

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		people: map[database.Role]map[string]database.StoredPerson{
			database.RoleStudent: {},
			database.RoleTeacher: {},
		},
		attendance: make(map[string]database.StoredAttendance),
	}
}

func attendanceKey(personID, date string) string {
	return personID + "|" + date
}

// AddPerson seeds a person without going through InsertPerson
func (m *MockStore) AddPerson(p database.StoredPerson) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.Role][p.ID] = p
}

// GetPerson retrieves a person by role and id
func (m *MockStore) GetPerson(ctx context.Context, role database.Role, id string) (*database.StoredPerson, error) {
	if m.GetPersonError != nil {
		return nil, m.GetPersonError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.people[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}
	p, ok := table[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindRole reports which table holds id
func (m *MockStore) FindRole(ctx context.Context, id string) (database.Role, bool, error) {
	if m.FindRoleError != nil {
		return "", false, m.FindRoleError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, role := range []database.Role{database.RoleStudent, database.RoleTeacher} {
		if _, ok := m.people[role][id]; ok {
			return role, true, nil
		}
	}
	return "", false, nil
}

// ListPeople returns people of a role ordered by class, name
func (m *MockStore) ListPeople(ctx context.Context, role database.Role) ([]database.StoredPerson, error) {
	if m.ListPeopleError != nil {
		return nil, m.ListPeopleError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.people[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}
	out := make([]database.StoredPerson, 0, len(table))
	for _, p := range table {
		p.Encoding = nil
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b database.StoredPerson) int {
		return cmp.Or(cmp.Compare(a.Class, b.Class), cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// InsertPerson stores a person, rejecting an existing id in the same table
func (m *MockStore) InsertPerson(ctx context.Context, p database.StoredPerson) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.people[p.Role]
	if !ok {
		return fmt.Errorf("%w: %q", database.ErrUnknownRole, p.Role)
	}
	if _, exists := table[p.ID]; exists {
		return fmt.Errorf("insert %s %s: %w", p.Role, p.ID, database.ErrDuplicate)
	}
	table[p.ID] = p
	m.Inserts++
	return nil
}

// GetAttendance returns the row for (personID, date)
func (m *MockStore) GetAttendance(ctx context.Context, personID, date string) (*database.StoredAttendance, error) {
	if m.GetAttError != nil {
		return nil, m.GetAttError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attendance[attendanceKey(personID, date)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// AttendanceCount returns the number of stored attendance rows
func (m *MockStore) AttendanceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attendance)
}

// RecordsOn joins attendance rows for date with people
func (m *MockStore) RecordsOn(ctx context.Context, date string) ([]database.DailyRecord, error) {
	if m.RecordsError != nil {
		return nil, m.RecordsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []database.DailyRecord{}
	for _, a := range m.attendance {
		if a.Date != date {
			continue
		}
		for _, role := range []database.Role{database.RoleStudent, database.RoleTeacher} {
			p, ok := m.people[role][a.PersonID]
			if !ok {
				continue
			}
			out = append(out, database.DailyRecord{
				Class:    p.Class,
				PersonID: p.ID,
				Name:     p.Name,
				Role:     role,
				Status:   a.Status,
			})
		}
	}
	slices.SortFunc(out, func(a, b database.DailyRecord) int {
		return cmp.Or(cmp.Compare(a.Class, b.Class), cmp.Compare(a.Name, b.Name), cmp.Compare(a.PersonID, b.PersonID))
	})
	return out, nil
}

// UpsertAttendance writes or replaces the row for (PersonID, Date)
func (m *MockStore) UpsertAttendance(ctx context.Context, a database.StoredAttendance) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[attendanceKey(a.PersonID, a.Date)] = a
	m.Upserts++
	return nil
}

// Ping returns PingError
func (m *MockStore) Ping(ctx context.Context) error {
	return m.PingError
}

// Migrations reports an in-memory store as fully migrated
func (m *MockStore) Migrations(ctx context.Context) (database.MigrationStatus, error) {
	return database.MigrationStatus{Applied: []string{"001_initial.sql"}}, nil
}

// Close is a no-op
func (m *MockStore) Close() error {
	return nil
}

var _ database.Store = (*MockStore)(nil)
