package database

import (
	"context"
	"errors"
)

var (
	// ErrDuplicate is returned when an insert hits an existing primary key.
	ErrDuplicate = errors.New("duplicate key")
	// ErrUnknownRole is returned for a role outside RoleStudent/RoleTeacher.
	ErrUnknownRole = errors.New("unknown role")
)

// PersonReader provides read-only access to enrolled people
type PersonReader interface {
	// GetPerson retrieves a person with their reference encoding, returns nil if not found
	GetPerson(ctx context.Context, role Role, id string) (*StoredPerson, error)
	// FindRole reports which role table holds id, if any
	FindRole(ctx context.Context, id string) (Role, bool, error)
	// ListPeople returns everyone in a role table ordered by class, name.
	// Encodings are not loaded.
	ListPeople(ctx context.Context, role Role) ([]StoredPerson, error)
}

// PersonWriter provides write access to enrolled people
type PersonWriter interface {
	PersonReader

	// InsertPerson stores a new person; an existing id yields ErrDuplicate
	InsertPerson(ctx context.Context, p StoredPerson) error
}

// AttendanceReader provides read-only access to the attendance ledger
type AttendanceReader interface {
	// GetAttendance returns the row for (personID, date), nil if absent
	GetAttendance(ctx context.Context, personID, date string) (*StoredAttendance, error)
	// RecordsOn returns the rows for date joined with people, ordered by class, name
	RecordsOn(ctx context.Context, date string) ([]DailyRecord, error)
}

// AttendanceWriter provides write access to the attendance ledger
type AttendanceWriter interface {
	AttendanceReader

	// UpsertAttendance writes the row for (PersonID, Date), replacing any earlier one
	UpsertAttendance(ctx context.Context, a StoredAttendance) error
}

// Store is a complete storage backend.
type Store interface {
	PersonWriter
	AttendanceWriter
	Ping(ctx context.Context) error
	Migrations(ctx context.Context) (MigrationStatus, error)
	Close() error
}
