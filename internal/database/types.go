package database

import (
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
)

// DateLayout is the calendar-date format used for attendance keys.
const DateLayout = "2006-01-02"

// Role selects which people table a row lives in.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// StoredPerson represents an enrolled person stored in the database
type StoredPerson struct {
	ID        string
	Name      string
	Role      Role
	Class     string // empty for teachers
	Encoding  biometric.Vector
	CreatedAt time.Time
}

// StoredAttendance represents one attendance row, keyed by (PersonID, Date)
type StoredAttendance struct {
	PersonID  string
	Date      string // DateLayout
	Status    string // "present" or "absent"
	Distance  float64
	CheckedAt time.Time
}

// DailyRecord is an attendance row joined with the person it belongs to.
type DailyRecord struct {
	Class    string `json:"class"`
	PersonID string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Status   string `json:"status"`
}
