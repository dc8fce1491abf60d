// Package ledger verifies a person against their enrolled face and records the day's
// attendance decision.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/metrics"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// Status of a person on a given day.
type Status string

const (
	Present Status = "present"
	Absent  Status = "absent"
)

// Record is one row of a day's attendance report.
type Record = database.DailyRecord

// Resolver finds the enrolled person behind an id.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*registry.Person, error)
}

// Result is the outcome of a check-in.
type Result struct {
	Person   registry.Person
	Date     string
	Status   Status
	Distance float64
}

// Summary counts a day's decisions.
type Summary struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

// Ledger runs check-ins and answers attendance queries.
type Ledger struct {
	people   Resolver
	capturer registry.Capturer
	matcher  biometric.Matcher
	store    database.AttendanceWriter
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(l *Ledger)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// New creates a Ledger. capturer may be nil for a read-only ledger.
func New(people Resolver, capturer registry.Capturer, matcher biometric.Matcher, store database.AttendanceWriter, opts ...Option) *Ledger {
	l := &Ledger{
		people:   people,
		capturer: capturer,
		matcher:  matcher,
		store:    store,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the local calendar date in DateLayout.
func (l *Ledger) Today() string {
	return l.now().Format(database.DateLayout)
}

// CheckIn verifies the person enrolled as id and records today's status.
func (l *Ledger) CheckIn(ctx context.Context, id string) (Status, error) {
	res, err := l.Record(ctx, id)
	if err != nil {
		return "", err
	}
	return res.Status, nil
}

// Record is CheckIn returning the full outcome. Any failure before the decision is
// returned as is and leaves the ledger untouched.
func (l *Ledger) Record(ctx context.Context, id string) (*Result, error) {
	if l.capturer == nil {
		return nil, errors.New("check in: no camera configured")
	}
	person, err := l.people.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}

	candidate, err := l.capturer.Acquire(ctx, fmt.Sprintf("Checking in %s (%s): look at the camera", person.Name, person.ID))
	if err != nil {
		return nil, fmt.Errorf("check in %s: %w", person.ID, err)
	}

	verdict, err := l.matcher.Verify(person.Encoding, candidate)
	if err != nil {
		return nil, fmt.Errorf("check in %s: %w", person.ID, err)
	}
	status := Absent
	if verdict.Match {
		status = Present
	}

	now := l.now()
	date := now.Format(database.DateLayout)
	err = l.store.UpsertAttendance(ctx, database.StoredAttendance{
		PersonID:  person.ID,
		Date:      date,
		Status:    string(status),
		Distance:  verdict.Distance,
		CheckedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("record attendance for %s: %w", person.ID, err)
	}

	l.logger.Info("check-in recorded",
		"id", person.ID,
		"role", person.Role,
		"status", status,
		"distance", verdict.Distance,
		"date", date,
	)
	l.metrics.ObserveDistance(verdict.Distance)
	l.metrics.IncCheckIn(string(status))

	return &Result{Person: *person, Date: date, Status: status, Distance: verdict.Distance}, nil
}

// ParseDate validates a YYYY-MM-DD date and returns it in canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(database.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(database.DateLayout), nil
}

// TodayRecords returns today's report.
func (l *Ledger) TodayRecords(ctx context.Context) ([]Record, error) {
	return l.RecordsOn(ctx, l.Today())
}

// RecordsOn returns the report for date ordered by class then name, teachers first.
// A day without check-ins yields an empty slice.
func (l *Ledger) RecordsOn(ctx context.Context, date string) ([]Record, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	records, err := l.store.RecordsOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("records on %s: %w", date, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Summary counts present and absent decisions for date.
func (l *Ledger) Summary(ctx context.Context, date string) (Summary, error) {
	records, err := l.RecordsOn(ctx, date)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Date: date, Total: len(records)}
	for _, r := range records {
		switch Status(r.Status) {
		case Present:
			s.Present++
		case Absent:
			s.Absent++
		}
	}
	return s, nil
}
