// Package registry owns enrolled people and their reference face encodings.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/metrics"
)

// Role of an enrolled person.
type Role = database.Role

const (
	Student = database.RoleStudent
	Teacher = database.RoleTeacher
)

var (
	ErrNotFound          = errors.New("person not found")
	ErrDuplicateIdentity = errors.New("id already enrolled")
	ErrInvalidClass      = errors.New("invalid class")
	ErrInvalidEnrollment = errors.New("invalid enrollment")
)

// Person is an enrolled student or teacher.
type Person struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Role      Role             `json:"role"`
	Class     string           `json:"class,omitempty"`
	Encoding  biometric.Vector `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

// Enrollment is the identity part of an enroll request.
type Enrollment struct {
	ID    string
	Name  string
	Role  Role
	Class string
}

// ClassSet is the enumerated set of classes a student may belong to.
type ClassSet interface {
	Contains(name string) bool
}

// Capturer produces a fresh face encoding from the camera.
type Capturer interface {
	Acquire(ctx context.Context, prompt string) (biometric.Vector, error)
}

// Registry validates and stores enrollments.
type Registry struct {
	store   database.PersonWriter
	classes ClassSet
	dim     int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithDim sets the encoding dimension enforced at enrollment.
func WithDim(dim int) Option {
	return func(r *Registry) {
		r.dim = dim
	}
}

// New constructs a Registry.
func New(store database.PersonWriter, classes ClassSet, opts ...Option) *Registry {
	r := &Registry{store: store, classes: classes, dim: biometric.DefaultDim, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate normalises e and checks it against the enrollment rules.
func (r *Registry) Validate(e Enrollment) (Enrollment, error) {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = NormalizeName(e.Name)
	e.Class = strings.TrimSpace(e.Class)

	if e.ID == "" {
		return e, fmt.Errorf("%w: id is required", ErrInvalidEnrollment)
	}
	if e.Name == "" {
		return e, fmt.Errorf("%w: name is required", ErrInvalidEnrollment)
	}
	switch e.Role {
	case Student:
		if !r.classes.Contains(e.Class) {
			return e, fmt.Errorf("%w: %q", ErrInvalidClass, e.Class)
		}
	case Teacher:
		if e.Class != "" {
			return e, fmt.Errorf("%w: teachers have no class", ErrInvalidClass)
		}
	default:
		return e, fmt.Errorf("%w: unknown role %q", ErrInvalidEnrollment, e.Role)
	}
	return e, nil
}

// ensureUnused fails with ErrDuplicateIdentity if id is enrolled under any role.
// Attendance rows are keyed by id alone, so ids stay unique across roles.
func (r *Registry) ensureUnused(ctx context.Context, id string) error {
	role, found, err := r.store.FindRole(ctx, id)
	if err != nil {
		return fmt.Errorf("check existing id: %w", err)
	}
	if found {
		return fmt.Errorf("%w: %s is already a %s", ErrDuplicateIdentity, id, role)
	}
	return nil
}

// Enroll stores a person with an already captured reference encoding.
// Nothing is written unless every check passes.
func (r *Registry) Enroll(ctx context.Context, e Enrollment, encoding biometric.Vector) error {
	e, err := r.Validate(e)
	if err != nil {
		return err
	}
	if err := encoding.CheckDim(r.dim); err != nil {
		return fmt.Errorf("reference encoding: %w", err)
	}
	if err := r.ensureUnused(ctx, e.ID); err != nil {
		return err
	}

	err = r.store.InsertPerson(ctx, database.StoredPerson{
		ID:       e.ID,
		Name:     e.Name,
		Role:     e.Role,
		Class:    e.Class,
		Encoding: encoding,
	})
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, e.ID)
	}
	if err != nil {
		return fmt.Errorf("store enrollment: %w", err)
	}

	r.logger.Info("person enrolled", "id", e.ID, "role", e.Role, "class", e.Class)
	r.metrics.IncEnrollment(string(e.Role))
	return nil
}

// Register validates e, captures the reference encoding and enrolls it.
// Validation and the duplicate check run before the camera is opened.
func (r *Registry) Register(ctx context.Context, e Enrollment, capturer Capturer) error {
	e, err := r.Validate(e)
	if err != nil {
		return err
	}
	if err := r.ensureUnused(ctx, e.ID); err != nil {
		return err
	}

	encoding, err := capturer.Acquire(ctx, fmt.Sprintf("Enrolling %s %s: look at the camera", e.Role, e.Name))
	if err != nil {
		return fmt.Errorf("capture reference: %w", err)
	}
	return r.Enroll(ctx, e, encoding)
}

// Lookup returns the person enrolled under id in role's table.
func (r *Registry) Lookup(ctx context.Context, id string, role Role) (*Person, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidEnrollment, role)
	}
	stored, err := r.store.GetPerson(ctx, role, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("lookup %s %s: %w", role, id, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, role, id)
	}
	return fromStored(stored), nil
}

// Resolve finds id in whichever role table holds it.
func (r *Registry) Resolve(ctx context.Context, id string) (*Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidEnrollment)
	}
	role, found, err := r.store.FindRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Lookup(ctx, id, role)
}

// List returns everyone enrolled in role, without encodings.
func (r *Registry) List(ctx context.Context, role Role) ([]Person, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidEnrollment, role)
	}
	stored, err := r.store.ListPeople(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", role, err)
	}
	people := make([]Person, 0, len(stored))
	for i := range stored {
		people = append(people, *fromStored(&stored[i]))
	}
	return people, nil
}

// Search lists people in role whose name contains query, ignoring case and
// diacritics. An empty query lists everyone.
func (r *Registry) Search(ctx context.Context, role Role, query string) ([]Person, error) {
	people, err := r.List(ctx, role)
	if err != nil || strings.TrimSpace(query) == "" {
		return people, err
	}
	matched := people[:0]
	for _, p := range people {
		if NameMatches(p.Name, query) || strings.EqualFold(p.ID, strings.TrimSpace(query)) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func fromStored(s *database.StoredPerson) *Person {
	return &Person{
		ID:        s.ID,
		Name:      s.Name,
		Role:      s.Role,
		Class:     s.Class,
		Encoding:  s.Encoding,
		CreatedAt: s.CreatedAt,
	}
}
