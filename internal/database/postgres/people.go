package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/pgvector/pgvector-go"
)

// PersonRepository provides PostgreSQL-backed storage for enrolled people.
// Encodings live in pgvector columns.
type PersonRepository struct {
	pool *Pool
}

// NewPersonRepository creates a new PostgreSQL person repository.
func NewPersonRepository(pool *Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

func tableFor(role database.Role) (string, error) {
	switch role {
	case database.RoleStudent:
		return "students", nil
	case database.RoleTeacher:
		return "teachers", nil
	default:
		return "", fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}
}

// GetPerson retrieves a person with their reference encoding, nil if not found.
func (r *PersonRepository) GetPerson(ctx context.Context, role database.Role, id string) (*database.StoredPerson, error) {
	var query string
	switch role {
	case database.RoleStudent:
		query = `SELECT id, name, class, encoding, created_at FROM students WHERE id = $1`
	case database.RoleTeacher:
		query = `SELECT id, name, '', encoding, created_at FROM teachers WHERE id = $1`
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}

	var p database.StoredPerson
	var enc pgvector.Vector
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Class, &enc, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", role, err)
	}
	p.Role = role
	p.Encoding = biometric.Vector(enc.Slice())
	return &p, nil
}

// FindRole reports which people table holds id.
func (r *PersonRepository) FindRole(ctx context.Context, id string) (database.Role, bool, error) {
	query := `
		SELECT 'student' FROM students WHERE id = $1
		UNION ALL
		SELECT 'teacher' FROM teachers WHERE id = $1
		LIMIT 1
	`
	var role string
	err := r.pool.QueryRow(ctx, query, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find role: %w", err)
	}
	return database.Role(role), true, nil
}

// ListPeople returns everyone in a role table ordered by class, name, without encodings.
func (r *PersonRepository) ListPeople(ctx context.Context, role database.Role) ([]database.StoredPerson, error) {
	var query string
	switch role {
	case database.RoleStudent:
		query = `SELECT id, name, class, created_at FROM students ORDER BY class COLLATE "C", name COLLATE "C", id COLLATE "C"`
	case database.RoleTeacher:
		query = `SELECT id, name, '', created_at FROM teachers ORDER BY name COLLATE "C", id COLLATE "C"`
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", role, err)
	}
	defer rows.Close()

	people := []database.StoredPerson{}
	for rows.Next() {
		p := database.StoredPerson{Role: role}
		if err := rows.Scan(&p.ID, &p.Name, &p.Class, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", role, err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", role, err)
	}
	return people, nil
}

// InsertPerson stores a new person. An existing id in the same table yields database.ErrDuplicate.
func (r *PersonRepository) InsertPerson(ctx context.Context, p database.StoredPerson) error {
	table, err := tableFor(p.Role)
	if err != nil {
		return err
	}
	enc := pgvector.NewVector(p.Encoding)

	if p.Role == database.RoleStudent {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO students (id, name, class, encoding) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Name, p.Class, enc)
	} else {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO teachers (id, name, encoding) VALUES ($1, $2, $3)`,
			p.ID, p.Name, enc)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("insert into %s: %w", table, database.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
