package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// PersonRepository stores enrolled people; encodings are BLOBs in biometric's binary layout.
type PersonRepository struct {
	pool *Pool
}

// GetPerson retrieves a person with their reference encoding, nil if not found.
func (r *PersonRepository) GetPerson(ctx context.Context, role database.Role, id string) (*database.StoredPerson, error) {
	var query string
	switch role {
	case database.RoleStudent:
		query = `SELECT id, name, class, encoding, created_at FROM students WHERE id = ?`
	case database.RoleTeacher:
		query = `SELECT id, name, '', encoding, created_at FROM teachers WHERE id = ?`
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}

	var p database.StoredPerson
	var blob []byte
	err := r.pool.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Class, &blob, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", role, err)
	}
	var enc biometric.Vector
	if err := enc.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("decode encoding of %s %s: %w", role, id, err)
	}
	p.Role = role
	p.Encoding = enc
	return &p, nil
}

// FindRole reports which people table holds id.
func (r *PersonRepository) FindRole(ctx context.Context, id string) (database.Role, bool, error) {
	query := `
		SELECT 'student' FROM students WHERE id = ?
		UNION ALL
		SELECT 'teacher' FROM teachers WHERE id = ?
		LIMIT 1
	`
	var role string
	err := r.pool.db.QueryRowContext(ctx, query, id, id).Scan(&role)
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
		query = `SELECT id, name, class, created_at FROM students ORDER BY class, name, id`
	case database.RoleTeacher:
		query = `SELECT id, name, '', created_at FROM teachers ORDER BY name, id`
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownRole, role)
	}

	rows, err := r.pool.db.QueryContext(ctx, query)
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
	blob, err := p.Encoding.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode encoding: %w", err)
	}

	switch p.Role {
	case database.RoleStudent:
		_, err = r.pool.db.ExecContext(ctx,
			`INSERT INTO students (id, name, class, encoding) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Class, blob)
	case database.RoleTeacher:
		_, err = r.pool.db.ExecContext(ctx,
			`INSERT INTO teachers (id, name, encoding) VALUES (?, ?, ?)`,
			p.ID, p.Name, blob)
	default:
		return fmt.Errorf("%w: %q", database.ErrUnknownRole, p.Role)
	}
	if isDuplicateEntry(err) {
		return fmt.Errorf("insert %s %s: %w", p.Role, p.ID, database.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", p.Role, err)
	}
	return nil
}
