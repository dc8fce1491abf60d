package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed storage for the attendance ledger.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// UpsertAttendance writes the row for (PersonID, Date); a later call replaces the earlier one.
func (r *AttendanceRepository) UpsertAttendance(ctx context.Context, a database.StoredAttendance) error {
	query := `
		INSERT INTO attendance (id, date, status, distance, checked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id, date) DO UPDATE SET
			status = EXCLUDED.status,
			distance = EXCLUDED.distance,
			checked_at = EXCLUDED.checked_at
	`
	_, err := r.pool.Exec(ctx, query, a.PersonID, a.Date, a.Status, a.Distance, a.CheckedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// GetAttendance returns the row for (personID, date), nil if absent.
func (r *AttendanceRepository) GetAttendance(ctx context.Context, personID, date string) (*database.StoredAttendance, error) {
	query := `
		SELECT id, to_char(date, 'YYYY-MM-DD'), status, distance, checked_at
		FROM attendance
		WHERE id = $1 AND date = $2
	`
	var a database.StoredAttendance
	err := r.pool.QueryRow(ctx, query, personID, date).Scan(&a.PersonID, &a.Date, &a.Status, &a.Distance, &a.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return &a, nil
}

// RecordsOn returns the attendance rows for date joined with students and teachers,
// ordered by class then name. Teachers carry an empty class and sort first.
func (r *AttendanceRepository) RecordsOn(ctx context.Context, date string) ([]database.DailyRecord, error) {
	// Byte order, as MariaDB's utf8mb4_bin columns sort, regardless of the database locale.
	query := `
		SELECT class, id, name, role, status FROM (
			SELECT s.class AS class, s.id AS id, s.name AS name, 'student' AS role, a.status AS status
			FROM attendance a JOIN students s ON s.id = a.id
			WHERE a.date = $1
			UNION ALL
			SELECT '', t.id, t.name, 'teacher', a.status
			FROM attendance a JOIN teachers t ON t.id = a.id
			WHERE a.date = $1
		) r
		ORDER BY class COLLATE "C", name COLLATE "C", id COLLATE "C"
	`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	records := []database.DailyRecord{}
	for rows.Next() {
		var rec database.DailyRecord
		var role string
		if err := rows.Scan(&rec.Class, &rec.PersonID, &rec.Name, &role, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.Role = database.Role(role)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return records, nil
}
