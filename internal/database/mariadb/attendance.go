package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository stores the attendance ledger in MariaDB.
type AttendanceRepository struct {
	pool *Pool
}

// UpsertAttendance writes the row for (PersonID, Date), replacing any earlier one.
func (r *AttendanceRepository) UpsertAttendance(ctx context.Context, a database.StoredAttendance) error {
	query := `REPLACE INTO attendance (id, date, status, distance, checked_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.pool.db.ExecContext(ctx, query, a.PersonID, a.Date, a.Status, a.Distance, a.CheckedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// GetAttendance returns the row for (personID, date), nil if absent.
func (r *AttendanceRepository) GetAttendance(ctx context.Context, personID, date string) (*database.StoredAttendance, error) {
	query := `
		SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), status, distance, checked_at
		FROM attendance
		WHERE id = ? AND date = ?
	`
	var a database.StoredAttendance
	err := r.pool.db.QueryRowContext(ctx, query, personID, date).Scan(&a.PersonID, &a.Date, &a.Status, &a.Distance, &a.CheckedAt)
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
	query := `
		SELECT s.class, s.id, s.name, 'student', a.status
		FROM attendance a JOIN students s ON s.id = a.id
		WHERE a.date = ?
		UNION ALL
		SELECT '', t.id, t.name, 'teacher', a.status
		FROM attendance a JOIN teachers t ON t.id = a.id
		WHERE a.date = ?
		ORDER BY 1, 3, 2
	`
	rows, err := r.pool.db.QueryContext(ctx, query, date, date)
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
