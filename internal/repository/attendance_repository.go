package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

const attendanceColumns = `attendance_id, technician_id, date, check_in, check_out, status, approved, approved_by, created_at, updated_at`

// AttendanceRepository encapsulates attendance persistence.
type AttendanceRepository interface {
	Upsert(ctx context.Context, record *domain.Attendance) error
	GetForDate(ctx context.Context, technicianID string, date time.Time) (*domain.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.Attendance, error)
	ListRange(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Attendance, error)
	SetCheckOut(ctx context.Context, id string, checkOut time.Time) error
	Approve(ctx context.Context, id, adminID string) error
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository instantiates repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

// Upsert records the day's entry; a second check-in for the same day updates
// the existing row rather than duplicating it.
func (r *attendanceRepository) Upsert(ctx context.Context, record *domain.Attendance) error {
	const query = `
        INSERT INTO attendance (technician_id, date, check_in, check_out, status)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (technician_id, date)
        DO UPDATE SET check_in=EXCLUDED.check_in, status=EXCLUDED.status, updated_at=NOW()
        RETURNING attendance_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		record.TechnicianID,
		record.Date,
		record.CheckIn,
		record.CheckOut,
		record.Status,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
}

func (r *attendanceRepository) GetForDate(ctx context.Context, technicianID string, date time.Time) (*domain.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE technician_id=$1 AND date=$2`, attendanceColumns)
	var record domain.Attendance
	if err := r.pool.QueryRow(ctx, query, technicianID, date).Scan(attendanceFields(&record)...); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE date=$1 ORDER BY created_at`, attendanceColumns)
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendance(rows)
}

func (r *attendanceRepository) ListRange(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance
        WHERE technician_id=$1 AND date >= $2 AND date <= $3 ORDER BY date`, attendanceColumns)
	rows, err := r.pool.Query(ctx, query, technicianID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendance(rows)
}

func (r *attendanceRepository) SetCheckOut(ctx context.Context, id string, checkOut time.Time) error {
	const query = `UPDATE attendance SET check_out=$1, updated_at=NOW() WHERE attendance_id=$2`
	cmd, err := r.pool.Exec(ctx, query, checkOut, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *attendanceRepository) Approve(ctx context.Context, id, adminID string) error {
	const query = `UPDATE attendance SET approved=TRUE, approved_by=$1, updated_at=NOW() WHERE attendance_id=$2`
	cmd, err := r.pool.Exec(ctx, query, adminID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAttendance(rows pgx.Rows) ([]domain.Attendance, error) {
	var result []domain.Attendance
	for rows.Next() {
		var record domain.Attendance
		if err := rows.Scan(attendanceFields(&record)...); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func attendanceFields(a *domain.Attendance) []any {
	return []any{
		&a.ID,
		&a.TechnicianID,
		&a.Date,
		&a.CheckIn,
		&a.CheckOut,
		&a.Status,
		&a.Approved,
		&a.ApprovedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}
