package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// AttendanceService records technician check-ins and admin approvals.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	now        func() time.Time
}

// NewAttendanceService builds the service.
func NewAttendanceService(attendance repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{attendance: attendance, now: time.Now}
}

// CheckIn opens the technician's attendance record for today.
func (s *AttendanceService) CheckIn(ctx context.Context, technicianID string, status domain.AttendanceStatus) (*domain.Attendance, error) {
	switch status {
	case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceHalfDay:
	default:
		return nil, apperrors.NewValidationError("unknown attendance status", map[string]any{"status": status})
	}

	now := s.now()
	record := &domain.Attendance{
		TechnicianID: technicianID,
		Date:         dateOnly(now),
		Status:       status,
	}
	if status != domain.AttendanceAbsent {
		checkIn := now
		record.CheckIn = &checkIn
	}
	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// CheckOut closes today's record. Missing check-in comes back as not found.
func (s *AttendanceService) CheckOut(ctx context.Context, technicianID string) (*domain.Attendance, error) {
	now := s.now()
	record, err := s.attendance.GetForDate(ctx, technicianID, dateOnly(now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attendance", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if record.CheckIn == nil {
		return nil, apperrors.NewValidationError("cannot check out without checking in", nil)
	}
	if err := s.attendance.SetCheckOut(ctx, record.ID, now); err != nil {
		return nil, apperrors.MapError(err)
	}
	checkOut := now
	record.CheckOut = &checkOut
	return record, nil
}

// Approve marks a record as reviewed by an admin.
func (s *AttendanceService) Approve(ctx context.Context, id, adminID string) error {
	if err := s.attendance.Approve(ctx, id, adminID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attendance", map[string]any{"attendance_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListForDate returns all records on a given day.
func (s *AttendanceService) ListForDate(ctx context.Context, date time.Time) ([]domain.Attendance, error) {
	return s.attendance.ListByDate(ctx, dateOnly(date))
}

// History returns one technician's records over a date range.
func (s *AttendanceService) History(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Attendance, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("range end precedes start", nil)
	}
	return s.attendance.ListRange(ctx, technicianID, dateOnly(from), dateOnly(to))
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
