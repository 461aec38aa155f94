package domain

import "time"

// AttendanceStatus enumerates daily attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half_day"
)

// Attendance records one technician's day.
type Attendance struct {
	ID           string
	TechnicianID string
	Date         time.Time
	CheckIn      *time.Time
	CheckOut     *time.Time
	Status       AttendanceStatus
	Approved     bool
	ApprovedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
