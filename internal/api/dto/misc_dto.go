package dto

import (
	"time"

	"github.com/mp2tech/service-center/internal/domain"
)

// NotificationResponse is one in-app feed entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TicketID  *string   `json:"ticket_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		TicketID:  n.TicketID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// TemplateRequest payload for template create/update.
type TemplateRequest struct {
	Title     string                `json:"title"`
	Subject   string                `json:"subject"`
	Message   string                `json:"message"`
	Recipient domain.RecipientClass `json:"recipient"`
	Status    domain.TicketStatus   `json:"status"`
	Active    bool                  `json:"active"`
	Variables []string              `json:"variables"`
}

// TemplateResponse is the public view of a WhatsApp template.
type TemplateResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Subject   string                `json:"subject"`
	Message   string                `json:"message"`
	Recipient domain.RecipientClass `json:"recipient"`
	Status    domain.TicketStatus   `json:"status"`
	Active    bool                  `json:"active"`
	Variables []string              `json:"variables"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewTemplateResponse maps a domain template.
func NewTemplateResponse(t *domain.WhatsAppTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID,
		Title:     t.Title,
		Subject:   t.Subject,
		Message:   t.Message,
		Recipient: t.Recipient,
		Status:    t.Status,
		Active:    t.Active,
		Variables: t.Variables,
		UpdatedAt: t.UpdatedAt,
	}
}

// LicenseRequest payload for license create/update.
type LicenseRequest struct {
	CustomerID string    `json:"customer_id"`
	Product    string    `json:"product"`
	LicenseKey string    `json:"license_key"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// LicenseResponse is the public view of an antivirus license.
type LicenseResponse struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customer_id"`
	Product         string    `json:"product"`
	LicenseKey      string    `json:"license_key"`
	ExpiryDate      time.Time `json:"expiry_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// NewLicenseResponse maps a domain license.
func NewLicenseResponse(l *domain.AntivirusLicense, now time.Time) LicenseResponse {
	return LicenseResponse{
		ID:              l.ID,
		CustomerID:      l.CustomerID,
		Product:         l.Product,
		LicenseKey:      l.LicenseKey,
		ExpiryDate:      l.ExpiryDate,
		DaysUntilExpiry: l.DaysUntilExpiry(now),
	}
}

// CheckInRequest payload.
type CheckInRequest struct {
	Status domain.AttendanceStatus `json:"status"`
}

// AttendanceResponse is one attendance record.
type AttendanceResponse struct {
	ID           string                  `json:"id"`
	TechnicianID string                  `json:"technician_id"`
	Date         time.Time               `json:"date"`
	CheckIn      *time.Time              `json:"check_in"`
	CheckOut     *time.Time              `json:"check_out"`
	Status       domain.AttendanceStatus `json:"status"`
	Approved     bool                    `json:"approved"`
}

// NewAttendanceResponse maps a domain record.
func NewAttendanceResponse(a *domain.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		TechnicianID: a.TechnicianID,
		Date:         a.Date,
		CheckIn:      a.CheckIn,
		CheckOut:     a.CheckOut,
		Status:       a.Status,
		Approved:     a.Approved,
	}
}

// ChatRequest payload.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}
