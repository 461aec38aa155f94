package dto

import (
	"time"

	"github.com/mp2tech/service-center/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  string                `json:"customer_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	IssueType   domain.IssueType      `json:"issue_type"`
	TicketType  domain.TicketType     `json:"ticket_type"`
	Priority    domain.TicketPriority `json:"priority"`
	Device      DeviceRequest         `json:"device"`
}

// DeviceRequest describes the device on a ticket.
type DeviceRequest struct {
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	SerialNumber string `json:"serial_number"`
	Working      bool   `json:"working"`
}

// EditTicketRequest updates ticket details; absent fields are untouched.
type EditTicketRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Priority       *domain.TicketPriority `json:"priority"`
	IssueType      *domain.IssueType      `json:"issue_type"`
	Device         *DeviceRequest         `json:"device"`
	EstimateAmount *float64               `json:"estimate_amount"`
	PickupDate     *string                `json:"pickup_date"`
	PickupTime     *string                `json:"pickup_time"`
	DeliveryDate   *string                `json:"delivery_date"`
	DeliveryTime   *string                `json:"delivery_time"`
}

// TransitionRequest moves a ticket to a new status.
type TransitionRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignRequest assigns a technician.
type AssignRequest struct {
	TechnicianID string `json:"technician_id"`
}

// ArchiveRequest toggles the archive flag.
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// CreateRemarkRequest appends a remark with optional inline attachments.
type CreateRemarkRequest struct {
	Text        string                    `json:"text"`
	Attachments []RemarkAttachmentRequest `json:"attachments"`
}

// RemarkAttachmentRequest carries base64-encoded file content.
type RemarkAttachmentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	CustomerID    string                `json:"customer_id"`
	TechnicianID  *string               `json:"technician_id"`
	Status        domain.TicketStatus   `json:"status"`
	StatusLabel   string                `json:"status_label"`
	Priority      domain.TicketPriority `json:"priority"`
	NeedsApproval bool                  `json:"needs_approval"`
	Archived      bool                  `json:"archived"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description    string           `json:"description"`
	CreatedBy      string           `json:"created_by"`
	IssueType      domain.IssueType `json:"issue_type"`
	TicketType     domain.TicketType `json:"ticket_type"`
	Device         DeviceRequest    `json:"device"`
	EstimateAmount *float64         `json:"estimate_amount"`
	PickupDate     *string          `json:"pickup_date"`
	PickupTime     *string          `json:"pickup_time"`
	DeliveryDate   *string          `json:"delivery_date"`
	DeliveryTime   *string          `json:"delivery_time"`
	Remarks        []RemarkResponse `json:"remarks"`
}

// RemarkResponse represents a remark trail entry.
type RemarkResponse struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"author_id"`
	Text        string               `json:"text"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusInfoResponse exposes the status registry for board rendering.
type StatusInfoResponse struct {
	Code      domain.TicketStatus `json:"code"`
	Label     string              `json:"label"`
	Color     string              `json:"color"`
	SortOrder int                 `json:"sort_order"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:            ticket.ID,
		Title:         ticket.Title,
		CustomerID:    ticket.CustomerID,
		TechnicianID:  ticket.TechnicianID,
		Status:        ticket.Status,
		StatusLabel:   domain.LabelOf(ticket.Status),
		Priority:      ticket.Priority,
		NeedsApproval: ticket.NeedsApproval,
		Archived:      ticket.Archived,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket with its remarks.
func NewTicketDetail(ticket *domain.Ticket, remarks []domain.TicketRemark) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		CreatedBy:     ticket.CreatedBy,
		IssueType:     ticket.IssueType,
		TicketType:    ticket.TicketType,
		Device: DeviceRequest{
			Type:         ticket.Device.Type,
			Brand:        ticket.Device.Brand,
			SerialNumber: ticket.Device.SerialNumber,
			Working:      ticket.Device.Working,
		},
		EstimateAmount: ticket.EstimateAmount,
		PickupDate:     ticket.PickupDate,
		PickupTime:     ticket.PickupTime,
		DeliveryDate:   ticket.DeliveryDate,
		DeliveryTime:   ticket.DeliveryTime,
		Remarks:        make([]RemarkResponse, 0, len(remarks)),
	}
	for _, remark := range remarks {
		detail.Remarks = append(detail.Remarks, NewRemarkResponse(&remark))
	}
	return detail
}

// NewRemarkResponse maps a remark and its attachments.
func NewRemarkResponse(remark *domain.TicketRemark) RemarkResponse {
	resp := RemarkResponse{
		ID:          remark.ID,
		AuthorID:    remark.AuthorID,
		Text:        remark.Text,
		Attachments: make([]AttachmentResponse, 0, len(remark.Attachments)),
		CreatedAt:   remark.CreatedAt,
	}
	for _, att := range remark.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:        att.ID,
			Name:      att.Name,
			Path:      att.Path,
			CreatedAt: att.CreatedAt,
		})
	}
	return resp
}
