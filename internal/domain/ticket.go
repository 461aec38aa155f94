package domain

import "time"

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// IssueType classifies the reported problem.
type IssueType string

const (
	IssueTypeHardware IssueType = "hardware"
	IssueTypeSoftware IssueType = "software"
	IssueTypeNetwork  IssueType = "network"
	IssueTypeOther    IssueType = "other"
)

// TicketType distinguishes customer jobs from internal ones.
type TicketType string

const (
	TicketTypeCustomer TicketType = "customer"
	TicketTypeInternal TicketType = "internal"
)

// DeviceInfo captures the serviced device's metadata.
type DeviceInfo struct {
	Type         string
	Brand        string
	SerialNumber string
	Working      bool
}

// Ticket is the central aggregate of the service center. A ticket is never
// hard-deleted; IsDeleted marks removal while rows retain history.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	CustomerID     string
	TechnicianID   *string
	CreatedBy      string
	IssueType      IssueType
	TicketType     TicketType
	Priority       TicketPriority
	Device         DeviceInfo
	Status         TicketStatus
	NeedsApproval  bool
	EstimateAmount *float64
	PickupDate     *string
	PickupTime     *string
	DeliveryDate   *string
	DeliveryTime   *string
	IsDeleted      bool
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
