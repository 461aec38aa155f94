package domain

// TicketStatus enumerates lifecycle states for tickets. The string values are
// wire values: stored rows, WhatsApp template keys and reports all key off them.
type TicketStatus string

const (
	StatusInQueue           TicketStatus = "in_queue"
	StatusAssigned          TicketStatus = "assigned"
	StatusTicketAccepted    TicketStatus = "ticket_accepted"
	StatusPickup            TicketStatus = "pickup"
	StatusProductReceived   TicketStatus = "product_received"
	StatusInProgress        TicketStatus = "in_progress"
	StatusClientApproval    TicketStatus = "client_approval"
	StatusDeliveryScheduled TicketStatus = "delivery_scheduled"
	StatusDelivered         TicketStatus = "delivered"
	StatusDone              TicketStatus = "done"
	StatusInvoiceSent       TicketStatus = "invoice_sent"
	StatusPaymentReceived   TicketStatus = "payment_received"
	StatusComplete          TicketStatus = "complete"
	StatusOnHold            TicketStatus = "on_hold"
	StatusRejected          TicketStatus = "rejected"
)

// UnknownStatusLabel is rendered for any code outside the registered set.
const UnknownStatusLabel = "Unknown Status"

// StatusInfo carries display metadata for a lifecycle state.
type StatusInfo struct {
	Code      TicketStatus
	Label     string
	Color     string
	SortOrder int
}

// statusRegistry is the single source of truth for state metadata. Order
// reflects the expected forward progression; on_hold and rejected are
// side/terminal states listed last.
var statusRegistry = []StatusInfo{
	{Code: StatusInQueue, Label: "Generated", Color: "blue", SortOrder: 1},
	{Code: StatusAssigned, Label: "Ticket Assigned", Color: "purple", SortOrder: 2},
	{Code: StatusTicketAccepted, Label: "Ticket Accepted", Color: "indigo", SortOrder: 3},
	{Code: StatusPickup, Label: "Pickup Schedule", Color: "cyan", SortOrder: 4},
	{Code: StatusProductReceived, Label: "Product Received", Color: "teal", SortOrder: 5},
	{Code: StatusInProgress, Label: "In Progress", Color: "orange", SortOrder: 6},
	{Code: StatusClientApproval, Label: "Client Approval", Color: "amber", SortOrder: 7},
	{Code: StatusDeliveryScheduled, Label: "Delivery Scheduled", Color: "lime", SortOrder: 8},
	{Code: StatusDelivered, Label: "Delivered", Color: "green", SortOrder: 9},
	{Code: StatusDone, Label: "Done", Color: "emerald", SortOrder: 10},
	{Code: StatusInvoiceSent, Label: "Invoice Sent", Color: "sky", SortOrder: 11},
	{Code: StatusPaymentReceived, Label: "Payment Received", Color: "violet", SortOrder: 12},
	{Code: StatusComplete, Label: "Complete", Color: "darkgreen", SortOrder: 13},
	{Code: StatusOnHold, Label: "On Hold", Color: "red", SortOrder: 14},
	{Code: StatusRejected, Label: "Rejected", Color: "rose", SortOrder: 15},
}

var statusByCode = func() map[TicketStatus]StatusInfo {
	m := make(map[TicketStatus]StatusInfo, len(statusRegistry))
	for _, info := range statusRegistry {
		m[info.Code] = info
	}
	return m
}()

// AllStatuses returns every registered status in progression order.
func AllStatuses() []TicketStatus {
	out := make([]TicketStatus, 0, len(statusRegistry))
	for _, info := range statusRegistry {
		out = append(out, info.Code)
	}
	return out
}

// AllStatusInfos returns the registry entries in progression order.
func AllStatusInfos() []StatusInfo {
	out := make([]StatusInfo, len(statusRegistry))
	copy(out, statusRegistry)
	return out
}

// StatusInfoOf looks up display metadata for a status code.
func StatusInfoOf(status TicketStatus) (StatusInfo, bool) {
	info, ok := statusByCode[status]
	return info, ok
}

// LabelOf returns the display label for a status. Unregistered codes map to
// UnknownStatusLabel so callers can keep rendering stored data from older
// schema versions.
func LabelOf(status TicketStatus) string {
	if info, ok := statusByCode[status]; ok {
		return info.Label
	}
	return UnknownStatusLabel
}

// IsRegisteredStatus reports whether the code belongs to the canonical set.
func IsRegisteredStatus(status TicketStatus) bool {
	_, ok := statusByCode[status]
	return ok
}

// IsTerminalStatus reports whether a ticket in this state has finished its
// lifecycle. Admins can still move tickets out of complete; rejected is final.
func IsTerminalStatus(status TicketStatus) bool {
	return status == StatusComplete || status == StatusRejected
}
