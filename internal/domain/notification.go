package domain

import "time"

// Notification is a fire-and-forget in-app record shown on the dashboard.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	TicketID  *string
	Read      bool
	CreatedAt time.Time
}
