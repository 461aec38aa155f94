package domain

import "time"

// TicketRemark is an append-only annotation on a ticket. Remarks have no edit
// operation; corrections are added as new remarks.
type TicketRemark struct {
	ID          string
	TicketID    string
	AuthorID    string
	Text        string
	Attachments []RemarkAttachment
	CreatedAt   time.Time
}

// RemarkAttachment references a stored file attached to a remark.
type RemarkAttachment struct {
	ID        string
	RemarkID  string
	Name      string
	Path      string
	CreatedAt time.Time
}
