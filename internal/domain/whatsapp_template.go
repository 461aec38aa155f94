package domain

import (
	"strings"
	"time"
)

// RecipientClass identifies who a WhatsApp template addresses.
type RecipientClass string

const (
	RecipientClient     RecipientClass = "Client"
	RecipientTechnician RecipientClass = "Technician"
	RecipientAdmin      RecipientClass = "Admin"
)

// WhatsAppTemplate is a named message body keyed by lifecycle status and
// recipient class. Placeholders use the {Name} form and are substituted at
// send time. Many templates may map to one status; operators pick among them.
type WhatsAppTemplate struct {
	ID        string
	Title     string
	Subject   string
	Message   string
	Recipient RecipientClass
	Status    TicketStatus
	Active    bool
	Variables []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Render substitutes {Placeholder} variables into the message body. Unknown
// placeholders are left intact so operators can spot a missing mapping.
func (t WhatsAppTemplate) Render(vars map[string]string) string {
	out := t.Message
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// DefaultTemplates seeds the template table on first run. Bodies come from the
// operator's production set.
func DefaultTemplates() []WhatsAppTemplate {
	return []WhatsAppTemplate{
		{
			Title:     "Query Received",
			Subject:   "Your Query Received!",
			Message:   "Dear {Customer Name},\n\nThank you for contacting the MP2TECH Support team. We have received your query. One of our technicians will get in touch with you within a few minutes.\n\nThank You,\nMP2TECH Support team.",
			Recipient: RecipientClient,
			Status:    StatusInQueue,
			Active:    true,
			Variables: []string{"Customer Name"},
		},
		{
			Title:     "Technician Started",
			Subject:   "Technician On the Job: Your Ticket in Progress!",
			Message:   "Dear Client,\nWe wanted to inform you that the Technician has begun working on your Ticket. He will do his best to complete the job as quickly and efficiently as possible. Please let us know if you need anything or have any concerns.\n\nThank You,\nMP2TECH Support team.",
			Recipient: RecipientClient,
			Status:    StatusInProgress,
			Active:    true,
		},
		{
			Title:     "Pickup Scheduled",
			Subject:   "Pickup Scheduled: Technician En Route for Your Device!",
			Message:   "Dear Client,\nWe'd like to inform you that your laptop/desktop pickup has been scheduled, and a technician has been dispatched. Kindly ensure that someone is available at the specified address for the pickup.\n\nBest regards,\nMP2TECH\n+919930568888",
			Recipient: RecipientClient,
			Status:    StatusPickup,
			Active:    true,
		},
		{
			Title:     "Product Received",
			Subject:   "Device Assessment Update: We've Received Your Device!",
			Message:   "Dear Client,\nWe have received your Device and we are currently assessing the issue. We will keep you updated on the progress of the repair and let you know when it is ready for pickup/Drop.\n\nBest regards,\nMP2TECH\n+91 9930568888",
			Recipient: RecipientClient,
			Status:    StatusProductReceived,
			Active:    true,
		},
		{
			Title:     "Estimate Sent",
			Subject:   "Review Required: Estimate & Terms for Your Device",
			Message:   "Dear Client,\nYour device is with us for assessment. Before we proceed with repairs, your approval is needed. Kindly review the attached estimate and confirm your consent.\n\nBest regards,\nMP2TECH Support team.",
			Recipient: RecipientClient,
			Status:    StatusClientApproval,
			Active:    true,
		},
		{
			Title:     "Update After Repair",
			Subject:   "Repair Update: Your Laptop Repair Completed Successfully!",
			Message:   "Hi {Customer Name},\nGreat news! Your laptop has undergone successful repairs for the following issues:\n- {Issue 1}\n- {Issue 2}\n- {Issue 3}\n\nYour device is now working perfectly fine. Currently it's under observation, and we'll inform you of the exact delivery time after completion of testing.\n\nBest regards,\nMP2TECH Support Team\n+919930568888",
			Recipient: RecipientClient,
			Status:    StatusDone,
			Active:    true,
			Variables: []string{"Customer Name", "Issue 1", "Issue 2", "Issue 3"},
		},
		{
			Title:     "Delivery Scheduled",
			Subject:   "Your Device Repaired & Ready for Delivery!",
			Message:   "Dear Client,\nWe are pleased to inform you that your device has been repaired and is now ready for delivery. Our team will get in touch with you shortly to confirm the delivery time.\n\nBest regards,\nMP2TECH Support Team\n+91 9930-56-8888",
			Recipient: RecipientClient,
			Status:    StatusDeliveryScheduled,
			Active:    true,
		},
		{
			Title:     "Delivered",
			Subject:   "Confirmation: Your Device Successfully Delivered!",
			Message:   "Dear Client,\nWe want to confirm that your device has been successfully delivered. If you have any questions or need assistance, feel free to reach out.\n\nBest regards,\nMP2TECH Support Team\n+91 9930-56-8888",
			Recipient: RecipientClient,
			Status:    StatusDelivered,
			Active:    true,
		},
		{
			Title:     "Invoice Sent",
			Subject:   "Work Completed: Invoice Coming Soon!",
			Message:   "Dear Client,\nOur technician has successfully completed the work assigned to them as per the agreed-upon terms and conditions. An invoice will be sent to you shortly via Whatsapp or email.\n\nBest regards,\nMP2TECH Support Team.",
			Recipient: RecipientClient,
			Status:    StatusInvoiceSent,
			Active:    true,
		},
		{
			Title:     "On Hold",
			Subject:   "Repair Status Update: Your Device On Hold",
			Message:   "Dear Client,\nWe regret to inform you that the repair of your device has been put on hold. Our team is working diligently to resolve the issue and resume the repair process as soon as possible.\n\nBest regards,\nMP2TECH\n+91 9930568888",
			Recipient: RecipientClient,
			Status:    StatusOnHold,
			Active:    true,
		},
	}
}
