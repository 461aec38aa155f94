package worker

import (
	"github.com/mp2tech/service-center/internal/events"
	"github.com/mp2tech/service-center/internal/notify"
	"github.com/mp2tech/service-center/internal/service"
)

// StartNotificationWorker wires notification consumers onto the event bus.
// The in-app feed always listens; WhatsApp dispatch is optional and skipped
// when the gateway is not configured.
func StartNotificationWorker(dispatcher events.Dispatcher, inApp *service.NotificationService, whatsapp *notify.Dispatcher) {
	if inApp != nil {
		inApp.RegisterHandlers()
	}
	if whatsapp != nil && dispatcher != nil {
		dispatcher.Subscribe(events.EventTicketCreated, whatsapp.HandleTicketCreated)
		dispatcher.Subscribe(events.EventTicketStatusChanged, whatsapp.HandleStatusChanged)
	}
}
