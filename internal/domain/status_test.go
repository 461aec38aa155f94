package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllStatusesOrder(t *testing.T) {
	statuses := AllStatuses()
	require.Len(t, statuses, 15)

	assert.Equal(t, StatusInQueue, statuses[0])
	assert.Equal(t, StatusComplete, statuses[12])
	assert.Equal(t, StatusOnHold, statuses[13])
	assert.Equal(t, StatusRejected, statuses[14])

	// Sort order is strictly increasing in registry order.
	prev := 0
	for _, status := range statuses {
		info, ok := StatusInfoOf(status)
		require.True(t, ok)
		assert.Greater(t, info.SortOrder, prev)
		prev = info.SortOrder
	}
}

func TestAllStatusInfos(t *testing.T) {
	infos := AllStatusInfos()
	require.Len(t, infos, len(AllStatuses()))

	for i, info := range infos {
		assert.Equal(t, AllStatuses()[i], info.Code)
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Color)
		assert.Equal(t, i+1, info.SortOrder)
	}

	// Callers get a copy, not the registry itself.
	infos[0].Label = "mutated"
	assert.Equal(t, "Generated", LabelOf(StatusInQueue))
}

func TestLabelOf(t *testing.T) {
	tests := []struct {
		status TicketStatus
		want   string
	}{
		{StatusInQueue, "Generated"},
		{StatusAssigned, "Ticket Assigned"},
		{StatusPickup, "Pickup Schedule"},
		{StatusProductReceived, "Product Received"},
		{StatusClientApproval, "Client Approval"},
		{StatusDeliveryScheduled, "Delivery Scheduled"},
		{StatusInvoiceSent, "Invoice Sent"},
		{StatusPaymentReceived, "Payment Received"},
		{StatusComplete, "Complete"},
		{StatusOnHold, "On Hold"},
		{StatusRejected, "Rejected"},
		{TicketStatus("resolved"), UnknownStatusLabel},
		{TicketStatus(""), UnknownStatusLabel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelOf(tt.status), "status %q", tt.status)
	}
}

func TestIsRegisteredStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		assert.True(t, IsRegisteredStatus(status))
	}
	assert.False(t, IsRegisteredStatus("closed"))
	assert.False(t, IsRegisteredStatus(""))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusComplete))
	assert.True(t, IsTerminalStatus(StatusRejected))
	assert.False(t, IsTerminalStatus(StatusDone))
	assert.False(t, IsTerminalStatus(StatusOnHold))
	assert.False(t, IsTerminalStatus(StatusInQueue))
}
