package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayEventValidate(t *testing.T) {
	ev := &GatewayEvent{
		EventType: EventPaymentStatusChanged,
		Data:      GatewayEventData{OrderID: "order-1", Status: "DONE"},
	}
	assert.NoError(t, ev.Validate())

	assert.ErrorIs(t, (&GatewayEvent{Data: GatewayEventData{OrderID: "order-1"}}).Validate(), ErrMalformedEvent)
	assert.ErrorIs(t, (&GatewayEvent{EventType: EventPaymentCanceled}).Validate(), ErrMalformedEvent)
	assert.ErrorIs(t, (&GatewayEvent{}).Validate(), ErrMalformedEvent)
}

func TestGatewayEventUnmarshal(t *testing.T) {
	payload := `{
		"eventType": "PAYMENT_STATUS_CHANGED",
		"createdAt": "2026-03-01T09:30:00+09:00",
		"data": {
			"paymentKey": "pay_abc",
			"orderId": "order_42",
			"status": "DONE",
			"approvedAt": "2026-03-01T09:30:01+09:00",
			"totalAmount": 12000,
			"method": "card"
		}
	}`
	var ev GatewayEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))
	assert.Equal(t, EventPaymentStatusChanged, ev.EventType)
	assert.Equal(t, "order_42", ev.Data.OrderID)
	assert.Equal(t, "pay_abc", ev.Data.PaymentKey)
	assert.Equal(t, int64(12000), ev.Data.TotalAmount)
	assert.NoError(t, ev.Validate())
}

func TestGatewayCancelUnmarshal(t *testing.T) {
	payload := `{
		"eventType": "PAYMENT_CANCELED",
		"data": {
			"orderId": "order_42",
			"status": "CANCELED",
			"cancels": [{"cancelAmount": 12000, "cancelReason": "customer request"}]
		}
	}`
	var ev GatewayEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))
	require.Len(t, ev.Data.Cancels, 1)
	assert.Equal(t, int64(12000), ev.Data.Cancels[0].CancelAmount)
}
