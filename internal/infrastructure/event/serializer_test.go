package event

import (
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *settlement.Invoice {
	t.Helper()
	inv, err := settlement.NewInvoice(uuid.New(), "CUST-001", decimal.NewFromInt(100),
		"Consulting", settlement.InvoiceStatusPending, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

func TestSettlementEventSerializer_RegisteredTypes(t *testing.T) {
	s := NewSettlementEventSerializer()

	assert.Equal(t, []string{
		settlement.EventTypeInvoiceCreated,
		settlement.EventTypeInvoiceStatusChanged,
		settlement.EventTypeLedgerBatchPosted,
	}, s.RegisteredTypes())
	assert.False(t, s.IsRegistered("UnknownEvent"))
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewSettlementEventSerializer()
	inv := newTestInvoice(t)
	original := settlement.NewInvoiceStatusChangedEvent(inv, settlement.InvoiceStatusPending, decimal.RequireFromString("40.50"))

	data, err := s.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payment_value":"40.5"`)
	assert.Contains(t, string(data), `"from_status":"PENDING"`)

	decoded, err := s.Deserialize(settlement.EventTypeInvoiceStatusChanged, data)
	require.NoError(t, err)

	changed, ok := decoded.(*settlement.InvoiceStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), changed.EventID())
	assert.Equal(t, inv.TenantID, changed.TenantID())
	assert.Equal(t, inv.ID, changed.AggregateID())
	assert.True(t, original.PaymentValue.Equal(changed.PaymentValue))
}

func TestEventSerializer_Errors(t *testing.T) {
	s := NewEventSerializer()
	inv := newTestInvoice(t)

	_, err := s.Serialize(settlement.NewInvoiceCreatedEvent(inv))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize("Missing", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	s.Register(settlement.EventTypeInvoiceCreated, &settlement.InvoiceCreatedEvent{})
	_, err = s.Deserialize(settlement.EventTypeInvoiceCreated, []byte(`{not json`))
	assert.ErrorContains(t, err, "failed to unmarshal event")
}
