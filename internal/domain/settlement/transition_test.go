package settlement

import (
	"fmt"
	"testing"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// InvoiceStatus Tests
// ============================================

func TestInvoiceStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  InvoiceStatus
		isValid bool
	}{
		{InvoiceStatusPending, true},
		{InvoiceStatusPartiallyPaid, true},
		{InvoiceStatusOverdue, true},
		{InvoiceStatusPaid, true},
		{InvoiceStatusCancelled, true},
		{InvoiceStatus("REFUNDED"), false},
		{InvoiceStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestInvoiceStatus_IsTerminal(t *testing.T) {
	assert.False(t, InvoiceStatusPending.IsTerminal())
	assert.False(t, InvoiceStatusPartiallyPaid.IsTerminal())
	assert.False(t, InvoiceStatusOverdue.IsTerminal())
	assert.True(t, InvoiceStatusPaid.IsTerminal())
	assert.True(t, InvoiceStatusCancelled.IsTerminal())
}

func TestParseInvoiceStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    InvoiceStatus
		wantErr bool
	}{
		{"PARTIALLY_PAID", InvoiceStatusPartiallyPaid, false},
		{"PartiallyPaid", InvoiceStatusPartiallyPaid, false},
		{"partially_paid", InvoiceStatusPartiallyPaid, false},
		{" paid ", InvoiceStatusPaid, false},
		{"Overdue", InvoiceStatusOverdue, false},
		{"Cancelled", InvoiceStatusCancelled, false},
		{"pending", InvoiceStatusPending, false},
		{"settled", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseInvoiceStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================
// Transition Table Tests
// ============================================

func TestLookupTransition_EveryCell(t *testing.T) {
	legal := map[Transition]PostingRule{
		{InvoiceStatusPending, InvoiceStatusPaid}:                PostingCashReceipt,
		{InvoiceStatusPending, InvoiceStatusPartiallyPaid}:       PostingCashReceipt,
		{InvoiceStatusPending, InvoiceStatusOverdue}:             PostingNone,
		{InvoiceStatusPending, InvoiceStatusCancelled}:           PostingNone,
		{InvoiceStatusPartiallyPaid, InvoiceStatusPartiallyPaid}: PostingCashReceipt,
		{InvoiceStatusPartiallyPaid, InvoiceStatusPaid}:          PostingCashReceipt,
		{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue}:       PostingNone,
		{InvoiceStatusPartiallyPaid, InvoiceStatusCancelled}:     PostingNone,
		{InvoiceStatusOverdue, InvoiceStatusPaid}:                PostingCashReceipt,
	}

	for _, from := range AllInvoiceStatuses {
		for _, to := range AllInvoiceStatuses {
			tr := Transition{From: from, To: to}
			t.Run(tr.String(), func(t *testing.T) {
				rule, err := LookupTransition(from, to)
				want, ok := legal[tr]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, rule)
					assert.True(t, CanTransition(from, to))
					return
				}
				assert.ErrorIs(t, err, shared.ErrIllegalTransition)
				assert.False(t, CanTransition(from, to))
			})
		}
	}
}

func TestAllowedTargets(t *testing.T) {
	assert.Equal(t, []InvoiceStatus{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusCancelled},
		AllowedTargets(InvoiceStatusPending))
	assert.Equal(t, []InvoiceStatus{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusCancelled},
		AllowedTargets(InvoiceStatusPartiallyPaid))
	assert.Equal(t, []InvoiceStatus{InvoiceStatusPaid}, AllowedTargets(InvoiceStatusOverdue))
	assert.Empty(t, AllowedTargets(InvoiceStatusPaid))
	assert.Empty(t, AllowedTargets(InvoiceStatusCancelled))
}

func TestLookupTransition_TerminalMessage(t *testing.T) {
	_, err := LookupTransition(InvoiceStatusPaid, InvoiceStatusCancelled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAID status cannot change")
}

func TestCreationRule(t *testing.T) {
	rule, err := CreationRule(InvoiceStatusPending)
	require.NoError(t, err)
	assert.Equal(t, PostingRevenueRecognition, rule)

	rule, err = CreationRule(InvoiceStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, PostingCashSale, rule)

	for _, s := range []InvoiceStatus{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusCancelled} {
		t.Run(fmt.Sprintf("rejects %s", s), func(t *testing.T) {
			_, err := CreationRule(s)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}
