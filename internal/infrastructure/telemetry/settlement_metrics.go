package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// SettlementMetrics records invoice lifecycle and ledger posting activity.
// All Record methods are safe to call on a nil receiver.
type SettlementMetrics struct {
	invoicesCreated *Counter
	transitions     *Counter
	rejected        *Counter
	conflicts       *Counter
	batchesPosted   *Counter
	entriesPosted   *Counter
	paymentAmount   *Histogram
}

// NewSettlementMetrics creates the settlement instruments on meter
func NewSettlementMetrics(meter metric.Meter) (*SettlementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &SettlementMetrics{}
	counters := []struct {
		dst         **Counter
		name        string
		description string
		unit        string
	}{
		{&m.invoicesCreated, "settlement_invoice_created_total", "Invoices created by initial status", "{invoice}"},
		{&m.transitions, "settlement_transition_total", "Successful invoice status transitions", "{transition}"},
		{&m.rejected, "settlement_transition_rejected_total", "Rejected invoice operations by error code", "{request}"},
		{&m.conflicts, "settlement_concurrency_conflict_total", "Transitions that lost a concurrent update", "{request}"},
		{&m.batchesPosted, "settlement_ledger_batch_total", "Ledger batches appended by posting rule", "{batch}"},
		{&m.entriesPosted, "settlement_ledger_entry_total", "Ledger rows appended", "{entry}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "settlement_payment_amount",
		Description: "Cash applied per settlement",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInvoiceCreated counts a created invoice
func (m *SettlementMetrics) RecordInvoiceCreated(ctx context.Context, status string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx, AttrStatusTo.String(status))
	if status == "PAID" && amount.IsPositive() {
		m.paymentAmount.Record(ctx, amount.InexactFloat64(), AttrStatusTo.String(status))
	}
}

// RecordTransition counts a committed transition and the cash it applied
func (m *SettlementMetrics) RecordTransition(ctx context.Context, from, to string, payment decimal.Decimal) {
	if m == nil {
		return
	}
	m.transitions.Inc(ctx, AttrStatusFrom.String(from), AttrStatusTo.String(to))
	if payment.IsPositive() {
		m.paymentAmount.Record(ctx, payment.InexactFloat64(), AttrStatusTo.String(to))
	}
}

// RecordBatchPosted counts an appended ledger batch
func (m *SettlementMetrics) RecordBatchPosted(ctx context.Context, rule string, entries int, _ decimal.Decimal) {
	if m == nil {
		return
	}
	m.batchesPosted.Inc(ctx, AttrPostingRule.String(rule))
	m.entriesPosted.Add(ctx, int64(entries), AttrPostingRule.String(rule))
}

// RecordRejected counts a failed create or transition
func (m *SettlementMetrics) RecordRejected(ctx context.Context, target, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "INTERNAL"
	}
	m.rejected.Inc(ctx, AttrStatusTo.String(target), AttrErrorCode.String(code))
}

// RecordConflict counts a transition rejected by the version check or a lock timeout
func (m *SettlementMetrics) RecordConflict(ctx context.Context, target string) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx, AttrStatusTo.String(target))
}
