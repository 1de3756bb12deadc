package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LockMode selects how an invoice row is read at the start of a transition
type LockMode string

const (
	// LockModePessimistic reads the invoice with SELECT ... FOR UPDATE
	LockModePessimistic LockMode = "pessimistic"
	// LockModeOptimistic reads without a lock and relies on the version check alone
	LockModeOptimistic LockMode = "optimistic"
)

// InvoiceStateMachine creates invoices and applies status transitions, keeping
// each invoice's status and outstanding balance in step with the ledger.
//
// Every operation runs read, validate, compute, post and update inside one
// transaction. The invoice update is always guarded by the version read at the
// start, so a concurrent change surfaces as CONCURRENCY_CONFLICT and the caller
// may retry from a fresh read.
type InvoiceStateMachine struct {
	scope      TransactionScope
	directory  settlement.AccountDirectory
	calculator *settlement.SettlementCalculator
	metrics    *telemetry.SettlementMetrics
	logger     *zap.Logger
	lockMode   LockMode
	now        func() time.Time
}

// Option configures an InvoiceStateMachine
type Option func(*InvoiceStateMachine)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *InvoiceStateMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the settlement metrics recorder
func WithMetrics(metrics *telemetry.SettlementMetrics) Option {
	return func(m *InvoiceStateMachine) {
		m.metrics = metrics
	}
}

// WithLockMode sets how invoices are read before a transition
func WithLockMode(mode LockMode) Option {
	return func(m *InvoiceStateMachine) {
		if mode == LockModeOptimistic || mode == LockModePessimistic {
			m.lockMode = mode
		}
	}
}

// WithClock overrides the time source used for ledger transaction dates
func WithClock(now func() time.Time) Option {
	return func(m *InvoiceStateMachine) {
		m.now = now
	}
}

// NewInvoiceStateMachine creates a new InvoiceStateMachine
func NewInvoiceStateMachine(scope TransactionScope, directory settlement.AccountDirectory, opts ...Option) *InvoiceStateMachine {
	m := &InvoiceStateMachine{
		scope:      scope,
		directory:  directory,
		calculator: settlement.NewSettlementCalculator(),
		logger:     zap.NewNop(),
		lockMode:   LockModePessimistic,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateInvoice creates an invoice using the tenant's account mapping
func (m *InvoiceStateMachine) CreateInvoice(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*InvoiceResult, error) {
	mapping, err := m.lookupMapping(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return m.CreateInvoiceWithMapping(ctx, mapping, input)
}

// CreateInvoiceWithMapping creates an invoice and posts its opening batch
// against the given accounts. A PENDING invoice recognizes revenue against AR;
// a PAID one records a cash sale against AR and Cash.
func (m *InvoiceStateMachine) CreateInvoiceWithMapping(ctx context.Context, mapping settlement.AccountMapping, input CreateInvoiceInput) (*InvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice_state_machine", "create_invoice")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, mapping.TenantID.String(),
		telemetry.SpanAttrCustomerRef, input.CustomerRef,
		telemetry.SpanAttrAmount, input.InvoiceAmount.String(),
		telemetry.SpanAttrStatusTo, input.InitialStatus.String(),
	)

	if err := mapping.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	inv, err := settlement.NewInvoice(mapping.TenantID, input.CustomerRef, input.InvoiceAmount,
		input.Description, input.InitialStatus, input.IssueDate)
	if err != nil {
		telemetry.RecordError(span, err)
		m.metrics.RecordRejected(ctx, input.InitialStatus.String(), shared.CodeOf(err))
		return nil, err
	}

	rule, err := settlement.CreationRule(inv.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entries := rule.Entries(settlement.PostingContext{
		TenantID:    inv.TenantID,
		InvoiceID:   inv.ID,
		Mapping:     mapping,
		Amount:      inv.InvoiceAmount,
		Status:      inv.Status,
		Date:        inv.IssueDate,
		Description: ledgerDescription(rule, inv),
	})

	var posted *PostedBatch
	err = m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}

		events := inv.GetDomainEvents()
		if len(entries) > 0 {
			batch, err := NewLedgerEngine(repos.Ledger(), repos.Accounts()).PostBatch(ctx, inv.TenantID, entries)
			if err != nil {
				return err
			}
			posted = batch
			events = append(events, settlement.NewLedgerBatchPostedEvent(inv.TenantID, batch.BatchID, inv.ID, batch.Entries))
		}

		return repos.Outbox().Append(ctx, events...)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		m.metrics.RecordRejected(ctx, input.InitialStatus.String(), shared.CodeOf(err))
		m.logger.Warn("Invoice creation failed",
			zap.String("customer_ref", input.CustomerRef),
			zap.String("initial_status", input.InitialStatus.String()),
			zap.Error(err),
		)
		return nil, err
	}
	inv.ClearDomainEvents()

	result := newInvoiceResult(inv, posted)
	if rule == settlement.PostingCashSale {
		result.PaymentValue = inv.InvoiceAmount
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, inv.ID.String())
	m.metrics.RecordInvoiceCreated(ctx, inv.Status.String(), inv.InvoiceAmount)
	if posted != nil {
		m.metrics.RecordBatchPosted(ctx, rule.String(), len(posted.Entries), inv.InvoiceAmount)
	}
	m.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("tenant_id", inv.TenantID.String()),
		zap.String("status", inv.Status.String()),
		zap.String("invoice_amount", inv.InvoiceAmount.String()),
		zap.Int("ledger_entries", len(result.LedgerEntryIDs)),
	)

	return result, nil
}

// TransitionInvoiceStatus moves an invoice to a new status using the tenant's account mapping
func (m *InvoiceStateMachine) TransitionInvoiceStatus(ctx context.Context, tenantID uuid.UUID, input TransitionInput) (*InvoiceResult, error) {
	mapping, err := m.lookupMapping(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return m.TransitionWithMapping(ctx, mapping, input)
}

// TransitionWithMapping moves an invoice to a new status against the given accounts.
//
// Within one transaction it reads the invoice, checks the lifecycle guard,
// validates the payment amount, posts a cash receipt for any payment, and writes the new
// status and balance with a version check. Nothing is written when any step fails.
func (m *InvoiceStateMachine) TransitionWithMapping(ctx context.Context, mapping settlement.AccountMapping, input TransitionInput) (*InvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice_state_machine", "transition_invoice_status")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, mapping.TenantID.String(),
		telemetry.SpanAttrInvoiceID, input.InvoiceID.String(),
		telemetry.SpanAttrStatusTo, input.TargetStatus.String(),
		telemetry.SpanAttrLockMode, string(m.lockMode),
	)
	if input.PaymentAmount != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrAmount, input.PaymentAmount.String())
	}

	if err := mapping.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.InvoiceID == uuid.Nil {
		err := shared.NewDomainError(shared.CodeValidation, "Invoice ID cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !input.TargetStatus.IsValid() {
		err := shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown target status %q", input.TargetStatus))
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		inv    *settlement.Invoice
		plan   settlement.SettlementPlan
		posted *PostedBatch
	)
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = m.loadInvoice(ctx, repos.Invoices(), mapping.TenantID, input.InvoiceID)
		if err != nil {
			return err
		}

		plan, err = inv.PlanSettlement(m.calculator, input.TargetStatus, input.PaymentAmount)
		if err != nil {
			return err
		}

		entries := plan.Rule.Entries(settlement.PostingContext{
			TenantID:    inv.TenantID,
			InvoiceID:   inv.ID,
			Mapping:     mapping,
			Amount:      plan.Settlement.PaymentValue,
			Status:      plan.Target,
			Date:        m.now(),
			Description: ledgerDescription(plan.Rule, inv),
		})

		var events []shared.DomainEvent
		if len(entries) > 0 {
			posted, err = NewLedgerEngine(repos.Ledger(), repos.Accounts()).PostBatch(ctx, inv.TenantID, entries)
			if err != nil {
				return err
			}
			events = append(events, settlement.NewLedgerBatchPostedEvent(inv.TenantID, posted.BatchID, inv.ID, posted.Entries))
		}

		expectedVersion := inv.Version
		if err := inv.ApplySettlement(plan.Target, plan.Settlement); err != nil {
			return err
		}
		if _, err := repos.Invoices().Update(ctx, inv, expectedVersion); err != nil {
			return err
		}

		events = append(inv.GetDomainEvents(), events...)
		return repos.Outbox().Append(ctx, events...)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		code := shared.CodeOf(err)
		m.metrics.RecordRejected(ctx, input.TargetStatus.String(), code)
		if code == shared.CodeConcurrencyConflict {
			m.metrics.RecordConflict(ctx, input.TargetStatus.String())
		}
		m.logger.Warn("Invoice transition failed",
			zap.String("invoice_id", input.InvoiceID.String()),
			zap.String("target_status", input.TargetStatus.String()),
			zap.String("code", code),
			zap.Bool("retryable", shared.IsRetryable(err)),
			zap.Error(err),
		)
		return nil, err
	}
	inv.ClearDomainEvents()

	result := newInvoiceResult(inv, posted)
	result.PaymentValue = plan.Settlement.PaymentValue

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStatusFrom, plan.From.String(),
		telemetry.SpanAttrPayment, plan.Settlement.PaymentValue.String(),
	)
	m.metrics.RecordTransition(ctx, plan.From.String(), plan.Target.String(), plan.Settlement.PaymentValue)
	if posted != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrBatchID, posted.BatchID.String())
		m.metrics.RecordBatchPosted(ctx, plan.Rule.String(), len(posted.Entries), plan.Settlement.PaymentValue)
	}
	m.logger.Info("Invoice status changed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", plan.From.String()),
		zap.String("to", plan.Target.String()),
		zap.String("payment", plan.Settlement.PaymentValue.String()),
		zap.String("outstanding", inv.OutstandingAmount.String()),
		zap.Int("version", inv.Version),
	)

	return result, nil
}

// GetInvoice loads an invoice for a tenant
func (m *InvoiceStateMachine) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*settlement.Invoice, error) {
	var inv *settlement.Invoice
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().Get(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListLedgerEntries returns every ledger row posted for an invoice
func (m *InvoiceStateMachine) ListLedgerEntries(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error) {
	var entries []settlement.LedgerEntry
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Invoices().Get(ctx, tenantID, invoiceID); err != nil {
			return err
		}
		var err error
		entries, err = repos.Ledger().FindByInvoice(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *InvoiceStateMachine) lookupMapping(ctx context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	if tenantID == uuid.Nil {
		return settlement.AccountMapping{}, shared.NewDomainError(shared.CodeValidation, "Tenant ID cannot be empty")
	}
	mapping, err := m.directory.Lookup(ctx, tenantID)
	if err != nil {
		return settlement.AccountMapping{}, err
	}
	mapping.TenantID = tenantID
	return mapping, nil
}

func (m *InvoiceStateMachine) loadInvoice(ctx context.Context, store settlement.InvoiceStore, tenantID, id uuid.UUID) (*settlement.Invoice, error) {
	if m.lockMode == LockModeOptimistic {
		return store.Get(ctx, tenantID, id)
	}
	return store.GetForUpdate(ctx, tenantID, id)
}

func ledgerDescription(rule settlement.PostingRule, inv *settlement.Invoice) string {
	switch rule {
	case settlement.PostingRevenueRecognition:
		return fmt.Sprintf("Invoice issued to %s", inv.CustomerRef)
	case settlement.PostingCashSale:
		return fmt.Sprintf("Cash sale to %s", inv.CustomerRef)
	case settlement.PostingCashReceipt:
		return fmt.Sprintf("Payment received from %s", inv.CustomerRef)
	}
	return inv.Description
}
