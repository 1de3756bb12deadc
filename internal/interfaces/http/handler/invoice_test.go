package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, input appsettlement.CreateInvoiceInput) (*appsettlement.InvoiceResult, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsettlement.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) TransitionInvoiceStatus(ctx context.Context, tenantID uuid.UUID, input appsettlement.TransitionInput) (*appsettlement.InvoiceResult, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsettlement.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*settlement.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListLedgerEntries(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.LedgerEntry), args.Error(1)
}

func setupInvoiceRouter(svc InvoiceService) *gin.Engine {
	h := NewInvoiceHandler(svc)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.TenantMiddleware())
	r.POST("/invoices", h.Create)
	r.POST("/invoices/transition", h.Transition)
	r.POST("/invoices/:id/transition", h.TransitionByID)
	r.GET("/invoices/:id", h.Get)
	r.GET("/invoices/:id/ledger-entries", h.ListLedgerEntries)
	return r
}

func doRequest(r *gin.Engine, method, path string, tenantID uuid.UUID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testInvoice(t *testing.T, tenantID uuid.UUID, status settlement.InvoiceStatus, amount string) *settlement.Invoice {
	t.Helper()
	inv, err := settlement.NewInvoice(tenantID, "CUST-7", decimal.RequireFromString(amount), "Consulting",
		status, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

func TestInvoiceHandler_Create(t *testing.T) {
	tenantID := uuid.New()
	svc := new(MockInvoiceService)
	r := setupInvoiceRouter(svc)

	inv := testInvoice(t, tenantID, settlement.InvoiceStatusPending, "1200.50")
	batchID := uuid.New()
	entryIDs := []uuid.UUID{uuid.New(), uuid.New()}

	svc.On("CreateInvoice", mock.Anything, tenantID, mock.MatchedBy(func(in appsettlement.CreateInvoiceInput) bool {
		return in.CustomerRef == "CUST-7" &&
			in.InvoiceAmount.Equal(decimal.RequireFromString("1200.50")) &&
			in.InitialStatus == settlement.InvoiceStatusPending &&
			in.IssueDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})).Return(&appsettlement.InvoiceResult{
		Invoice:        inv,
		BatchID:        &batchID,
		LedgerEntryIDs: entryIDs,
		PaymentValue:   decimal.Zero,
	}, nil)

	w := doRequest(r, http.MethodPost, "/invoices", tenantID,
		`{"customer_ref":"CUST-7","invoice_amount":"1200.50","initial_status":"pending","issue_date":"2026-03-02"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, inv.ID.String(), data["id"])
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, batchID.String(), data["batch_id"])
	assert.Len(t, data["ledger_entry_ids"], 2)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_CreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing customer", body: `{"invoice_amount":"10","initial_status":"PENDING"}`, wantField: "customer_ref"},
		{name: "negative amount", body: `{"customer_ref":"C","invoice_amount":"-1","initial_status":"PENDING"}`, wantField: "invoice_amount"},
		{name: "unknown status", body: `{"customer_ref":"C","invoice_amount":"1","initial_status":"DRAFT"}`, wantField: "initial_status"},
		{name: "bad issue date", body: `{"customer_ref":"C","invoice_amount":"1","initial_status":"PAID","issue_date":"02/03/2026"}`, wantField: "issue_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockInvoiceService)
			w := doRequest(setupInvoiceRouter(svc), http.MethodPost, "/invoices", uuid.New(), tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Details)
			assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
			svc.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceHandler_CreateDomainRejection(t *testing.T) {
	tenantID := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("CreateInvoice", mock.Anything, tenantID, mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeValidation, "Invoice cannot be created in OVERDUE status, use PENDING or PAID"))

	w := doRequest(setupInvoiceRouter(svc), http.MethodPost, "/invoices", tenantID,
		`{"customer_ref":"C","invoice_amount":"5","initial_status":"OVERDUE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "OVERDUE")
}

func TestInvoiceHandler_Transition(t *testing.T) {
	tenantID := uuid.New()
	inv := testInvoice(t, tenantID, settlement.InvoiceStatusPending, "1000")
	payment := decimal.RequireFromString("250.25")

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "id in body", path: "/invoices/transition",
			body: `{"invoice_id":"` + inv.ID.String() + `","target_status":"PARTIALLY_PAID","payment_amount":"250.25"}`},
		{name: "id in path", path: "/invoices/" + inv.ID.String() + "/transition",
			body: `{"target_status":"PARTIALLY_PAID","payment_amount":"250.25"}`},
		{name: "matching id in both", path: "/invoices/" + inv.ID.String() + "/transition",
			body: `{"invoice_id":"` + inv.ID.String() + `","target_status":"partially_paid","payment_amount":250.25}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockInvoiceService)
			svc.On("TransitionInvoiceStatus", mock.Anything, tenantID, mock.MatchedBy(func(in appsettlement.TransitionInput) bool {
				return in.InvoiceID == inv.ID &&
					in.TargetStatus == settlement.InvoiceStatusPartiallyPaid &&
					in.PaymentAmount != nil && in.PaymentAmount.Equal(payment)
			})).Return(&appsettlement.InvoiceResult{
				Invoice:        inv,
				LedgerEntryIDs: []uuid.UUID{uuid.New(), uuid.New()},
				PaymentValue:   payment,
			}, nil)

			w := doRequest(setupInvoiceRouter(svc), http.MethodPost, tt.path, tenantID, tt.body)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			data := decode(t, w).Data.(map[string]any)
			assert.Equal(t, "250.25", data["payment_value"])
			svc.AssertExpectations(t)
		})
	}
}

func TestInvoiceHandler_TransitionErrors(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()

	tests := []struct {
		name       string
		path       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
		retryable  bool
	}{
		{name: "missing invoice id", path: "/invoices/transition", body: `{"target_status":"PAID"}`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeValidation},
		{name: "path and body disagree", path: "/invoices/" + invoiceID.String() + "/transition",
			body:       `{"invoice_id":"` + uuid.NewString() + `","target_status":"PAID"}`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeValidation},
		{name: "bad path id", path: "/invoices/not-a-uuid/transition", body: `{"target_status":"PAID"}`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeValidation},
		{name: "non-numeric payment", path: "/invoices/" + invoiceID.String() + "/transition",
			body:       `{"target_status":"PARTIALLY_PAID","payment_amount":"abc"}`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeValidation},
		{name: "boolean payment", path: "/invoices/" + invoiceID.String() + "/transition",
			body:       `{"target_status":"PARTIALLY_PAID","payment_amount":true}`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeValidation},
		{name: "illegal transition", path: "/invoices/" + invoiceID.String() + "/transition", body: `{"target_status":"PAID"}`,
			svcErr:     shared.NewDomainError(shared.CodeIllegalTransition, "CANCELLED -> PAID is not allowed"),
			wantStatus: http.StatusUnprocessableEntity, wantCode: shared.CodeIllegalTransition},
		{name: "not found", path: "/invoices/" + invoiceID.String() + "/transition", body: `{"target_status":"PAID"}`,
			svcErr:     shared.NewDomainError(shared.CodeNotFound, "Invoice not found"),
			wantStatus: http.StatusNotFound, wantCode: shared.CodeNotFound},
		{name: "conflict", path: "/invoices/" + invoiceID.String() + "/transition", body: `{"target_status":"PAID"}`,
			svcErr:     shared.NewDomainError(shared.CodeConcurrencyConflict, "modified by another process"),
			wantStatus: http.StatusConflict, wantCode: shared.CodeConcurrencyConflict, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockInvoiceService)
			if tt.svcErr != nil {
				svc.On("TransitionInvoiceStatus", mock.Anything, tenantID, mock.Anything).Return(nil, tt.svcErr)
			}

			w := doRequest(setupInvoiceRouter(svc), http.MethodPost, tt.path, tenantID, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.retryable, resp.Error.Retryable)
			if tt.svcErr == nil {
				svc.AssertNotCalled(t, "TransitionInvoiceStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestInvoiceHandler_TransitionNamesBadPaymentField(t *testing.T) {
	svc := new(MockInvoiceService)
	w := doRequest(setupInvoiceRouter(svc), http.MethodPost, "/invoices/transition", uuid.New(),
		`{"invoice_id":"`+uuid.NewString()+`","target_status":"PARTIALLY_PAID","payment_amount":"abc"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "payment_amount", resp.Error.Details[0].Field)
	assert.Contains(t, resp.Error.Details[0].Message, "not a number")
	svc.AssertNotCalled(t, "TransitionInvoiceStatus", mock.Anything, mock.Anything, mock.Anything)
}

// Amount rules are applied by the engine, after the lifecycle guard
func TestInvoiceHandler_TransitionPassesNegativePaymentThrough(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("TransitionInvoiceStatus", mock.Anything, tenantID, mock.MatchedBy(func(in appsettlement.TransitionInput) bool {
		return in.PaymentAmount != nil && in.PaymentAmount.Equal(decimal.NewFromInt(-5))
	})).Return(nil, shared.NewDomainError(shared.CodeIllegalTransition, "Invoice in CANCELLED status cannot change status"))

	w := doRequest(setupInvoiceRouter(svc), http.MethodPost, "/invoices/"+invoiceID.String()+"/transition", tenantID,
		`{"target_status":"PARTIALLY_PAID","payment_amount":-5}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, shared.CodeIllegalTransition, decode(t, w).Error.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Get(t *testing.T) {
	tenantID := uuid.New()
	inv := testInvoice(t, tenantID, settlement.InvoiceStatusPaid, "75")
	svc := new(MockInvoiceService)
	svc.On("GetInvoice", mock.Anything, tenantID, inv.ID).Return(inv, nil)

	w := doRequest(setupInvoiceRouter(svc), http.MethodGet, "/invoices/"+inv.ID.String(), tenantID, "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "PAID", data["status"])
	assert.Equal(t, "0", data["outstanding_amount"])
	assert.Equal(t, "75", data["paid_amount"])
	assert.Equal(t, "2026-03-02", data["issue_date"])
}

func TestInvoiceHandler_ListLedgerEntries(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	batchID := uuid.New()
	ar, revenue := uuid.New(), uuid.New()

	debit := settlement.Debit(ar, decimal.NewFromInt(300))
	debit.BatchID, debit.RowNum, debit.InvoiceRef, debit.StatusSnapshot = batchID, 1, invoiceID, settlement.InvoiceStatusPending
	credit := settlement.Credit(revenue, decimal.NewFromInt(300))
	credit.BatchID, credit.RowNum, credit.InvoiceRef, credit.StatusSnapshot = batchID, 2, invoiceID, settlement.InvoiceStatusPending

	svc := new(MockInvoiceService)
	svc.On("ListLedgerEntries", mock.Anything, tenantID, invoiceID).Return([]settlement.LedgerEntry{debit, credit}, nil)

	w := doRequest(setupInvoiceRouter(svc), http.MethodGet, "/invoices/"+invoiceID.String()+"/ledger-entries", tenantID, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	rows := resp.Data.([]any)
	first := rows[0].(map[string]any)
	assert.Equal(t, "300", first["debit_amount"])
	assert.Equal(t, "0", first["credit_amount"])
	assert.Equal(t, "PENDING", first["status_snapshot"])
}

func TestInvoiceHandler_RequiresTenant(t *testing.T) {
	svc := new(MockInvoiceService)
	h := NewInvoiceHandler(svc)
	r := gin.New()
	r.GET("/invoices/:id", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeMissingTenant, decode(t, w).Error.Code)
}
