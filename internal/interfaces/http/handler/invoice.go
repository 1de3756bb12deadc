package handler

import (
	"context"
	"net/http"
	"time"

	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the settlement API the invoice endpoints call
type InvoiceService interface {
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, input appsettlement.CreateInvoiceInput) (*appsettlement.InvoiceResult, error)
	TransitionInvoiceStatus(ctx context.Context, tenantID uuid.UUID, input appsettlement.TransitionInput) (*appsettlement.InvoiceResult, error)
	GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*settlement.Invoice, error)
	ListLedgerEntries(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]settlement.LedgerEntry, error)
}

// InvoiceHandler handles invoice settlement endpoints
type InvoiceHandler struct {
	BaseHandler
	service InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Creates an invoice as PENDING (posts revenue recognition) or PAID (posts a cash sale)
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        request body dto.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=dto.SettlementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status, err := settlement.ParseInvoiceStatus(req.InitialStatus)
	if err != nil {
		h.InvalidField(c, "initial_status", err.Error())
		return
	}
	var issueDate time.Time
	if req.IssueDate != "" {
		issueDate, err = time.Parse(dto.IssueDateLayout, req.IssueDate)
		if err != nil {
			h.InvalidField(c, "issue_date", "Must be a date in "+dto.IssueDateLayout+" format")
			return
		}
	}

	result, err := h.service.CreateInvoice(c.Request.Context(), tenantID, appsettlement.CreateInvoiceInput{
		CustomerRef:   req.CustomerRef,
		InvoiceAmount: req.InvoiceAmount,
		Description:   req.Description,
		InitialStatus: status,
		IssueDate:     issueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSettlementResponse(result))
}

// Transition godoc
// @Summary      Transition an invoice
// @Description  Moves an invoice to a new status and posts the ledger batch the transition requires
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        request body dto.TransitionRequest true "Transition"
// @Success      200 {object} dto.Response{data=dto.SettlementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/transition [post]
func (h *InvoiceHandler) Transition(c *gin.Context) {
	h.transition(c, uuid.Nil)
}

// TransitionByID godoc
// @Summary      Transition an invoice by path ID
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body dto.TransitionRequest true "Transition"
// @Success      200 {object} dto.Response{data=dto.SettlementResponse}
// @Router       /invoices/{id}/transition [post]
func (h *InvoiceHandler) TransitionByID(c *gin.Context) {
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}
	h.transition(c, invoiceID)
}

// transition serves both transition routes; pathID is uuid.Nil when the
// invoice ID comes from the body.
func (h *InvoiceHandler) transition(c *gin.Context, pathID uuid.UUID) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoiceID := pathID
	if req.InvoiceID != "" {
		bodyID, err := uuid.Parse(req.InvoiceID)
		if err != nil {
			h.InvalidField(c, "invoice_id", "Invalid UUID format")
			return
		}
		if pathID != uuid.Nil && bodyID != pathID {
			h.InvalidField(c, "invoice_id", "Does not match the invoice in the path")
			return
		}
		invoiceID = bodyID
	}
	if invoiceID == uuid.Nil {
		h.InvalidField(c, "invoice_id", "This field is required")
		return
	}

	target, err := settlement.ParseInvoiceStatus(req.TargetStatus)
	if err != nil {
		h.InvalidField(c, "target_status", err.Error())
		return
	}
	payment, err := req.Payment()
	if err != nil {
		h.InvalidField(c, "payment_amount", err.Error())
		return
	}

	result, err := h.service.TransitionInvoiceStatus(c.Request.Context(), tenantID, appsettlement.TransitionInput{
		InvoiceID:     invoiceID,
		TargetStatus:  target,
		PaymentAmount: payment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSettlementResponse(result))
}

// Get godoc
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewInvoiceResponse(inv))
}

// ListLedgerEntries godoc
// @Summary      List an invoice's ledger entries
// @Description  Returns every ledger row posted for the invoice, oldest batch first
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]dto.LedgerEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/ledger-entries [get]
func (h *InvoiceHandler) ListLedgerEntries(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.service.ListLedgerEntries(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.NewLedgerEntryResponses(entries)))
}

func (h *InvoiceHandler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeMissingTenant, "Tenant identification required")
		return uuid.Nil, false
	}
	return tenantID, true
}

func (h *InvoiceHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.InvalidField(c, "id", "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}

func toSettlementResponse(r *appsettlement.InvoiceResult) dto.SettlementResponse {
	return dto.NewSettlementResponse(r.Invoice, r.BatchID, r.LedgerEntryIDs, r.PaymentValue)
}
