package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// List godoc
// @Summary List invoices
// @Description Get invoices ordered by start date descending
// @Tags Invoices
// @Accept json
// @Produce json
// @Param projectId query string false "Filter by project" format(uuid)
// @Param financialYear query string false "Filter by financial year, e.g. 2024-2025"
// @Success 200 {array} domain.InvoiceDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid projectId format",
			})
			return
		}
		projectID = &id
	}

	invoices, err := h.invoiceService.List(r.Context(), projectID, r.URL.Query().Get("financialYear"))
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list invoices",
		})
		return
	}

	respondJSON(w, http.StatusOK, invoices)
}

// GetByNumber godoc
// @Summary Get invoice by number
// @Description Get a single invoice by its number, e.g. SIS-0042
// @Tags Invoices
// @Accept json
// @Produce json
// @Param number path string true "Invoice number"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse
// @Router /invoices/{number} [get]
func (h *InvoiceHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	invoice, err := h.invoiceService.GetByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Invoice not found",
			})
			return
		}
		h.logger.Error("failed to get invoice", zap.Error(err), zap.String("number", number))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get invoice",
		})
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Generate godoc
// @Summary Generate invoice
// @Description Generate an invoice for a project and billing period. Reserves the next invoice number, renders the PDF, stores it and persists the invoice record. A stale-counter warning in the response means the invoice was created but the number counter could not be advanced.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.GenerateInvoiceRequest true "Billing period"
// @Success 201 {object} domain.GenerateInvoiceResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "An invoice already covers this period"
// @Failure 500 {object} domain.ErrorResponse
// @Failure 503 {object} domain.ErrorResponse "Invoice counter unavailable"
// @Router /invoices [post]
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.invoiceService.Generate(r.Context(), &req)
	if err != nil {
		h.respondGenerateError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+resp.Invoice.InvoiceNumber)
	respondJSON(w, http.StatusCreated, resp)
}

// respondGenerateError maps the invoice workflow sentinels onto HTTP
// statuses. Shared by Generate and Regenerate.
func (h *InvoiceHandler) respondGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Project not found",
		})
	case errors.Is(err, service.ErrDuplicateInvoice):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error:   "Conflict",
			Message: "An invoice already exists for this project and period",
		})
	case errors.Is(err, service.ErrCounterUnavailable):
		h.logger.Error("invoice counter unavailable", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, domain.ErrorResponse{
			Error:   "Service Unavailable",
			Message: "Invoice numbering is unavailable, no invoice was created",
		})
	case errors.Is(err, service.ErrPDFGeneration):
		h.logger.Error("invoice pdf generation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to render the invoice PDF",
		})
	case errors.Is(err, service.ErrArtifactUpload):
		h.logger.Error("invoice pdf upload failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to store the invoice PDF, no invoice was created",
		})
	case errors.Is(err, service.ErrMetadataPersist):
		h.logger.Error("invoice record persist failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "The invoice PDF was stored but the invoice record could not be saved",
		})
	default:
		h.logger.Error("failed to generate invoice", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to generate invoice",
		})
	}
}

// Regenerate godoc
// @Summary Regenerate invoice PDF
// @Description Re-render the PDF for an existing invoice with current time entries, overwriting the stored artifact. The invoice number and period never change and the counter is not touched.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param number path string true "Invoice number"
// @Param request body domain.RegenerateInvoiceRequest false "Regeneration options"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /invoices/{number}/regenerate [post]
func (h *InvoiceHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	// The body is optional, an empty body means default options
	var req domain.RegenerateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	invoice, err := h.invoiceService.Regenerate(r.Context(), number, req.IncludeBreakdown)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Invoice not found",
			})
			return
		}
		h.respondGenerateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Download godoc
// @Summary Download invoice PDF
// @Description Stream the stored PDF for an invoice
// @Tags Invoices
// @Produce application/pdf
// @Param number path string true "Invoice number"
// @Success 200 {file} binary "PDF document"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /invoices/{number}/download [get]
func (h *InvoiceHandler) Download(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	rc, filename, err := h.invoiceService.Download(r.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Invoice not found",
			})
			return
		}
		h.logger.Error("failed to download invoice", zap.Error(err), zap.String("number", number))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to download invoice",
		})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("streaming invoice pdf interrupted", zap.Error(err), zap.String("number", number))
	}
}
