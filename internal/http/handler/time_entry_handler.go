package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/service"
	"go.uber.org/zap"
)

type TimeEntryHandler struct {
	timeEntryService *service.TimeEntryService
	logger           *zap.Logger
}

func NewTimeEntryHandler(timeEntryService *service.TimeEntryService, logger *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		timeEntryService: timeEntryService,
		logger:           logger,
	}
}

// parseListFilters pulls the shared projectId / financialYear query
// filters used by both List and Export.
func parseListFilters(r *http.Request) (*uuid.UUID, string, error) {
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, "", errors.New("invalid projectId format")
		}
		projectID = &id
	}
	return projectID, r.URL.Query().Get("financialYear"), nil
}

// List godoc
// @Summary List time entries
// @Description Get time entries ordered by date, each flagged with whether an invoice already covers it
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param projectId query string false "Filter by project" format(uuid)
// @Param financialYear query string false "Filter by financial year, e.g. 2024-2025"
// @Success 200 {array} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /timesheet [get]
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, financialYear, err := parseListFilters(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
		return
	}

	entries, err := h.timeEntryService.List(r.Context(), projectID, financialYear)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list time entries",
		})
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Create godoc
// @Summary Create time entry
// @Description Record hours worked on a project for a given date
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param request body domain.CreateTimeEntryRequest true "Time entry data"
// @Success 201 {object} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /timesheet [post]
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTimeEntryRequest
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

	entry, err := h.timeEntryService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to create time entry", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create time entry",
		})
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// Update godoc
// @Summary Update time entry
// @Description Update an existing time entry
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param id path string true "Time entry ID" format(uuid)
// @Param request body domain.UpdateTimeEntryRequest true "Time entry data"
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /timesheet/{id} [put]
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid time entry ID format",
		})
		return
	}

	var req domain.UpdateTimeEntryRequest
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

	entry, err := h.timeEntryService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Time entry not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to update time entry", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update time entry",
		})
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete time entry
// @Description Remove a time entry
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param id path string true "Time entry ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /timesheet/{id} [delete]
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid time entry ID format",
		})
		return
	}

	if err := h.timeEntryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Time entry not found",
			})
			return
		}
		h.logger.Error("failed to delete time entry", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete time entry",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export godoc
// @Summary Export time entries as CSV
// @Description Download the timesheet as a CSV attachment, honoring the same filters as the list endpoint
// @Tags Timesheet
// @Produce text/csv
// @Param projectId query string false "Filter by project" format(uuid)
// @Param financialYear query string false "Filter by financial year"
// @Success 200 {string} string "CSV content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /timesheet/export [get]
func (h *TimeEntryHandler) Export(w http.ResponseWriter, r *http.Request) {
	projectID, financialYear, err := parseListFilters(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
		return
	}

	csv, err := h.timeEntryService.ExportCSV(r.Context(), projectID, financialYear)
	if err != nil {
		h.logger.Error("failed to export time entries", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to export time entries",
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sis-timesheet.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
