package handler

import (
	"net/http"
	"time"

	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/service"
	"go.uber.org/zap"
)

type BillingHandler struct {
	reminderService *service.ReminderService
	logger          *zap.Logger
}

func NewBillingHandler(reminderService *service.ReminderService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		reminderService: reminderService,
		logger:          logger,
	}
}

// Reminders godoc
// @Summary Billing reminders
// @Description Report which active projects are due for invoicing today and the next upcoming invoice date
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} domain.BillingReminderDTO
// @Failure 500 {object} domain.ErrorResponse
// @Router /billing/reminders [get]
func (h *BillingHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminderService.Reminders(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to build billing reminders", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to build billing reminders",
		})
		return
	}

	respondJSON(w, http.StatusOK, reminders)
}
