package handler

import (
	"net/http"
	"time"

	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Get headline counts and per-financial-year hour and invoice totals
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} domain.DashboardSummaryDTO
// @Failure 500 {object} domain.ErrorResponse
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.Summary(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to build dashboard summary", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to build dashboard summary",
		})
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
