package service

import (
	"context"
	"fmt"
	"time"

	"github.com/social-insight/timesheet-api/internal/billing"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
)

// ReminderService evaluates the billing calendar: which projects bill
// today and which one bills next. Backs both the reminders endpoint and
// the scheduled reminder job.
type ReminderService struct {
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

func NewReminderService(projectRepo *repository.ProjectRepository, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

func (s *ReminderService) Reminders(ctx context.Context, today time.Time) (*domain.BillingReminderDTO, error) {
	projects, err := s.projectRepo.ListWithBilling(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing projects: %w", err)
	}

	dto := &domain.BillingReminderDTO{}

	for _, p := range billing.DueToday(projects, today) {
		dto.DueProjects = append(dto.DueProjects, domain.DueProjectDTO{
			ProjectID:   p.ID,
			ProjectName: p.Name,
		})
	}
	dto.InvoicesDueToday = len(dto.DueProjects) > 0

	if next := billing.NextInvoiceDue(projects, today); next != nil {
		dto.NextDue = &domain.NextInvoiceDTO{
			ProjectID:   next.ProjectID,
			ProjectName: next.ProjectName,
			DueDate:     next.DueDate.Format("2006-01-02"),
		}
	}

	return dto, nil
}
