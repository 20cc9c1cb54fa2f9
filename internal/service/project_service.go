package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/mapper"
	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService struct {
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	logger      *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	clientRepo *repository.ClientRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		logger:      logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	// validator tags cannot compare decimal values, so the sign check
	// lives here
	if req.HourlyRate.IsNegative() {
		return nil, fmt.Errorf("%w: hourly rate must not be negative", ErrInvalidInput)
	}
	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrInvalidInput, req.ClientID)
		}
		return nil, fmt.Errorf("failed to check client: %w", err)
	}

	billingStart, cycle, err := parseBillingFields(req.BillingStartDate, req.BillingCycle)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:             req.Name,
		FinancialYear:    req.FinancialYear,
		HourlyRate:       req.HourlyRate,
		ClientID:         req.ClientID,
		Description:      req.Description,
		BillingStartDate: billingStart,
		BillingCycle:     cycle,
		IsActive:         true,
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	created, err := s.projectRepo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}

	dto := mapper.ToProjectDTO(created)
	return &dto, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	if req.HourlyRate.IsNegative() {
		return nil, fmt.Errorf("%w: hourly rate must not be negative", ErrInvalidInput)
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	billingStart, cycle, err := parseBillingFields(req.BillingStartDate, req.BillingCycle)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.FinancialYear = req.FinancialYear
	project.HourlyRate = req.HourlyRate
	project.ClientID = req.ClientID
	project.Description = req.Description
	project.BillingStartDate = billingStart
	project.BillingCycle = cycle
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	updated, err := s.projectRepo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}

	dto := mapper.ToProjectDTO(updated)
	return &dto, nil
}

func (s *ProjectService) List(ctx context.Context) ([]domain.ProjectDTO, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}
	return dtos, nil
}

func parseBillingFields(startDate *string, cycle *domain.BillingCycle) (*time.Time, *domain.BillingCycle, error) {
	if cycle != nil && !cycle.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown billing cycle %q", ErrInvalidInput, *cycle)
	}

	var start *time.Time
	if startDate != nil && *startDate != "" {
		parsed, err := parseDate(*startDate)
		if err != nil {
			return nil, nil, err
		}
		start = &parsed
	}

	return start, cycle, nil
}

// parseDate parses a YYYY-MM-DD string into a UTC date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return t.UTC(), nil
}
