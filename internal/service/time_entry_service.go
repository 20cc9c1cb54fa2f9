package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/mapper"
	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TimeEntryService struct {
	entryRepo   *repository.TimeEntryRepository
	projectRepo *repository.ProjectRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewTimeEntryService(
	entryRepo *repository.TimeEntryRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *TimeEntryService {
	return &TimeEntryService{
		entryRepo:   entryRepo,
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (s *TimeEntryService) Create(ctx context.Context, req *domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Hours.IsNegative() {
		return nil, fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", ErrInvalidInput, req.ProjectID)
		}
		return nil, fmt.Errorf("failed to check project: %w", err)
	}

	entry := &domain.TimeEntry{
		ProjectID: req.ProjectID,
		Date:      date,
		Hours:     req.Hours,
		Notes:     req.Notes,
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	created, err := s.entryRepo.GetByID(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload time entry: %w", err)
	}

	index, err := s.invoicedIndex(ctx)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToTimeEntryDTO(created, index.covers(created))
	return &dto, nil
}

func (s *TimeEntryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Hours.IsNegative() {
		return nil, fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}

	entry.ProjectID = req.ProjectID
	entry.Date = date
	entry.Hours = req.Hours
	entry.Notes = req.Notes

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	updated, err := s.entryRepo.GetByID(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload time entry: %w", err)
	}

	index, err := s.invoicedIndex(ctx)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToTimeEntryDTO(updated, index.covers(updated))
	return &dto, nil
}

func (s *TimeEntryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.entryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get time entry: %w", err)
	}
	if err := s.entryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	return nil
}

// List returns entries date ascending, each carrying a derived invoiced
// flag. The invoice period index is built once per call rather than per
// entry.
func (s *TimeEntryService) List(ctx context.Context, projectID *uuid.UUID, financialYear string) ([]domain.TimeEntryDTO, error) {
	entries, err := s.entryRepo.List(ctx, projectID, financialYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	index, err := s.invoicedIndex(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.TimeEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToTimeEntryDTO(&entries[i], index.covers(&entries[i]))
	}
	return dtos, nil
}

// ExportCSV renders the filtered entries as CSV. Header and row order
// match the timesheet listing; field values are joined verbatim, so
// notes containing commas shift columns (known limitation of the
// original export format).
func (s *TimeEntryService) ExportCSV(ctx context.Context, projectID *uuid.UUID, financialYear string) (string, error) {
	entries, err := s.entryRepo.List(ctx, projectID, financialYear)
	if err != nil {
		return "", fmt.Errorf("failed to list time entries: %w", err)
	}

	var b strings.Builder
	b.WriteString("Date,Project,FinancialYear,Hours,Notes\n")
	for i := range entries {
		e := &entries[i]
		projectName := ""
		year := ""
		if e.Project != nil {
			projectName = e.Project.Name
			year = e.Project.FinancialYear
		}
		row := []string{
			e.Date.Format("2006-01-02"),
			projectName,
			year,
			e.Hours.String(),
			e.Notes,
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// periodIndex maps project ids to their invoiced date ranges.
type periodIndex map[uuid.UUID][]datePeriod

type datePeriod struct {
	start time.Time
	end   time.Time
}

func (idx periodIndex) covers(entry *domain.TimeEntry) bool {
	for _, p := range idx[entry.ProjectID] {
		if !entry.Date.Before(p.start) && !entry.Date.After(p.end) {
			return true
		}
	}
	return false
}

func (s *TimeEntryService) invoicedIndex(ctx context.Context) (periodIndex, error) {
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice periods: %w", err)
	}

	index := make(periodIndex, len(invoices))
	for _, inv := range invoices {
		index[inv.ProjectID] = append(index[inv.ProjectID], datePeriod{
			start: inv.StartDate,
			end:   inv.EndDate,
		})
	}
	return index, nil
}
