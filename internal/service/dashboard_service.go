package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates the summary card and revenue chart data.
type DashboardService struct {
	projectRepo *repository.ProjectRepository
	entryRepo   *repository.TimeEntryRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	entryRepo *repository.TimeEntryRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		entryRepo:   entryRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (s *DashboardService) Summary(ctx context.Context, now time.Time) (*domain.DashboardSummaryDTO, error) {
	totalProjects, err := s.projectRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	activeProjects, err := s.projectRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active projects: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	entriesThisMonth, err := s.entryRepo.CountSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	totalInvoices, err := s.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	byYear, err := s.financialYearTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummaryDTO{
		TotalProjects:    totalProjects,
		ActiveProjects:   activeProjects,
		EntriesThisMonth: entriesThisMonth,
		TotalInvoices:    totalInvoices,
		ByFinancialYear:  byYear,
	}, nil
}

func (s *DashboardService) financialYearTotals(ctx context.Context) ([]domain.FinancialYearSummaryDTO, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	entries, err := s.entryRepo.List(ctx, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	yearByProject := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		yearByProject[p.ID] = p.FinancialYear
	}

	hours := make(map[string]decimal.Decimal)
	invoiced := make(map[string]decimal.Decimal)
	for _, e := range entries {
		year := yearByProject[e.ProjectID]
		hours[year] = hours[year].Add(e.Hours)
	}
	for _, inv := range invoices {
		year := yearByProject[inv.ProjectID]
		invoiced[year] = invoiced[year].Add(inv.TotalAmount)
	}

	years := make([]string, 0, len(hours))
	seen := make(map[string]bool)
	for year := range hours {
		seen[year] = true
		years = append(years, year)
	}
	for year := range invoiced {
		if !seen[year] {
			years = append(years, year)
		}
	}
	sort.Strings(years)

	summaries := make([]domain.FinancialYearSummaryDTO, 0, len(years))
	for _, year := range years {
		if year == "" {
			continue
		}
		summaries = append(summaries, domain.FinancialYearSummaryDTO{
			FinancialYear: year,
			TotalHours:    hours[year].String(),
			TotalInvoiced: invoiced[year].StringFixed(2),
		})
	}
	return summaries, nil
}
