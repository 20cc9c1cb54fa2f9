package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/mapper"
	"github.com/social-insight/timesheet-api/internal/pdf"
	"github.com/social-insight/timesheet-api/internal/repository"
	"github.com/social-insight/timesheet-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService orchestrates invoice generation: number reservation,
// duplicate check, document rendering, artifact upload, metadata
// persistence and finally the counter commit. Each step failure maps to
// its own sentinel so handlers can tell the operator exactly how far
// the workflow got.
type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	entryRepo   *repository.TimeEntryRepository
	projectRepo *repository.ProjectRepository
	numberSvc   *InvoiceNumberService
	store       storage.Storage
	logo        []byte
	logger      *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	entryRepo *repository.TimeEntryRepository,
	projectRepo *repository.ProjectRepository,
	numberSvc *InvoiceNumberService,
	store storage.Storage,
	logo []byte,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		entryRepo:   entryRepo,
		projectRepo: projectRepo,
		numberSvc:   numberSvc,
		store:       store,
		logo:        logo,
		logger:      logger,
	}
}

// Generate runs the full invoice workflow for a project and service
// period. The counter is only advanced after the invoice record is
// stored; a commit failure does not fail the call but is reported via
// CounterStale so the operator knows the next number may collide.
func (s *InvoiceService) Generate(ctx context.Context, req *domain.GenerateInvoiceRequest) (*domain.GenerateInvoiceResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	// Step 1: reserve a number. Nothing is persisted yet, so a failure
	// anywhere below leaves no trace except possibly an orphaned blob.
	reserved, err := s.numberSvc.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: advisory duplicate check. The unique index on
	// (project_id, start_date, end_date) backs this up at insert time.
	exists, err := s.invoiceRepo.ExistsForPeriod(ctx, project.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	if exists {
		return nil, ErrDuplicateInvoice
	}

	// Step 3: snapshot the entries and compute totals once. The PDF and
	// the stored record always agree even if entries change mid-flight.
	entries, err := s.entryRepo.ListForPeriod(ctx, project.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	totalHours := decimal.Zero
	for _, e := range entries {
		totalHours = totalHours.Add(e.Hours)
	}
	totalAmount := totalHours.Mul(project.HourlyRate)

	// Step 4: render the document.
	artifact, err := s.render(project, reserved.Number, start, end, entries, totalHours, totalAmount, req.IncludeBreakdown)
	if err != nil {
		s.logger.Error("invoice pdf generation failed",
			zap.String("number", reserved.Number),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	// Step 5: upload the artifact at its stable key.
	key := artifactKey(project.ID, reserved.Number)
	url, size, err := s.store.Upload(ctx, key, "application/pdf", bytes.NewReader(artifact))
	if err != nil {
		s.logger.Error("invoice pdf upload failed",
			zap.String("number", reserved.Number),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrArtifactUpload, err)
	}

	// Step 6: persist the invoice record.
	invoice := &domain.Invoice{
		ProjectID:     project.ID,
		ClientID:      project.ClientID,
		InvoiceNumber: reserved.Number,
		StartDate:     start,
		EndDate:       end,
		TotalAmount:   totalAmount,
		TotalHours:    totalHours,
		PDFURL:        url,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateInvoice
		}
		s.logger.Error("invoice record save failed, pdf artifact is orphaned",
			zap.String("number", reserved.Number),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMetadataPersist, err)
	}

	s.logger.Info("invoice generated",
		zap.String("number", reserved.Number),
		zap.String("project", project.Name),
		zap.String("totalAmount", totalAmount.StringFixed(2)),
		zap.Int64("pdfSize", size))

	resp := &domain.GenerateInvoiceResponse{}

	// Step 7: commit the counter. The invoice is already durable, so a
	// failure here is a warning, not an error.
	if err := s.numberSvc.Commit(ctx, reserved.Next); err != nil {
		s.logger.Warn("invoice saved but counter commit failed, next generation may collide",
			zap.String("number", reserved.Number),
			zap.Int("next", reserved.Next),
			zap.Error(err))
		resp.CounterStale = true
		resp.Warning = "invoice saved but the number counter was not advanced"
	}

	invoice.Project = project
	invoice.Client = project.Client
	resp.Invoice = mapper.ToInvoiceDTO(invoice)
	return resp, nil
}

// Regenerate rebuilds an existing invoice's PDF from the current time
// entries for its stored project and period, overwriting the artifact
// and updating the totals. Number and period never change.
func (s *InvoiceService) Regenerate(ctx context.Context, invoiceNumber string, includeBreakdown bool) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	project, err := s.projectRepo.GetByID(ctx, invoice.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	entries, err := s.entryRepo.ListForPeriod(ctx, project.ID, invoice.StartDate, invoice.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	totalHours := decimal.Zero
	for _, e := range entries {
		totalHours = totalHours.Add(e.Hours)
	}
	totalAmount := totalHours.Mul(project.HourlyRate)

	artifact, err := s.render(project, invoice.InvoiceNumber, invoice.StartDate, invoice.EndDate, entries, totalHours, totalAmount, includeBreakdown)
	if err != nil {
		s.logger.Error("invoice pdf regeneration failed",
			zap.String("number", invoice.InvoiceNumber),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	key := artifactKey(project.ID, invoice.InvoiceNumber)
	url, _, err := s.store.Upload(ctx, key, "application/pdf", bytes.NewReader(artifact))
	if err != nil {
		s.logger.Error("invoice pdf overwrite failed",
			zap.String("number", invoice.InvoiceNumber),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrArtifactUpload, err)
	}

	invoice.TotalHours = totalHours
	invoice.TotalAmount = totalAmount
	invoice.PDFURL = url
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataPersist, err)
	}

	s.logger.Info("invoice regenerated",
		zap.String("number", invoice.InvoiceNumber),
		zap.String("totalAmount", totalAmount.StringFixed(2)))

	invoice.Project = project
	invoice.Client = project.Client
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

func (s *InvoiceService) GetByNumber(ctx context.Context, invoiceNumber string) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

func (s *InvoiceService) List(ctx context.Context, projectID *uuid.UUID, financialYear string) ([]domain.InvoiceDTO, error) {
	invoices, err := s.invoiceRepo.List(ctx, projectID, financialYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i])
	}
	return dtos, nil
}

// Download streams the stored PDF artifact for an invoice.
func (s *InvoiceService) Download(ctx context.Context, invoiceNumber string) (io.ReadCloser, string, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get invoice: %w", err)
	}

	rc, err := s.store.Download(ctx, artifactKey(invoice.ProjectID, invoice.InvoiceNumber))
	if err != nil {
		return nil, "", fmt.Errorf("failed to download invoice pdf: %w", err)
	}
	return rc, invoice.InvoiceNumber + ".pdf", nil
}

func (s *InvoiceService) render(
	project *domain.Project,
	number string,
	start, end time.Time,
	entries []domain.TimeEntry,
	totalHours, totalAmount decimal.Decimal,
	includeBreakdown bool,
) ([]byte, error) {
	lines := make([]pdf.EntryLine, len(entries))
	for i, e := range entries {
		lines[i] = pdf.EntryLine{Date: e.Date, Hours: e.Hours, Notes: e.Notes}
	}

	clientName := ""
	clientAddress := ""
	if project.Client != nil {
		clientName = project.Client.Name
		clientAddress = project.Client.Address
	}

	return pdf.BuildInvoice(pdf.InvoiceParams{
		InvoiceNumber:    number,
		IssueDate:        time.Now().UTC(),
		ProjectName:      project.Name,
		HourlyRate:       project.HourlyRate,
		ClientName:       clientName,
		ClientAddress:    clientAddress,
		StartDate:        start,
		EndDate:          end,
		Entries:          lines,
		TotalHours:       totalHours,
		TotalAmount:      totalAmount,
		IncludeBreakdown: includeBreakdown,
		Logo:             s.logo,
	})
}

// artifactKey is the stable storage path an invoice PDF lives at.
func artifactKey(projectID uuid.UUID, invoiceNumber string) string {
	return fmt.Sprintf("%s/%s.pdf", projectID, invoiceNumber)
}
