package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Client").
		Where("invoice_number = ?", number).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ExistsForPeriod reports whether an invoice already covers the exact
// project and service period. Advisory only; the unique index on
// (project_id, start_date, end_date) is the real guard.
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, projectID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("project_id = ? AND start_date = ? AND end_date = ?", projectID, start, end).
		Count(&count).Error
	return count > 0, err
}

// List returns invoices newest period first, optionally filtered by
// project and by the owning project's financial year.
func (r *InvoiceRepository) List(ctx context.Context, projectID *uuid.UUID, financialYear string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice

	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Preload("Project").Preload("Client")
	if projectID != nil {
		query = query.Where("invoices.project_id = ?", *projectID)
	}
	if financialYear != "" {
		query = query.Joins("JOIN projects ON projects.id = invoices.project_id").
			Where("projects.financial_year = ?", financialYear)
	}

	err := query.Order("start_date DESC").Find(&invoices).Error
	return invoices, err
}

// ListAll returns every invoice, oldest period first. Timesheet
// listings build their invoiced-range index from this in one query.
func (r *InvoiceRepository) ListAll(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).Order("start_date ASC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).Count(&count).Error
	return int(count), err
}
