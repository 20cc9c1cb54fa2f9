package repository

import (
	"context"
	"fmt"

	"github.com/social-insight/timesheet-api/internal/domain"
	"gorm.io/gorm"
)

// InvoiceCounterRepository handles the singleton invoice counter row.
//
// Unlike a sequence that increments on read, the counter here is read
// and written in two separate steps: Current during reservation, Set
// after the invoice is durably stored. Two generations racing between
// those steps can observe the same value; a single-operator deployment
// never runs them concurrently, and the unique index on invoice_number
// rejects the collision if it ever happens.
type InvoiceCounterRepository struct {
	db *gorm.DB
}

func NewInvoiceCounterRepository(db *gorm.DB) *InvoiceCounterRepository {
	return &InvoiceCounterRepository{db: db}
}

// Current returns the last committed counter value.
func (r *InvoiceCounterRepository) Current(ctx context.Context) (int, error) {
	var counter domain.InvoiceCounter
	err := r.db.WithContext(ctx).
		Where("id = ?", domain.InvoiceCounterID).
		First(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read invoice counter: %w", err)
	}
	return counter.Counter, nil
}

// Set overwrites the counter with the given value.
func (r *InvoiceCounterRepository) Set(ctx context.Context, value int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.InvoiceCounter{}).
		Where("id = ?", domain.InvoiceCounterID).
		Update("counter", value)
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invoice counter row %d not found", domain.InvoiceCounterID)
	}
	return nil
}
