package service

import (
	"context"
	"fmt"

	"github.com/social-insight/timesheet-api/internal/repository"
	"go.uber.org/zap"
)

// InvoiceNumberService hands out sequential SIS-NNNN invoice numbers.
//
// Reservation and commit are deliberately separate: Reserve only reads
// the counter and formats the next number, Commit overwrites the
// counter once the invoice is durably stored. A generation that fails
// midway therefore leaves the counter where it was and the number is
// reissued on the next attempt. Concurrent reservations can observe the
// same value; the unique index on invoice_number rejects the second
// insert if that ever happens.
type InvoiceNumberService struct {
	repo   *repository.InvoiceCounterRepository
	logger *zap.Logger
}

// ReservedNumber is a formatted invoice number plus the counter value
// to commit after the invoice is stored.
type ReservedNumber struct {
	Number string
	Next   int
}

// NewInvoiceNumberService creates a new InvoiceNumberService
func NewInvoiceNumberService(
	repo *repository.InvoiceCounterRepository,
	logger *zap.Logger,
) *InvoiceNumberService {
	return &InvoiceNumberService{
		repo:   repo,
		logger: logger,
	}
}

// Reserve computes the next invoice number without persisting anything.
// Format: SIS-NNNN (zero-padded to 4 digits, growing past 9999).
func (s *InvoiceNumberService) Reserve(ctx context.Context) (ReservedNumber, error) {
	current, err := s.repo.Current(ctx)
	if err != nil {
		s.logger.Error("failed to read invoice counter", zap.Error(err))
		return ReservedNumber{}, fmt.Errorf("%w: %v", ErrCounterUnavailable, err)
	}

	next := current + 1
	number := fmt.Sprintf("SIS-%04d", next)

	s.logger.Info("reserved invoice number",
		zap.String("number", number),
		zap.Int("counter", current),
		zap.Int("next", next))

	return ReservedNumber{Number: number, Next: next}, nil
}

// Commit advances the counter to the reserved value. Call only after
// the invoice record is durably stored.
func (s *InvoiceNumberService) Commit(ctx context.Context, next int) error {
	if err := s.repo.Set(ctx, next); err != nil {
		s.logger.Error("failed to commit invoice counter",
			zap.Int("next", next),
			zap.Error(err))
		return err
	}
	return nil
}
