package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"gorm.io/gorm"
)

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	err := r.db.WithContext(ctx).Preload("Project").Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TimeEntry{}, "id = ?", id).Error
}

// List returns entries ordered by date ascending, optionally filtered by
// project and by the owning project's financial year.
func (r *TimeEntryRepository) List(ctx context.Context, projectID *uuid.UUID, financialYear string) ([]domain.TimeEntry, error) {
	var entries []domain.TimeEntry

	query := r.db.WithContext(ctx).Model(&domain.TimeEntry{}).Preload("Project")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if financialYear != "" {
		query = query.Joins("JOIN projects ON projects.id = times.project_id").
			Where("projects.financial_year = ?", financialYear)
	}

	err := query.Order("date ASC").Find(&entries).Error
	return entries, err
}

// ListForPeriod returns a project's entries whose date falls inside the
// inclusive range. This is the snapshot invoices are computed from.
func (r *TimeEntryRepository) ListForPeriod(ctx context.Context, projectID uuid.UUID, start, end time.Time) ([]domain.TimeEntry, error) {
	var entries []domain.TimeEntry
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND date >= ? AND date <= ?", projectID, start, end).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *TimeEntryRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TimeEntry{}).Where("date >= ?", since).Count(&count).Error
	return int(count), err
}
