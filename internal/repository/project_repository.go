package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Client").Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Preload("Client").Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// ListWithBilling returns active projects that have both billing fields
// set, i.e. the ones that participate in invoice reminders.
func (r *ProjectRepository) ListWithBilling(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND billing_start_date IS NOT NULL AND billing_cycle IS NOT NULL", true).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&count).Error
	return int(count), err
}

func (r *ProjectRepository) CountActive(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Where("is_active = ?", true).Count(&count).Error
	return int(count), err
}
