package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBillingProject(t *testing.T, db *gorm.DB, name string, start time.Time, cycle domain.BillingCycle, active bool) *domain.Project {
	t.Helper()
	client := seedClient(t, db)
	project := &domain.Project{
		Name:             name,
		FinancialYear:    "2024-2025",
		HourlyRate:       decimal.NewFromInt(85),
		ClientID:         client.ID,
		BillingStartDate: &start,
		BillingCycle:     &cycle,
		IsActive:         active,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func TestReminders(t *testing.T) {
	db := newTestDB(t)
	svc := NewReminderService(repository.NewProjectRepository(db), testLogger())
	today := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

	// Fires today: 3 Mar + 14 days
	seedBillingProject(t, db, "due-now", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), domain.BillingCycleFortnightly, true)
	// Next due 1 Apr
	seedBillingProject(t, db, "due-next", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), domain.BillingCycleMonthly, true)
	// Inactive projects never remind
	seedBillingProject(t, db, "dormant", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), domain.BillingCycleFortnightly, false)

	dto, err := svc.Reminders(context.Background(), today)
	require.NoError(t, err)

	assert.True(t, dto.InvoicesDueToday)
	require.Len(t, dto.DueProjects, 1)
	assert.Equal(t, "due-now", dto.DueProjects[0].ProjectName)

	// due-now bills again on 31 Mar, before due-next's 1 Apr
	require.NotNil(t, dto.NextDue)
	assert.Equal(t, "due-now", dto.NextDue.ProjectName)
	assert.Equal(t, "2025-03-31", dto.NextDue.DueDate)
}

func TestRemindersNoBillingProjects(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	seedProject(t, db, client.ID) // no billing fields

	svc := NewReminderService(repository.NewProjectRepository(db), testLogger())
	dto, err := svc.Reminders(context.Background(), time.Now())
	require.NoError(t, err)

	assert.False(t, dto.InvoicesDueToday)
	assert.Empty(t, dto.DueProjects)
	assert.Nil(t, dto.NextDue)
}
