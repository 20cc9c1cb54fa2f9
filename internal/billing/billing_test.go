package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cyclePtr(c domain.BillingCycle) *domain.BillingCycle { return &c }

func datePtr(t time.Time) *time.Time { return &t }

func TestIsInvoiceDay(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		cycle domain.BillingCycle
		today time.Time
		want  bool
	}{
		{
			name:  "weekly fires on start date",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycleWeekly,
			today: date(2025, 3, 3),
			want:  true,
		},
		{
			name:  "weekly fires seven days later",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycleWeekly,
			today: date(2025, 3, 10),
			want:  true,
		},
		{
			name:  "weekly quiet in between",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycleWeekly,
			today: date(2025, 3, 8),
			want:  false,
		},
		{
			name:  "fortnightly fires at fourteen days",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycleFortnightly,
			today: date(2025, 3, 17),
			want:  true,
		},
		{
			name:  "fortnightly quiet at seven days",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycleFortnightly,
			today: date(2025, 3, 10),
			want:  false,
		},
		{
			name:  "monthly fires on same day of month",
			start: date(2025, 1, 15),
			cycle: domain.BillingCycleMonthly,
			today: date(2025, 4, 15),
			want:  true,
		},
		{
			name:  "monthly quiet on other days",
			start: date(2025, 1, 15),
			cycle: domain.BillingCycleMonthly,
			today: date(2025, 4, 14),
			want:  false,
		},
		{
			name:  "monthly start on 31st never fires in april",
			start: date(2025, 1, 31),
			cycle: domain.BillingCycleMonthly,
			today: date(2025, 4, 30),
			want:  false,
		},
		{
			name:  "future start date never fires",
			start: date(2025, 6, 1),
			cycle: domain.BillingCycleWeekly,
			today: date(2025, 3, 3),
			want:  false,
		},
		{
			name:  "unknown cycle never fires",
			start: date(2025, 3, 3),
			cycle: domain.BillingCycle("quarterly"),
			today: date(2025, 3, 3),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsInvoiceDay(tt.start, tt.cycle, tt.today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInvoiceDayIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 1, 15, 0, 0, time.UTC)
	assert.True(t, IsInvoiceDay(start, domain.BillingCycleWeekly, today))
}

func newProject(name string, start time.Time, cycle domain.BillingCycle, active bool) domain.Project {
	p := domain.Project{
		Name:             name,
		BillingStartDate: datePtr(start),
		BillingCycle:     cyclePtr(cycle),
		IsActive:         active,
	}
	p.ID = uuid.New()
	return p
}

func TestNextInvoiceDue(t *testing.T) {
	today := date(2025, 3, 10)

	t.Run("picks soonest future due date", func(t *testing.T) {
		projects := []domain.Project{
			newProject("alpha", date(2025, 1, 15), domain.BillingCycleMonthly, true),
			newProject("beta", date(2025, 3, 1), domain.BillingCycleFortnightly, true),
		}

		due := NextInvoiceDue(projects, today)
		require.NotNil(t, due)
		// beta: 1 Mar + 14d = 15 Mar; alpha: 15 Mar as well, beta listed later
		// but alpha comes first with an equal date, so alpha wins
		assert.Equal(t, "alpha", due.ProjectName)
		assert.Equal(t, date(2025, 3, 15), due.DueDate)
	})

	t.Run("skips inactive projects", func(t *testing.T) {
		projects := []domain.Project{
			newProject("dormant", date(2025, 3, 1), domain.BillingCycleFortnightly, false),
		}
		assert.Nil(t, NextInvoiceDue(projects, today))
	})

	t.Run("skips projects without billing fields", func(t *testing.T) {
		p := domain.Project{Name: "bare", IsActive: true}
		p.ID = uuid.New()
		assert.Nil(t, NextInvoiceDue([]domain.Project{p}, today))
	})

	t.Run("weekly projects never produce a future date", func(t *testing.T) {
		projects := []domain.Project{
			newProject("weekly", date(2025, 3, 3), domain.BillingCycleWeekly, true),
		}
		assert.Nil(t, NextInvoiceDue(projects, today))
	})

	t.Run("future start date is the due date", func(t *testing.T) {
		projects := []domain.Project{
			newProject("upcoming", date(2025, 4, 1), domain.BillingCycleMonthly, true),
		}
		due := NextInvoiceDue(projects, today)
		require.NotNil(t, due)
		assert.Equal(t, date(2025, 4, 1), due.DueDate)
	})

	t.Run("no projects", func(t *testing.T) {
		assert.Nil(t, NextInvoiceDue(nil, today))
	})
}

func TestDueToday(t *testing.T) {
	today := date(2025, 3, 17)
	projects := []domain.Project{
		newProject("fires", date(2025, 3, 3), domain.BillingCycleFortnightly, true),
		newProject("quiet", date(2025, 3, 4), domain.BillingCycleFortnightly, true),
		newProject("inactive", date(2025, 3, 3), domain.BillingCycleFortnightly, false),
	}

	due := DueToday(projects, today)
	require.Len(t, due, 1)
	assert.Equal(t, "fires", due[0].Name)
}
