// Package billing implements the invoice scheduling rules: whether a
// project bills today and which project bills next.
package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/social-insight/timesheet-api/internal/domain"
)

// DueProject is the next project due for invoicing.
type DueProject struct {
	ProjectID   uuid.UUID
	ProjectName string
	DueDate     time.Time
}

// IsInvoiceDay reports whether a project with the given billing start
// date and cycle should be invoiced today.
//
// Weekly and fortnightly cycles fire when the whole-day distance from
// the start date divides evenly; monthly fires on the same day of the
// month as the start date, so a start on the 31st never fires in
// shorter months.
func IsInvoiceDay(startDate time.Time, cycle domain.BillingCycle, today time.Time) bool {
	start := truncateToDay(startDate)
	now := truncateToDay(today)

	diffInDays := int(now.Sub(start).Hours() / 24)
	if diffInDays < 0 {
		return false // start date is in the future
	}

	switch cycle {
	case domain.BillingCycleWeekly:
		return diffInDays%7 == 0
	case domain.BillingCycleFortnightly:
		return diffInDays%14 == 0
	case domain.BillingCycleMonthly:
		return now.Day() == start.Day()
	default:
		return false
	}
}

// NextInvoiceDue returns the active project whose next billing date is
// soonest, considering only dates strictly after today. Returns nil when
// no project qualifies.
//
// Only monthly and fortnightly cycles are advanced; a weekly project's
// date stays at its start and is filtered out once that date has passed.
func NextInvoiceDue(projects []domain.Project, today time.Time) *DueProject {
	now := truncateToDay(today)

	var next *DueProject
	for _, p := range projects {
		if !p.IsActive || p.BillingStartDate == nil || p.BillingCycle == nil {
			continue
		}
		due := nextCycleDate(truncateToDay(*p.BillingStartDate), *p.BillingCycle, now)
		if !due.After(now) {
			continue
		}
		if next == nil || due.Before(next.DueDate) {
			next = &DueProject{ProjectID: p.ID, ProjectName: p.Name, DueDate: due}
		}
	}
	return next
}

// DueToday returns the projects that bill today.
func DueToday(projects []domain.Project, today time.Time) []domain.Project {
	var due []domain.Project
	for _, p := range projects {
		if !p.IsActive || p.BillingStartDate == nil || p.BillingCycle == nil {
			continue
		}
		if IsInvoiceDay(*p.BillingStartDate, *p.BillingCycle, today) {
			due = append(due, p)
		}
	}
	return due
}

func nextCycleDate(start time.Time, cycle domain.BillingCycle, from time.Time) time.Time {
	next := start
	for !next.After(from) {
		switch cycle {
		case domain.BillingCycleMonthly:
			next = next.AddDate(0, 1, 0)
		case domain.BillingCycleFortnightly:
			next = next.AddDate(0, 0, 14)
		default:
			return next
		}
	}
	return next
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
