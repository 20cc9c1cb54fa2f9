package jobs

import (
	"context"
	"time"

	"github.com/social-insight/timesheet-api/internal/domain"
	"go.uber.org/zap"
)

// BillingReminderJobName is the name of the daily billing reminder job
const BillingReminderJobName = "billing_reminder"

// DefaultReminderTimeout bounds a single reminder run
const DefaultReminderTimeout = 30 * time.Second

// ReminderService defines the interface for computing billing reminders.
// This interface allows the job to call the service without importing the
// service package directly.
type ReminderService interface {
	// Reminders reports which active projects are due for invoicing on the
	// given day and the next upcoming invoice date.
	Reminders(ctx context.Context, today time.Time) (*domain.BillingReminderDTO, error)
}

// BillingReminderJob logs which projects are due for invoicing. It is the
// scheduled counterpart of the reminders endpoint, so a day's due invoices
// show up in the logs even when nobody opens the dashboard.
type BillingReminderJob struct {
	reminderService ReminderService
	logger          *zap.Logger
	timeout         time.Duration
}

// NewBillingReminderJob creates a new billing reminder job.
func NewBillingReminderJob(reminderService ReminderService, logger *zap.Logger, timeout time.Duration) *BillingReminderJob {
	return &BillingReminderJob{
		reminderService: reminderService,
		logger:          logger,
		timeout:         timeout,
	}
}

// Run executes the billing reminder job.
// This is called by the scheduler according to the cron expression.
func (j *BillingReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	today := time.Now().UTC()
	reminders, err := j.reminderService.Reminders(ctx, today)
	if err != nil {
		j.logger.Error("billing reminder job failed", zap.Error(err))
		return
	}

	if !reminders.InvoicesDueToday {
		if reminders.NextDue != nil {
			j.logger.Info("no invoices due today",
				zap.String("next_due_project", reminders.NextDue.ProjectName),
				zap.String("next_due_date", reminders.NextDue.DueDate))
		} else {
			j.logger.Info("no invoices due today")
		}
		return
	}

	for _, p := range reminders.DueProjects {
		j.logger.Info("invoice due today",
			zap.String("project_id", p.ProjectID.String()),
			zap.String("project_name", p.ProjectName))
	}
}

// RegisterBillingReminderJob registers the billing reminder job with the scheduler.
// The cronExpr should be a valid cron expression with seconds field
// (e.g., "0 0 6 * * *" for 06:00 daily).
func RegisterBillingReminderJob(scheduler *Scheduler, reminderService ReminderService, logger *zap.Logger, cronExpr string) error {
	job := NewBillingReminderJob(reminderService, logger, DefaultReminderTimeout)
	return scheduler.AddJob(BillingReminderJobName, cronExpr, job.Run)
}
