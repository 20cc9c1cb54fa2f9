package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the id client-side. Postgres also carries a
// gen_random_uuid() column default in the migration, but the tag must
// not name it or AutoMigrate emits DDL sqlite cannot parse.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BillingCycle represents how often a project is invoiced
type BillingCycle string

const (
	BillingCycleWeekly      BillingCycle = "weekly"
	BillingCycleFortnightly BillingCycle = "fortnightly"
	BillingCycleMonthly     BillingCycle = "monthly"
)

// IsValid reports whether the cycle is a known recurrence period
func (c BillingCycle) IsValid() bool {
	switch c {
	case BillingCycleWeekly, BillingCycleFortnightly, BillingCycleMonthly:
		return true
	}
	return false
}

// Client represents an organization invoices are issued to
type Client struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Address string `gorm:"type:varchar(500);not null"`
	Email   string `gorm:"type:varchar(255)"`

	Projects []Project `gorm:"foreignKey:ClientID"`
}

// Project represents a billable engagement for a client
type Project struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	FinancialYear string          `gorm:"type:varchar(20);not null;column:financial_year;index"`
	HourlyRate    decimal.Decimal `gorm:"type:numeric(10,2);not null;column:hourly_rate"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;column:client_id;index"`
	Client        *Client         `gorm:"foreignKey:ClientID"`
	Description   string          `gorm:"type:text"`

	// Reminder scheduling. A project only participates in billing
	// reminders when both BillingStartDate and BillingCycle are set.
	BillingStartDate *time.Time    `gorm:"type:date;column:billing_start_date"`
	BillingCycle     *BillingCycle `gorm:"type:varchar(20);column:billing_cycle"`
	IsActive         bool          `gorm:"not null;default:true;column:is_active"`

	TimeEntries []TimeEntry `gorm:"foreignKey:ProjectID"`
	Invoices    []Invoice   `gorm:"foreignKey:ProjectID"`
}

// TimeEntry represents hours worked on a project for one calendar day
type TimeEntry struct {
	BaseModel
	ProjectID uuid.UUID       `gorm:"type:uuid;not null;column:project_id;index"`
	Project   *Project        `gorm:"foreignKey:ProjectID"`
	Date      time.Time       `gorm:"type:date;not null;index"`
	Hours     decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	Notes     string          `gorm:"type:text"`
}

// TableName keeps the original table name for time entries
func (TimeEntry) TableName() string {
	return "times"
}

// Invoice represents a generated invoice and its stored PDF artifact.
// The invoice number and service period are immutable once the record
// exists; regeneration only rewrites the totals and the artifact.
type Invoice struct {
	BaseModel
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;column:project_id;index;uniqueIndex:idx_invoices_period"`
	Project       *Project        `gorm:"foreignKey:ProjectID"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;column:client_id;index"`
	Client        *Client         `gorm:"foreignKey:ClientID"`
	InvoiceNumber string          `gorm:"type:varchar(20);not null;uniqueIndex;column:invoice_number"`
	StartDate     time.Time       `gorm:"type:date;not null;column:start_date;index;uniqueIndex:idx_invoices_period"`
	EndDate       time.Time       `gorm:"type:date;not null;column:end_date;uniqueIndex:idx_invoices_period"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;column:total_amount"`
	TotalHours    decimal.Decimal `gorm:"type:numeric(8,2);not null;column:total_hours"`
	PDFURL        string          `gorm:"type:varchar(500);not null;column:pdf_url"`
}

// InvoiceCounterID is the fixed id of the singleton counter row
const InvoiceCounterID = 1

// InvoiceCounter is the singleton row invoice numbers are derived from.
// It is read when a number is reserved and only overwritten once the
// invoice is durably stored, so a failed generation leaves it untouched.
type InvoiceCounter struct {
	ID      int `gorm:"primaryKey"`
	Counter int `gorm:"not null"`
}

// TableName overrides the gorm pluralization
func (InvoiceCounter) TableName() string {
	return "invoice_counter"
}
