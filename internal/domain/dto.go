package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API responses. Dates are rendered as YYYY-MM-DD, money and
// hours as decimal strings with two places.

type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Email     string    `json:"email,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type ProjectDTO struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	FinancialYear    string        `json:"financialYear"`
	HourlyRate       string        `json:"hourlyRate"`
	ClientID         uuid.UUID     `json:"clientId"`
	ClientName       string        `json:"clientName,omitempty"`
	Description      string        `json:"description,omitempty"`
	BillingStartDate *string       `json:"billingStartDate,omitempty"` // YYYY-MM-DD
	BillingCycle     *BillingCycle `json:"billingCycle,omitempty"`
	IsActive         bool          `json:"isActive"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

type TimeEntryDTO struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Hours       string    `json:"hours"`
	Notes       string    `json:"notes,omitempty"`
	Invoiced    bool      `json:"invoiced"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type InvoiceDTO struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	ProjectID     uuid.UUID `json:"projectId"`
	ProjectName   string    `json:"projectName,omitempty"`
	ClientID      uuid.UUID `json:"clientId"`
	ClientName    string    `json:"clientName,omitempty"`
	StartDate     string    `json:"startDate"` // YYYY-MM-DD
	EndDate       string    `json:"endDate"`   // YYYY-MM-DD
	TotalAmount   string    `json:"totalAmount"`
	TotalHours    string    `json:"totalHours"`
	PDFURL        string    `json:"pdfUrl"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

// GenerateInvoiceResponse wraps the stored invoice. CounterStale is set
// when the invoice was saved but the number counter could not be
// advanced afterwards, meaning the next generation may collide.
type GenerateInvoiceResponse struct {
	Invoice      InvoiceDTO `json:"invoice"`
	CounterStale bool       `json:"counterStale,omitempty"`
	Warning      string     `json:"warning,omitempty"`
}

// BillingReminderDTO is the dashboard reminder banner as an API payload
type BillingReminderDTO struct {
	InvoicesDueToday bool             `json:"invoicesDueToday"`
	DueProjects      []DueProjectDTO  `json:"dueProjects,omitempty"`
	NextDue          *NextInvoiceDTO  `json:"nextDue,omitempty"`
}

type DueProjectDTO struct {
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName"`
}

type NextInvoiceDTO struct {
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName"`
	DueDate     string    `json:"dueDate"` // YYYY-MM-DD
}

// DashboardSummaryDTO aggregates hours and billed amounts per financial
// year for the summary cards and revenue chart.
type DashboardSummaryDTO struct {
	TotalProjects    int                       `json:"totalProjects"`
	ActiveProjects   int                       `json:"activeProjects"`
	EntriesThisMonth int                       `json:"entriesThisMonth"`
	TotalInvoices    int                       `json:"totalInvoices"`
	ByFinancialYear  []FinancialYearSummaryDTO `json:"byFinancialYear"`
}

type FinancialYearSummaryDTO struct {
	FinancialYear string `json:"financialYear"`
	TotalHours    string `json:"totalHours"`
	TotalInvoiced string `json:"totalInvoiced"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Request DTOs

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"required,max=500"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type UpdateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"required,max=500"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type CreateProjectRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	FinancialYear    string          `json:"financialYear" validate:"required,max=20"`
	HourlyRate       decimal.Decimal `json:"hourlyRate" validate:"required"`
	ClientID         uuid.UUID       `json:"clientId" validate:"required"`
	Description      string          `json:"description,omitempty"`
	BillingStartDate *string         `json:"billingStartDate,omitempty"` // YYYY-MM-DD
	BillingCycle     *BillingCycle   `json:"billingCycle,omitempty"`
	IsActive         *bool           `json:"isActive,omitempty"`
}

type UpdateProjectRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	FinancialYear    string          `json:"financialYear" validate:"required,max=20"`
	HourlyRate       decimal.Decimal `json:"hourlyRate" validate:"required"`
	ClientID         uuid.UUID       `json:"clientId" validate:"required"`
	Description      string          `json:"description,omitempty"`
	BillingStartDate *string         `json:"billingStartDate,omitempty"`
	BillingCycle     *BillingCycle   `json:"billingCycle,omitempty"`
	IsActive         *bool           `json:"isActive,omitempty"`
}

type CreateTimeEntryRequest struct {
	ProjectID uuid.UUID       `json:"projectId" validate:"required"`
	Date      string          `json:"date" validate:"required"` // YYYY-MM-DD
	Hours     decimal.Decimal `json:"hours" validate:"required"`
	Notes     string          `json:"notes,omitempty"`
}

type UpdateTimeEntryRequest struct {
	ProjectID uuid.UUID       `json:"projectId" validate:"required"`
	Date      string          `json:"date" validate:"required"`
	Hours     decimal.Decimal `json:"hours" validate:"required"`
	Notes     string          `json:"notes,omitempty"`
}

type GenerateInvoiceRequest struct {
	ProjectID        uuid.UUID `json:"projectId" validate:"required"`
	StartDate        string    `json:"startDate" validate:"required"` // YYYY-MM-DD
	EndDate          string    `json:"endDate" validate:"required"`   // YYYY-MM-DD
	IncludeBreakdown bool      `json:"includeBreakdown,omitempty"`
}

type RegenerateInvoiceRequest struct {
	IncludeBreakdown bool `json:"includeBreakdown,omitempty"`
}
