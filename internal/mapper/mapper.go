package mapper

import (
	"github.com/social-insight/timesheet-api/internal/domain"
)

const (
	timestampFormat = "2006-01-02T15:04:05Z"
	dateFormat      = "2006-01-02"
)

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Address:   client.Address,
		Email:     client.Email,
		CreatedAt: client.CreatedAt.Format(timestampFormat),
		UpdatedAt: client.UpdatedAt.Format(timestampFormat),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:            project.ID,
		Name:          project.Name,
		FinancialYear: project.FinancialYear,
		HourlyRate:    project.HourlyRate.StringFixed(2),
		ClientID:      project.ClientID,
		Description:   project.Description,
		BillingCycle:  project.BillingCycle,
		IsActive:      project.IsActive,
		CreatedAt:     project.CreatedAt.Format(timestampFormat),
		UpdatedAt:     project.UpdatedAt.Format(timestampFormat),
	}

	if project.Client != nil {
		dto.ClientName = project.Client.Name
	}
	if project.BillingStartDate != nil {
		startDate := project.BillingStartDate.Format(dateFormat)
		dto.BillingStartDate = &startDate
	}

	return dto
}

// ToTimeEntryDTO converts TimeEntry to TimeEntryDTO. The invoiced flag
// is derived, not stored, so the caller supplies it.
func ToTimeEntryDTO(entry *domain.TimeEntry, invoiced bool) domain.TimeEntryDTO {
	dto := domain.TimeEntryDTO{
		ID:        entry.ID,
		ProjectID: entry.ProjectID,
		Date:      entry.Date.Format(dateFormat),
		Hours:     entry.Hours.String(),
		Notes:     entry.Notes,
		Invoiced:  invoiced,
		CreatedAt: entry.CreatedAt.Format(timestampFormat),
		UpdatedAt: entry.UpdatedAt.Format(timestampFormat),
	}

	if entry.Project != nil {
		dto.ProjectName = entry.Project.Name
	}

	return dto
}

// ToInvoiceDTO converts Invoice to InvoiceDTO
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	dto := domain.InvoiceDTO{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ProjectID:     invoice.ProjectID,
		ClientID:      invoice.ClientID,
		StartDate:     invoice.StartDate.Format(dateFormat),
		EndDate:       invoice.EndDate.Format(dateFormat),
		TotalAmount:   invoice.TotalAmount.StringFixed(2),
		TotalHours:    invoice.TotalHours.String(),
		PDFURL:        invoice.PDFURL,
		CreatedAt:     invoice.CreatedAt.Format(timestampFormat),
		UpdatedAt:     invoice.UpdatedAt.Format(timestampFormat),
	}

	if invoice.Project != nil {
		dto.ProjectName = invoice.Project.Name
	}
	if invoice.Client != nil {
		dto.ClientName = invoice.Client.Name
	}

	return dto
}
