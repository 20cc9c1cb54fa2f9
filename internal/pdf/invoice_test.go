package pdf

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() InvoiceParams {
	return InvoiceParams{
		InvoiceNumber: "SIS-0042",
		IssueDate:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		ProjectName:   "Community Survey Analysis",
		HourlyRate:    decimal.NewFromInt(85),
		ClientName:    "Coastal Health Network",
		ClientAddress: "12 Marine Parade, Perth WA",
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Entries: []EntryLine{
			{Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Hours: decimal.NewFromFloat(3.5), Notes: "Survey design"},
			{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Hours: decimal.NewFromInt(4), Notes: ""},
		},
		TotalHours:  decimal.NewFromFloat(7.5),
		TotalAmount: decimal.NewFromFloat(637.50),
	}
}

func TestBuildInvoice(t *testing.T) {
	out, err := BuildInvoice(baseParams())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestBuildInvoiceWithBreakdown(t *testing.T) {
	params := baseParams()
	without, err := BuildInvoice(params)
	require.NoError(t, err)

	params.IncludeBreakdown = true
	with, err := BuildInvoice(params)
	require.NoError(t, err)

	assert.Greater(t, len(with), len(without))
}

func TestBuildInvoiceLongBreakdownPaginates(t *testing.T) {
	params := baseParams()
	params.IncludeBreakdown = true
	params.Entries = nil
	for i := 0; i < 80; i++ {
		params.Entries = append(params.Entries, EntryLine{
			Date:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Hours: decimal.NewFromInt(2),
			Notes: fmt.Sprintf("Session %d with extended notes about the analysis work performed that day", i+1),
		})
	}

	out, err := BuildInvoice(params)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Multiple page objects when the breakdown spills over; a single
	// page document has one /Page plus the /Pages tree node
	assert.Greater(t, strings.Count(string(out), "/Type /Page"), 2)
}

func TestBuildInvoiceNoEntries(t *testing.T) {
	params := baseParams()
	params.Entries = nil
	params.TotalHours = decimal.Zero
	params.TotalAmount = decimal.Zero
	params.IncludeBreakdown = true

	out, err := BuildInvoice(params)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestBuildInvoiceNonASCIINotes(t *testing.T) {
	params := baseParams()
	params.IncludeBreakdown = true
	params.ProjectName = "Café Précinct — Wellbeing Survey"
	params.Entries = []EntryLine{
		{Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Hours: decimal.NewFromInt(3), Notes: "Reviewed naïve estimates — flagged outliers for follow-up"},
		{Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Hours: decimal.NewFromInt(2), Notes: "Stakeholder débrief"},
	}

	out, err := BuildInvoice(params)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestBuildInvoiceIgnoresCorruptLogo(t *testing.T) {
	params := baseParams()
	params.Logo = []byte("not a jpeg")

	// Undecodable logo bytes are dropped and the invoice renders anyway
	out, err := BuildInvoice(params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
