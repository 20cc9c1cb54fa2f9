// Package pdf renders invoice documents. The layout is fixed: A4
// portrait, millimetre units, issuer details compiled in.
package pdf

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Issuer constants printed on every invoice.
const (
	issuerName      = "Social Insight Solutions"
	issuerABN       = "ABN: 72 144 906 902"
	issuerPOBox     = "PO Box 635"
	issuerSuburb    = "Scarborough WA 6019"
	issuerEmail     = "Email: social.insight.solutions@gmail.com"
	paymentName     = "Account Name: Regine Horch"
	paymentTrade    = "Trading As: Social Insight Solutions"
	paymentBank     = "BSB: 067-873    Account: 1214 0872"
	gstNote         = "No GST has been charged. Social Insight Solutions is not currently registered for GST."
	thankYou        = "Thank you for the opportunity to work with you."
	acknowledgement = "I am here on unceded Whadjuk Noongar and Mooro Noongar Country. I respectfully acknowledge the Whadjuk and Mooro people of the Noongar Nation as the Traditional Custodians of the lands where I live, work and learn. I honour their continuing connection to culture, country, waters, and skies and recognise the scientific contributions made by First Nations people. I pay my respects to their Elders past, present and emerging leaders."
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	leftMargin   = 20.0
	bottomBuffer = 40.0
	dateFormat   = "02/01/2006"
)

// EntryLine is one time entry on the optional work breakdown.
type EntryLine struct {
	Date  time.Time
	Hours decimal.Decimal
	Notes string
}

// InvoiceParams carries everything the layout needs. Logo is the raw
// JPEG image; nil or undecodable bytes render the invoice without one.
type InvoiceParams struct {
	InvoiceNumber    string
	IssueDate        time.Time
	ProjectName      string
	HourlyRate       decimal.Decimal
	ClientName       string
	ClientAddress    string
	StartDate        time.Time
	EndDate          time.Time
	Entries          []EntryLine
	TotalHours       decimal.Decimal
	TotalAmount      decimal.Decimal
	IncludeBreakdown bool
	Logo             []byte
}

// BuildInvoice renders the invoice document and returns the PDF bytes.
func BuildInvoice(p InvoiceParams) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(150, 150, 150)
		footer := fmt.Sprintf("Page %d of {nb}", doc.PageNo())
		doc.Text(pageWidth/2-doc.GetStringWidth(footer)/2, pageHeight-10, footer)
	})
	doc.AddPage()

	// Core fonts are cp1252; project names and notes are free text, so
	// everything drawn must go through the translator or SplitText will
	// index past the 256-entry width table
	tr := doc.UnicodeTranslatorFromDescriptor("")
	text := func(x, y float64, s string) {
		doc.Text(x, y, tr(s))
	}
	textRight := func(y float64, s string) {
		enc := tr(s)
		doc.Text(pageWidth-leftMargin-doc.GetStringWidth(enc), y, enc)
	}

	y := 10.0

	// A logo that fails to decode must not take invoice generation down
	// with it; the slot is simply left empty
	if len(p.Logo) > 0 {
		if _, err := jpeg.DecodeConfig(bytes.NewReader(p.Logo)); err == nil {
			opts := gofpdf.ImageOptions{ImageType: "JPG"}
			doc.RegisterImageOptionsReader("logo", opts, bytes.NewReader(p.Logo))
			if doc.Ok() {
				doc.ImageOptions("logo", leftMargin, y, 50, 35, false, opts, 0, "")
			} else {
				doc.ClearError()
			}
		}
	}

	y += 40
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 16)
	textRight(y-30, "SERVICE INVOICE")
	doc.SetFont("Helvetica", "", 10)
	textRight(y-22, "Invoice Number: "+p.InvoiceNumber)
	textRight(y-16, "Invoice Date: "+p.IssueDate.Format(dateFormat))

	doc.SetFont("Helvetica", "B", 11)
	text(leftMargin, y, "Bill To:")
	textRight(y, issuerName)

	doc.SetFont("Helvetica", "", 11)
	text(leftMargin, y+6, orDash(p.ClientName))
	text(leftMargin, y+12, orDash(p.ClientAddress))

	for i, line := range []string{issuerABN, issuerPOBox, issuerSuburb, issuerEmail} {
		textRight(y+6+float64(i)*6, line)
	}

	y += 36
	doc.SetDrawColor(150, 150, 150)
	doc.Line(leftMargin, y, pageWidth-leftMargin, y)
	y += 6

	doc.SetFont("Helvetica", "B", 11)
	text(leftMargin, y, "Description")
	textRight(y, "Total")
	y += 6

	doc.SetFont("Helvetica", "", 10)
	text(leftMargin, y, fmt.Sprintf("%s — %d entries", p.ProjectName, len(p.Entries)))
	text(leftMargin, y+6, fmt.Sprintf("%s hours x $%s/hr", p.TotalHours.String(), p.HourlyRate.String()))
	text(leftMargin, y+12, fmt.Sprintf("Service Period: %s – %s",
		p.StartDate.Format(dateFormat), p.EndDate.Format(dateFormat)))
	textRight(y+6, "$"+p.TotalAmount.StringFixed(2))

	y += 20
	doc.SetDrawColor(0, 0, 0)
	doc.Line(leftMargin, y, pageWidth-leftMargin, y)
	y += 8
	doc.SetFont("Helvetica", "B", 12)
	text(leftMargin, y, "TOTAL")
	textRight(y, "$"+p.TotalAmount.StringFixed(2))
	y += 18

	if p.IncludeBreakdown && len(p.Entries) > 0 {
		doc.SetTextColor(50, 50, 50)
		doc.SetFont("Helvetica", "B", 10)
		text(leftMargin, y, "Work Breakdown:")
		y += 6

		doc.SetFont("Helvetica", "", 10)
		for _, entry := range p.Entries {
			notes := entry.Notes
			if notes == "" {
				notes = "No notes"
			}
			line := tr(fmt.Sprintf("%s — %s", entry.Date.Format(dateFormat), notes))
			wrapped := doc.SplitText(line, pageWidth-2*leftMargin-40)
			for i, part := range wrapped {
				if y > pageHeight-bottomBuffer {
					doc.AddPage()
					y = 20
					doc.SetFont("Helvetica", "B", 10)
					text(leftMargin, y, "Continued Work Breakdown:")
					y += 8
					doc.SetFont("Helvetica", "", 10)
				}
				doc.Text(leftMargin, y, part)
				if i == 0 {
					textRight(y, entry.Hours.String()+" hrs")
				}
				y += 6
			}
		}
		y += 6
	}

	if y > pageHeight-60 {
		doc.AddPage()
		y = 20
	}

	doc.SetFont("Helvetica", "I", 10)
	doc.SetTextColor(50, 50, 50)
	text(leftMargin, y, thankYou)
	y += 8
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(80, 80, 80)
	text(leftMargin, y, gstNote)
	y += 18

	doc.SetTextColor(50, 50, 50)
	doc.SetFont("Helvetica", "B", 11)
	text(leftMargin, y, "Payment Details:")
	y += 6

	doc.SetFont("Helvetica", "", 10)
	text(leftMargin, y, paymentName)
	text(leftMargin, y+6, paymentTrade)
	text(leftMargin, y+12, paymentBank)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(100, 100, 100)
	ackLines := doc.SplitText(tr(acknowledgement), pageWidth-2*leftMargin)
	for i, line := range ackLines {
		doc.Text(pageWidth/2-doc.GetStringWidth(line)/2, 260+float64(i)*5, line)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
