package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db      *gorm.DB
	store   *memStorage
	svc     *InvoiceService
	project *domain.Project
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	db := newTestDB(t)
	client := seedClient(t, db)
	project := seedProject(t, db, client.ID)

	store := newMemStorage()
	log := testLogger()
	svc := NewInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewTimeEntryRepository(db),
		repository.NewProjectRepository(db),
		NewInvoiceNumberService(repository.NewInvoiceCounterRepository(db), log),
		store,
		nil,
		log,
	)
	return &invoiceFixture{db: db, store: store, svc: svc, project: project}
}

func (f *invoiceFixture) request() *domain.GenerateInvoiceRequest {
	return &domain.GenerateInvoiceRequest{
		ProjectID: f.project.ID,
		StartDate: "2025-03-01",
		EndDate:   "2025-03-14",
	}
}

func TestGenerateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 3.5, "Survey design")
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 4, "Analysis")
	// Outside the period, must not count
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 8, "Later work")

	resp, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, "SIS-0001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, "7.5", resp.Invoice.TotalHours)
	assert.Equal(t, "637.50", resp.Invoice.TotalAmount)
	assert.False(t, resp.CounterStale)

	// Artifact stored at the stable key
	key := f.project.ID.String() + "/SIS-0001.pdf"
	require.Contains(t, f.store.objects, key)
	assert.True(t, strings.HasPrefix(string(f.store.objects[key]), "%PDF"))
	assert.Equal(t, "mem://"+key, resp.Invoice.PDFURL)

	// Counter committed after persistence
	assert.Equal(t, 1, counterValue(t, f.db))
}

func TestGenerateInvoiceNoEntriesProducesZeroTotals(t *testing.T) {
	f := newInvoiceFixture(t)

	resp, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "0", resp.Invoice.TotalHours)
	assert.Equal(t, "0.00", resp.Invoice.TotalAmount)
}

func TestGenerateInvoiceDuplicatePeriod(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 2, "")

	_, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrDuplicateInvoice)

	// Second attempt reserved SIS-0002 but must not have committed it
	assert.Equal(t, 1, counterValue(t, f.db))
}

func TestGenerateInvoiceUploadFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	f.store.uploadErr = errors.New("blob service down")

	_, err := f.svc.Generate(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrArtifactUpload)

	// No record, no counter movement
	var count int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 0, counterValue(t, f.db))
}

func TestGenerateInvoiceCounterUnavailable(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 2, "")
	require.NoError(t, f.db.Delete(&domain.InvoiceCounter{}, domain.InvoiceCounterID).Error)

	_, err := f.svc.Generate(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrCounterUnavailable)

	// Workflow stopped before any side effect
	var count int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.store.objects)
}

func TestGenerateInvoiceCounterCommitFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 2, "")

	// Drop the counter row the moment the invoice record is created, so
	// reservation succeeds but the commit afterwards cannot
	err := f.db.Callback().Create().After("gorm:create").Register("drop_counter", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Model.(*domain.Invoice); ok {
			tx.Session(&gorm.Session{NewDB: true}).
				Delete(&domain.InvoiceCounter{}, domain.InvoiceCounterID)
		}
	})
	require.NoError(t, err)

	resp, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	// Invoice is durable, warning flags the stale counter
	assert.True(t, resp.CounterStale)
	assert.NotEmpty(t, resp.Warning)
	var count int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerateInvoiceUnknownProject(t *testing.T) {
	f := newInvoiceFixture(t)
	req := f.request()
	req.ProjectID = seedClient(t, f.db).ID // a uuid that is no project

	_, err := f.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateInvoiceInvalidDates(t *testing.T) {
	f := newInvoiceFixture(t)

	req := f.request()
	req.StartDate = "03/01/2025"
	_, err := f.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.request()
	req.EndDate = "2025-02-01"
	_, err = f.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegenerateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 3, "Initial")

	resp, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)
	number := resp.Invoice.InvoiceNumber
	key := f.project.ID.String() + "/" + number + ".pdf"
	originalArtifact := append([]byte(nil), f.store.objects[key]...)

	// More work lands inside the already invoiced period
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 2, "Follow-up")

	dto, err := f.svc.Regenerate(context.Background(), number, true)
	require.NoError(t, err)

	// Same number and period, refreshed totals and artifact
	assert.Equal(t, number, dto.InvoiceNumber)
	assert.Equal(t, "2025-03-01", dto.StartDate)
	assert.Equal(t, "2025-03-14", dto.EndDate)
	assert.Equal(t, "5", dto.TotalHours)
	assert.Equal(t, "425.00", dto.TotalAmount)
	assert.NotEqual(t, originalArtifact, f.store.objects[key])

	// Regeneration never touches the counter
	assert.Equal(t, 1, counterValue(t, f.db))
}

func TestRegenerateUnknownInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	_, err := f.svc.Regenerate(context.Background(), "SIS-9999", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 1, "")

	resp, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	rc, filename, err := f.svc.Download(context.Background(), resp.Invoice.InvoiceNumber)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, resp.Invoice.InvoiceNumber+".pdf", filename)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestListInvoicesFilters(t *testing.T) {
	f := newInvoiceFixture(t)
	seedEntry(t, f.db, f.project.ID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 1, "")
	_, err := f.svc.Generate(context.Background(), f.request())
	require.NoError(t, err)

	all, err := f.svc.List(context.Background(), nil, "")
	require.NoError(t, err)
	require.Len(t, all, 1)

	byYear, err := f.svc.List(context.Background(), nil, "2024-2025")
	require.NoError(t, err)
	assert.Len(t, byYear, 1)

	otherYear, err := f.svc.List(context.Background(), nil, "2023-2024")
	require.NoError(t, err)
	assert.Empty(t, otherYear)

	byProject, err := f.svc.List(context.Background(), &f.project.ID, "")
	require.NoError(t, err)
	assert.Len(t, byProject, 1)
}
