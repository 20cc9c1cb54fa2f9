package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/social-insight/timesheet-api/internal/repository"
	"github.com/social-insight/timesheet-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStorage keeps uploaded artifacts in memory.
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, contentType string, data io.Reader) (string, int64, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", 0, err
	}
	f.objects[key] = b
	return "mem://" + key, int64(len(b)), nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type testAPI struct {
	db      *gorm.DB
	router  chi.Router
	project *domain.Project
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Client{},
		&domain.Project{},
		&domain.TimeEntry{},
		&domain.Invoice{},
		&domain.InvoiceCounter{},
	))
	require.NoError(t, db.Create(&domain.InvoiceCounter{ID: domain.InvoiceCounterID, Counter: 0}).Error)

	client := &domain.Client{Name: "Coastal Health Network", Address: "12 Marine Parade, Perth WA"}
	require.NoError(t, db.Create(client).Error)
	project := &domain.Project{
		Name:          "Community Survey Analysis",
		FinancialYear: "2024-2025",
		HourlyRate:    decimal.NewFromInt(85),
		ClientID:      client.ID,
		IsActive:      true,
	}
	require.NoError(t, db.Create(project).Error)

	log := zap.NewNop()
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewInvoiceCounterRepository(db)

	clientSvc := service.NewClientService(clientRepo, log)
	projectSvc := service.NewProjectService(projectRepo, clientRepo, log)
	timeEntrySvc := service.NewTimeEntryService(timeEntryRepo, projectRepo, invoiceRepo, log)
	numberSvc := service.NewInvoiceNumberService(counterRepo, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, timeEntryRepo, projectRepo, numberSvc, newFakeStorage(), nil, log)

	clientHandler := NewClientHandler(clientSvc, log)
	projectHandler := NewProjectHandler(projectSvc, log)
	timeEntryHandler := NewTimeEntryHandler(timeEntrySvc, log)
	invoiceHandler := NewInvoiceHandler(invoiceSvc, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", clientHandler.List)
			r.Post("/", clientHandler.Create)
			r.Get("/{id}", clientHandler.GetByID)
			r.Put("/{id}", clientHandler.Update)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)
			r.Get("/{id}", projectHandler.GetByID)
			r.Put("/{id}", projectHandler.Update)
		})
		r.Route("/timesheet", func(r chi.Router) {
			r.Get("/", timeEntryHandler.List)
			r.Post("/", timeEntryHandler.Create)
			r.Get("/export", timeEntryHandler.Export)
			r.Put("/{id}", timeEntryHandler.Update)
			r.Delete("/{id}", timeEntryHandler.Delete)
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", invoiceHandler.List)
			r.Post("/", invoiceHandler.Generate)
			r.Get("/{number}", invoiceHandler.GetByNumber)
			r.Post("/{number}/regenerate", invoiceHandler.Regenerate)
			r.Get("/{number}/download", invoiceHandler.Download)
		})
	})

	return &testAPI{db: db, router: r, project: project}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seedEntry(t *testing.T, date time.Time, hours float64) {
	t.Helper()
	require.NoError(t, a.db.Create(&domain.TimeEntry{
		ProjectID: a.project.ID,
		Date:      date,
		Hours:     decimal.NewFromFloat(hours),
	}).Error)
}

func TestCreateClientValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/clients", map[string]string{"name": "No Address"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "address")
}

func TestCreateClientSetsLocation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/clients", map[string]string{
		"name":    "New Client",
		"address": "1 Example St",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var dto domain.ClientDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "/api/v1/clients/"+dto.ID.String(), rec.Header().Get("Location"))
}

func TestGetProjectNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/projects/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateInvoiceEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.seedEntry(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 3.5)

	body := map[string]interface{}{
		"projectId": api.project.ID,
		"startDate": "2025-03-01",
		"endDate":   "2025-03-14",
	}

	rec := api.do(t, http.MethodPost, "/api/v1/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/invoices/SIS-0001", rec.Header().Get("Location"))

	var resp domain.GenerateInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SIS-0001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, "297.50", resp.Invoice.TotalAmount)
	assert.False(t, resp.CounterStale)

	// Same period again conflicts
	rec = api.do(t, http.MethodPost, "/api/v1/invoices", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateInvoiceUnknownProject(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"projectId": uuid.New(),
		"startDate": "2025-03-01",
		"endDate":   "2025-03-14",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateInvoiceBadDates(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"projectId": api.project.ID,
		"startDate": "03/01/2025",
		"endDate":   "2025-03-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadInvoiceEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.seedEntry(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 2)

	rec := api.do(t, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"projectId": api.project.ID,
		"startDate": "2025-03-01",
		"endDate":   "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/invoices/SIS-0001/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="SIS-0001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = api.do(t, http.MethodGet, "/api/v1/invoices/SIS-9999/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateWithoutBody(t *testing.T) {
	api := newTestAPI(t)
	api.seedEntry(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 2)

	rec := api.do(t, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"projectId": api.project.ID,
		"startDate": "2025-03-01",
		"endDate":   "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Empty body means default options
	rec = api.do(t, http.MethodPost, "/api/v1/invoices/SIS-0001/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto domain.InvoiceDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "SIS-0001", dto.InvoiceNumber)
}

func TestTimesheetExportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.seedEntry(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 3)

	rec := api.do(t, http.MethodGet, "/api/v1/timesheet/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sis-timesheet.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Date,Project,FinancialYear,Hours,Notes\n"))

	rec = api.do(t, http.MethodGet, "/api/v1/timesheet/export?projectId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTimeEntryEndpoint(t *testing.T) {
	api := newTestAPI(t)

	entry := &domain.TimeEntry{
		ProjectID: api.project.ID,
		Date:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.NewFromInt(1),
	}
	require.NoError(t, api.db.Create(entry).Error)

	rec := api.do(t, http.MethodDelete, "/api/v1/timesheet/"+entry.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/timesheet/"+entry.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
