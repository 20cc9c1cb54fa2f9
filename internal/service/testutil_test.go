package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/social-insight/timesheet-api/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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

	return db
}

func seedClient(t *testing.T, db *gorm.DB) *domain.Client {
	t.Helper()
	client := &domain.Client{
		Name:    "Coastal Health Network",
		Address: "12 Marine Parade, Perth WA",
		Email:   "accounts@coastalhealth.example",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedProject(t *testing.T, db *gorm.DB, clientID uuid.UUID) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:          "Community Survey Analysis",
		FinancialYear: "2024-2025",
		HourlyRate:    decimal.NewFromInt(85),
		ClientID:      clientID,
		IsActive:      true,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedEntry(t *testing.T, db *gorm.DB, projectID uuid.UUID, date time.Time, hours float64, notes string) *domain.TimeEntry {
	t.Helper()
	entry := &domain.TimeEntry{
		ProjectID: projectID,
		Date:      date,
		Hours:     decimal.NewFromFloat(hours),
		Notes:     notes,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func counterValue(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var counter domain.InvoiceCounter
	require.NoError(t, db.First(&counter, domain.InvoiceCounterID).Error)
	return counter.Counter
}

// memStorage keeps uploaded artifacts in memory.
type memStorage struct {
	objects   map[string][]byte
	uploadErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(ctx context.Context, key string, contentType string, data io.Reader) (string, int64, error) {
	if m.uploadErr != nil {
		return "", 0, m.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", 0, err
	}
	m.objects[key] = b
	return "mem://" + key, int64(len(b)), nil
}

func (m *memStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
