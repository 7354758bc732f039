package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/infrastructure/export"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

type linkingUploader struct {
	mockUploader
}

func (m *linkingUploader) DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error) {
	args := m.Called(ctx, storageKey)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func driftReport(tenantID uuid.UUID) *balance.DriftReport {
	return &balance.DriftReport{
		TenantID:         tenantID,
		CheckedAt:        time.Date(2026, 3, 14, 2, 0, 5, 0, time.UTC),
		CustomersChecked: 3,
		TotalDrift:       decimal.NewFromInt(40),
		Drifted: []balance.DriftResult{{
			CustomerCode: "C001",
			Stored:       decimal.NewFromInt(140),
			Computed:     decimal.NewFromInt(100),
			Difference:   decimal.NewFromInt(-40),
			Drifted:      true,
		}},
	}
}

func TestDriftReportArchive_ArchiveDriftReport(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads a readable workbook under the tenant's dated prefix", func(t *testing.T) {
		tenantID := uuid.New()
		uploader := new(mockUploader)
		wantKey := "drift-reports/" + tenantID.String() + "/2026/03/balance-drift-20260314-020005.xlsx"
		uploader.On("Upload", mock.Anything, wantKey, mock.MatchedBy(func(data []byte) bool {
			f, err := excelize.OpenReader(bytes.NewReader(data))
			if err != nil {
				return false
			}
			defer f.Close()
			code, _ := f.GetCellValue("Drift", "A2")
			return code == "C001"
		}), export.ContentTypeXLSX).Return(nil)

		key, err := NewDriftReportArchive(uploader, "drift-reports", nil).ArchiveDriftReport(ctx, driftReport(tenantID))
		require.NoError(t, err)
		assert.Equal(t, wantKey, key)
		uploader.AssertExpectations(t)
	})

	t.Run("upload failure is returned", func(t *testing.T) {
		uploader := new(mockUploader)
		uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

		key, err := NewDriftReportArchive(uploader, "r", nil).ArchiveDriftReport(ctx, driftReport(uuid.New()))
		require.Error(t, err)
		assert.Empty(t, key)
	})

	t.Run("logs a download link when the store can presign", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		uploader := new(linkingUploader)
		uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		uploader.On("DownloadURL", mock.Anything, mock.Anything).
			Return("http://minio/reports/x.xlsx", time.Now().Add(time.Minute), nil)

		_, err := NewDriftReportArchive(uploader, "r", zap.New(core)).ArchiveDriftReport(ctx, driftReport(uuid.New()))
		require.NoError(t, err)

		entries := logs.FilterMessage("Drift report archived").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "http://minio/reports/x.xlsx", entries[0].ContextMap()["download_url"])
	})

	t.Run("presign failure does not fail the archive", func(t *testing.T) {
		uploader := new(linkingUploader)
		uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		uploader.On("DownloadURL", mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("no signer"))

		key, err := NewDriftReportArchive(uploader, "r", nil).ArchiveDriftReport(ctx, driftReport(uuid.New()))
		require.NoError(t, err)
		assert.NotEmpty(t, key)
	})
}
