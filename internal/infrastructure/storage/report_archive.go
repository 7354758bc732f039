package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/infrastructure/export"
	"go.uber.org/zap"
)

// Uploader writes one object
type Uploader interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// Linker issues time-limited download links for stored objects
type Linker interface {
	DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error)
}

// DriftReportArchive renders drift reports as XLSX and uploads them under
// <prefix>/<tenant>/<yyyy>/<mm>/<filename>
type DriftReportArchive struct {
	uploader Uploader
	prefix   string
	logger   *zap.Logger
}

// NewDriftReportArchive creates an archive writing through uploader
func NewDriftReportArchive(uploader Uploader, prefix string, logger *zap.Logger) *DriftReportArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriftReportArchive{uploader: uploader, prefix: prefix, logger: logger}
}

// ArchiveDriftReport uploads the report and returns its storage key
func (a *DriftReportArchive) ArchiveDriftReport(ctx context.Context, report *balance.DriftReport) (string, error) {
	var buf bytes.Buffer
	if err := export.WriteDriftReport(&buf, report); err != nil {
		return "", fmt.Errorf("failed to render drift report: %w", err)
	}

	key := a.key(report)
	if err := a.uploader.Upload(ctx, key, buf.Bytes(), export.ContentTypeXLSX); err != nil {
		return "", err
	}

	fields := []zap.Field{
		zap.String("tenant_id", report.TenantID.String()),
		zap.String("key", key),
		zap.Int("bytes", buf.Len()),
	}
	if linker, ok := a.uploader.(Linker); ok {
		link, expires, err := linker.DownloadURL(ctx, key)
		if err != nil {
			a.logger.Warn("Failed to presign drift report link", zap.String("key", key), zap.Error(err))
		} else {
			fields = append(fields, zap.String("download_url", link), zap.Time("link_expires_at", expires))
		}
	}
	a.logger.Info("Drift report archived", fields...)
	return key, nil
}

func (a *DriftReportArchive) key(report *balance.DriftReport) string {
	checked := report.CheckedAt
	if checked.IsZero() {
		checked = time.Now()
	}
	return path.Join(
		a.prefix,
		report.TenantID.String(),
		checked.UTC().Format("2006"),
		checked.UTC().Format("01"),
		export.DriftFilename(report),
	)
}
