// Package export renders reconciliation reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet = "Summary"
	driftSheet   = "Drift"
)

var driftHeadings = []string{
	"Customer Code", "Customer Name", "Stored Balance", "Computed Balance", "Difference",
	"Total Sales", "Total Payments", "Total Returns", "Refunds Paid", "Repaired",
}

// DriftFilename returns the attachment name for a tenant's drift report
func DriftFilename(report *balance.DriftReport) string {
	return fmt.Sprintf("balance-drift-%s.xlsx", report.CheckedAt.Format("20060102-150405"))
}

// WriteDriftReport writes the report as an XLSX workbook with a summary sheet
// and one row per drifted customer
func WriteDriftReport(w io.Writer, report *balance.DriftReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, report); err != nil {
		return err
	}

	idx, err := f.NewSheet(driftSheet)
	if err != nil {
		return err
	}
	if err := writeDriftRows(f, report); err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report *balance.DriftReport) error {
	rows := [][]any{
		{"Tenant", report.TenantID.String()},
		{"Checked At", report.CheckedAt.UTC().Format(time.RFC3339)},
		{"Customers Checked", report.CustomersChecked},
		{"Customers Drifted", len(report.Drifted)},
		{"Total Drift", report.TotalDrift.InexactFloat64()},
		{"Repaired", report.Repaired},
		{"Repair Failures", len(report.Failures)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 20)
}

func writeDriftRows(f *excelize.File, report *balance.DriftReport) error {
	if err := f.SetSheetRow(driftSheet, "A1", &driftHeadings); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(driftSheet, 1, 1, bold); err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	for i, d := range report.Drifted {
		rowNo := i + 2
		values := []any{
			d.CustomerCode,
			d.CustomerName,
			d.Stored.InexactFloat64(),
			d.Computed.InexactFloat64(),
			d.Difference.InexactFloat64(),
			d.Totals.TotalSales.InexactFloat64(),
			d.Totals.TotalPayments.InexactFloat64(),
			d.Totals.TotalReturns.InexactFloat64(),
			d.Totals.RefundsPaid.InexactFloat64(),
			d.Repaired,
		}
		if err := f.SetSheetRow(driftSheet, "A"+fmt.Sprint(rowNo), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(driftSheet, "C"+fmt.Sprint(rowNo), "I"+fmt.Sprint(rowNo), money); err != nil {
			return err
		}
	}
	return f.SetColWidth(driftSheet, "A", "J", 16)
}
