package xlsx_report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Summary"
	SheetRecords = "Records"
)

// RecordsHeader - заголовок листа Records
var RecordsHeader = []string{
	"Remote ID",
	"Tenant",
	"Tenant Source",
	"Match",
	"Outcome",
	"Local ID",
	"Reason",
}

var recordsColumnWidths = []float64{20, 30, 18, 14, 12, 38, 50}

// Build собирает книгу из отчета сверки. Вызывающий закрывает файл.
func Build(report *domain.ReconcileReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetRecords); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, report, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRecords(f, report.Results, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, report *domain.ReconcileReport, headerStyle int) error {
	rows := [][]interface{}{
		{"Run ID", report.RunID.String()},
		{"Started At", report.StartedAt.UTC().Format(time.RFC3339)},
		{"Finished At", report.FinishedAt.UTC().Format(time.RFC3339)},
		{"Fail Fast", report.Options.FailFast},
		{"Dry Run", report.Options.DryRun},
		{"Created", report.Created},
		{"Updated", report.Updated},
		{"Skipped", report.Skipped},
		{"Failed", report.Failed},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle); err != nil {
		return fmt.Errorf("failed to set summary style: %w", err)
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(SheetSummary, "B", "B", 40)
}

func writeRecords(f *excelize.File, results []domain.RecordResult, headerStyle int) error {
	header := make([]interface{}, len(RecordsHeader))
	for i, h := range RecordsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetRecords, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(RecordsHeader))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(SheetRecords, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, res := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := []interface{}{
			res.RemoteID,
			res.TenantName,
			res.TenantSource,
			string(res.Match),
			string(res.Outcome),
			res.LocalID,
			res.Reason,
		}
		if err := f.SetSheetRow(SheetRecords, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i, width := range recordsColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetRecords, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if len(results) > 0 {
		if err := f.AutoFilter(SheetRecords, "A1:"+lastCol+fmt.Sprint(len(results)+1), nil); err != nil {
			return fmt.Errorf("failed to set auto filter: %w", err)
		}
	}
	return nil
}

// Write пишет книгу в w
func Write(w io.Writer, report *domain.ReconcileReport) error {
	f, err := Build(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile сохраняет отчет в файл .xlsx
func WriteFile(path string, report *domain.ReconcileReport) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}

	if err := Write(out, report); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
