package xlsx_report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.ReconcileReport {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	report := domain.NewReconcileReport(domain.ReconcileOptions{FailFast: true}, started)
	report.FinishedAt = started.Add(2 * time.Second)
	report.Results = []domain.RecordResult{
		{RemoteID: "r-1", TenantName: "Ana Lopez", TenantSource: "tagged_user", Match: domain.MatchNone, Outcome: domain.OutcomeCreated, LocalID: "lc-1"},
		{RemoteID: "r-2", TenantName: "Luis Gil", TenantSource: "contract_field", Match: domain.MatchNone, Outcome: domain.OutcomeSkipped, Reason: "historical"},
		{RemoteID: "r-3", TenantName: "Eva Ruiz", TenantSource: "contract_field", Match: domain.MatchByTenantName, Outcome: domain.OutcomeFailed, LocalID: "lc-7", Reason: "db down"},
	}
	report.Tally()
	return report
}

func TestWrite_SummaryAndRecords(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetRecords}, f.GetSheetList())

	runID, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, report.RunID.String(), runID)

	created, err := f.GetCellValue(SheetSummary, "B6")
	require.NoError(t, err)
	assert.Equal(t, "1", created)

	failed, err := f.GetCellValue(SheetSummary, "B9")
	require.NoError(t, err)
	assert.Equal(t, "1", failed)

	rows, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, RecordsHeader, rows[0])
	assert.Equal(t, []string{"r-1", "Ana Lopez", "tagged_user", "none", "created", "lc-1"}, rows[1])
	assert.Equal(t, "db down", rows[3][6])
}

func TestWriteFile_EmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	report := domain.NewReconcileReport(domain.ReconcileOptions{DryRun: true}, time.Now())

	require.NoError(t, WriteFile(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	dryRun, err := f.GetCellValue(SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", dryRun)
}
