package reports

import (
	"testing"
	"time"

	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	list := []models.Report{
		{ID: 1, ReporterID: 10, ReportedID: 20, SessionID: "s-1", Reason: "spam", CreatedAt: created},
		{ID: 2, ReporterID: 11, ReportedID: 20, SessionID: "s-2", Reason: "rude", CreatedAt: created},
	}
	ranking := []repositories.ReportedCount{{ReportedID: 20, Count: 2}}

	buf, err := Workbook(list, ranking, created)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReports, SheetMostReported}, f.GetSheetList())

	rows, err := f.GetRows(SheetReports)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Created (UTC)", "Reporter", "Reported", "Session", "Reason"}, rows[0])
	assert.Equal(t, []string{"1", "2026-02-03 04:05:06", "10", "20", "s-1", "spam"}, rows[1])

	rank, err := f.GetRows(SheetMostReported)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Reported", "Reports"}, {"20", "2"}}, rank)
}

func TestWorkbook_Empty(t *testing.T) {
	buf, err := Workbook(nil, nil, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetReports)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, "reports_20261017_083000.xlsx", got)
}
