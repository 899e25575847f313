// Package reports renders moderation data as xlsx workbooks for admins.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	SheetReports      = "Reports"
	SheetMostReported = "Most reported"
)

var (
	reportHeader = []interface{}{"ID", "Created (UTC)", "Reporter", "Reported", "Session", "Reason"}
	rankHeader   = []interface{}{"Reported", "Reports"}
)

// Workbook builds an xlsx with every report and the most-reported ranking.
func Workbook(list []models.Report, ranking []repositories.ReportedCount, generatedAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReports); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMostReported); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetReports, "A1", &reportHeader); err != nil {
		return nil, err
	}
	for i, r := range list {
		row := []interface{}{
			r.ID,
			r.CreatedAt.UTC().Format(time.DateTime),
			r.ReporterID,
			r.ReportedID,
			r.SessionID,
			r.Reason,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetReports, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(SheetMostReported, "A1", &rankHeader); err != nil {
		return nil, err
	}
	for i, rc := range ranking {
		row := []interface{}{rc.ReportedID, rc.Count}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetMostReported, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(SheetReports, "B", "B", 20)
	_ = f.SetColWidth(SheetReports, "E", "E", 38)
	_ = f.SetColWidth(SheetReports, "F", "F", 60)

	f.SetActiveSheet(0)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Moderation reports",
		Created: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// FileName is the attachment name for a workbook generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("reports_%s.xlsx", t.UTC().Format("20060102_150405"))
}
