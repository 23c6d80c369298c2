// Package report exports recorded application attempts to a spreadsheet.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/quick-apply/internal/types"
)

const (
	summarySheet  = "Summary"
	attemptsSheet = "Attempts"
)

var attemptHeaders = []string{
	"Started", "Job Title", "Company", "Location", "Status", "Failed Page", "Failed Question", "Reason", "Job Link", "Hiring Contact",
}

// Summary holds run totals derived from the records.
type Summary struct {
	Total     int
	Submitted int
	Aborted   int
	// Reasons counts aborted attempts per failure reason.
	Reasons map[string]int
}

// Summarize counts outcomes and failure reasons.
func Summarize(records []types.AttemptRecord) Summary {
	s := Summary{Reasons: map[string]int{}}
	for _, r := range records {
		s.Total++
		switch r.Status {
		case types.OutcomeSubmitted:
			s.Submitted++
		case types.OutcomeAborted:
			s.Aborted++
			s.Reasons[r.Reason]++
		}
	}
	return s
}

// WriteExcel writes a Summary sheet and an Attempts sheet to outputPath.
// The .xlsx extension is added if missing; the final path is returned.
func WriteExcel(records []types.AttemptRecord, outputPath string, generated time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return "", fmt.Errorf("failed to create attempts sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, Summarize(records), generated, header); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeAttempts(f, records, header); err != nil {
		return "", fmt.Errorf("failed to create attempts sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

func writeSummary(f *excelize.File, s Summary, generated time.Time, header int) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 20); err != nil {
		return err
	}

	rows := [][]any{
		{"Quick Apply Report", ""},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"Total attempts:", s.Total},
		{"Submitted:", s.Submitted},
		{"Aborted:", s.Aborted},
		{},
		{"Failure reason", "Count"},
	}
	for _, reason := range sortedReasons(s.Reasons) {
		rows = append(rows, []any{reason, s.Reasons[reason]})
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
	if err := f.SetCellStyle(summarySheet, "A1", "B1", header); err != nil {
		return err
	}
	return f.SetCellStyle(summarySheet, "A7", "B7", header)
}

func writeAttempts(f *excelize.File, records []types.AttemptRecord, header int) error {
	widths := []float64{20, 35, 25, 20, 12, 12, 40, 40, 50, 40}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(attemptsSheet, col, col, w); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(attemptsSheet, "A1", &attemptHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(attemptHeaders), 1)
	if err := f.SetCellStyle(attemptsSheet, "A1", last, header); err != nil {
		return err
	}

	for i, r := range records {
		row := []any{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.JobTitle,
			r.Company,
			r.Location,
			string(r.Status),
			pageCell(r.FailedPage),
			r.FailedLabel,
			r.Reason,
			r.JobLink,
			r.HiringContact,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(attemptsSheet, cell, &row); err != nil {
			return err
		}
		if r.JobLink != "" {
			link, _ := excelize.CoordinatesToCellName(9, i+2)
			if err := f.SetCellHyperLink(attemptsSheet, link, r.JobLink, "External"); err != nil {
				return err
			}
		}
	}

	if len(records) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(attemptHeaders), len(records)+1)
		if err := f.AutoFilter(attemptsSheet, "A1:"+lastCell, nil); err != nil {
			return err
		}
	}

	return f.SetPanes(attemptsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func pageCell(page int) any {
	if page == 0 {
		return ""
	}
	return page
}
