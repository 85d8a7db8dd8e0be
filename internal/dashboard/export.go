package dashboard

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"safereturn/internal/risk"
)

const (
	summarySheet  = "Summary"
	profilesSheet = "Profiles"
	dateLayout    = "2006-01-02"
)

var profileHeader = []string{
	"Profile ID",
	"National ID",
	"Full Name",
	"City",
	"Risk Tier",
	"Plan Month",
	"Case Worker",
	"Release Date",
}

var columnWidths = []float64{38, 14, 28, 12, 10, 11, 38, 14}

// ExportXLSX renders the overview as a workbook with a summary sheet and
// one row per listed profile.
func ExportXLSX(o *Overview) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	profilesIdx, err := f.NewSheet(profilesSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, o, headerStyle); err != nil {
		return nil, err
	}
	if err := writeProfiles(f, o, headerStyle); err != nil {
		return nil, err
	}
	f.SetActiveSheet(profilesIdx)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, o *Overview, headerStyle int) error {
	tierFilter, cityFilter := string(o.Filter.Tier), string(o.Filter.City)
	if tierFilter == "" {
		tierFilter = "ALL"
	}
	if cityFilter == "" {
		cityFilter = "ALL"
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Generated At", o.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Tier Filter", tierFilter},
		{"Active RED", o.TierCounts[risk.TierRed]},
		{"Active YELLOW", o.TierCounts[risk.TierYellow]},
		{"Active GREEN", o.TierCounts[risk.TierGreen]},
		{"Active Total", o.Total()},
		{"Open Tickets", o.OpenTickets},
		{"In Progress Tickets", o.InProgressTickets},
		{"City Filter", cityFilter},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	return f.SetColWidth(summarySheet, "A", "B", 22)
}

func writeProfiles(f *excelize.File, o *Overview, headerStyle int) error {
	for col, header := range profileHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(profilesSheet, cell, header); err != nil {
			return fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(profilesSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("set header style: %w", err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("convert column: %w", err)
		}
		if err := f.SetColWidth(profilesSheet, colName, colName, columnWidths[col]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, r := range o.Profiles {
		worker := ""
		if r.AssignedWorker != nil {
			worker = r.AssignedWorker.String()
		}
		row := []any{
			r.ProfileID.String(),
			string(r.NationalID),
			r.FullName,
			string(r.City),
			string(r.Tier),
			r.PlanMonth,
			worker,
			r.ReleaseDate.Format(dateLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(profilesSheet, cell, &row); err != nil {
			return fmt.Errorf("write profile row %d: %w", i+2, err)
		}
	}
	return nil
}
