package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
)

// Export column names, shared with the CSV importer.
const (
	columnCompanyName = "Company Name"
	columnWebsite     = "Website"
	columnIndustry    = "Industry"
	columnCompanySize = "Company Size"
	columnRevenue     = "Revenue"
	columnLocation    = "Location"
	columnContactName = "Contact Name"
	columnTitle       = "Title"
	columnEmail       = "Email"
	columnPhone       = "Phone"
	columnLinkedIn    = "LinkedIn"
	columnScore       = "Score"
	columnStatus      = "Status"
	columnCreatedAt   = "Created At"

	leadsSheetName = "Leads"
)

// ExportHeader lists the export columns in order.
var ExportHeader = []string{
	columnCompanyName,
	columnWebsite,
	columnIndustry,
	columnCompanySize,
	columnRevenue,
	columnLocation,
	columnContactName,
	columnTitle,
	columnEmail,
	columnPhone,
	columnLinkedIn,
	columnScore,
	columnStatus,
	columnCreatedAt,
}

var exportColumnWidths = []float64{28, 30, 16, 14, 14, 22, 22, 24, 30, 18, 36, 8, 12, 24}

// ExportCSV renders the leads matching filter as CSV, newest first.
func (s *LeadsService) ExportCSV(ctx context.Context, filter dto.LeadFilter) (string, error) {
	views, err := s.ListLeads(ctx, filter)
	if err != nil {
		return "", err
	}
	return RenderCSV(views), nil
}

// ExportXLSX renders the leads matching filter as an Excel workbook.
func (s *LeadsService) ExportXLSX(ctx context.Context, filter dto.LeadFilter) ([]byte, error) {
	views, err := s.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}
	return RenderXLSX(views)
}

// RenderCSV writes one header row followed by one row per view. Rows end with "\n".
func RenderCSV(views []entity.LeadView) string {
	var b strings.Builder
	writeCSVRow(&b, ExportHeader)
	for _, view := range views {
		writeCSVRow(&b, exportRow(view))
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVField(field))
	}
	b.WriteByte('\n')
}

// escapeCSVField quotes a field only when it contains a comma, a double quote or
// a newline, doubling embedded quotes.
func escapeCSVField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func exportRow(view entity.LeadView) []string {
	return []string{
		view.Company.Name,
		deref(view.Company.Website),
		deref(view.Company.Industry),
		view.Company.Size,
		view.Company.Revenue,
		deref(view.Company.Location),
		view.Contact.Name,
		deref(view.Contact.Title),
		deref(view.Contact.Email),
		deref(view.Contact.Phone),
		deref(view.Contact.LinkedinURL),
		strconv.Itoa(view.Score),
		string(view.Status),
		formatTimestamp(view.CreatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// RenderXLSX writes the same rows as RenderCSV into a single-sheet workbook with
// a frozen, styled header row. Scores are stored as numbers.
func RenderXLSX(views []entity.LeadView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(leadsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ExportHeader {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(leadsSheetName, name, name, exportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(leadsSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	scoreColumn := indexOf(ExportHeader, columnScore) + 1
	for rowIdx, view := range views {
		row := rowIdx + 2
		for colIdx, value := range exportRow(view) {
			var cell any = value
			if colIdx+1 == scoreColumn {
				cell = view.Score
			}
			if value == "" {
				continue
			}
			if err := setCellValue(f, colIdx+1, row, cell); err != nil {
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
	}

	if err := f.SetPanes(leadsSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(leadsSheetName, cell, value)
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
