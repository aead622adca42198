package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel renders the estimate as a styled xlsx workbook and returns
// the file contents.
func GenerateExcel(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Estimate"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E"}
	lastCol := columns[len(columns)-1]

	widths := []float64{44, 10, 8, 14, 14}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	// ── Header rows ─────────────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", styles.title)

	f.SetCellValue(sheetName, "A2", "Customer: "+sanitizeExcelCell(data.Customer.Name))
	f.SetCellStyle(sheetName, "A2", "A2", styles.subtitle)
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Roof: %s squares, %s pitch", formatQty(data.TotalSquares), data.Pitch))
	f.SetCellStyle(sheetName, "A3", "A3", styles.subtitle)
	f.SetCellValue(sheetName, "A4", "Date: "+data.GeneratedDate)
	f.SetCellStyle(sheetName, "A4", "A4", styles.subtitle)

	row := 6
	writeRows := func(rows []Row) {
		for _, r := range rows {
			rowStr := fmt.Sprintf("%d", row)
			f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(r.Name))
			f.SetCellValue(sheetName, "B"+rowStr, formatQty(r.Quantity))
			f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Unit))
			f.SetCellValue(sheetName, "D"+rowStr, FormatUSD(r.UnitPrice))
			f.SetCellValue(sheetName, "E"+rowStr, FormatUSD(r.Total))
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.item)
			row++
		}
	}

	// ── Category sections ───────────────────────────────────────────────

	for _, section := range data.Sections {
		rowStr := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge section header: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(section.Header))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.sectionHeader)
		row++

		writeRows(section.Rows)

		rowStr = fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "D"+rowStr, "Subtotal:")
		f.SetCellStyle(sheetName, "D"+rowStr, "D"+rowStr, styles.summaryLabel)
		f.SetCellValue(sheetName, "E"+rowStr, FormatUSD(section.Subtotal))
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, styles.summaryValue)
		row += 2
	}

	// ── Optional items ──────────────────────────────────────────────────

	if len(data.OptionalRows) > 0 {
		rowStr := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge optional header: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, "Optional (quoted separately)")
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.sectionHeader)
		row++
		writeRows(data.OptionalRows)
		row++
	}

	// ── Summary ─────────────────────────────────────────────────────────

	summaries := []struct {
		label string
		value float64
	}{
		{"Materials Allowance:", data.SundriesAmount},
		{"Office Allocation:", data.OfficeAllocation},
		{"Sales Tax:", data.SalesTaxAmount},
		{"Total:", data.FinalPrice},
	}
	for _, s := range summaries {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "D"+rowStr, s.label)
		f.SetCellStyle(sheetName, "D"+rowStr, "D"+rowStr, styles.summaryLabel)
		f.SetCellValue(sheetName, "E"+rowStr, FormatUSD(s.value))
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, styles.summaryValue)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

type excelStyles struct {
	title         int
	subtitle      int
	sectionHeader int
	item          int
	summaryLabel  int
	summaryValue  int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create subtitle style: %w", err)
	}

	if s.sectionHeader, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create section header style: %w", err)
	}

	if s.item, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create item style: %w", err)
	}

	if s.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("create summary label style: %w", err)
	}

	if s.summaryValue, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create summary value style: %w", err)
	}

	return s, nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
