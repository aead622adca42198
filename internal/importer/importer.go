// Package importer parses uploaded price list files (.csv or .xlsx) into
// catalog items, collecting row-level validation errors so the caller can
// report exactly which rows need fixing.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// RowError is a single field-level problem on one row of the uploaded file.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result summarizes an import: the items that parsed cleanly plus every
// error found. A row with errors contributes nothing to Items.
type Result struct {
	TotalRows int                    `json:"total_rows"`
	ValidRows int                    `json:"valid_rows"`
	ErrorRows int                    `json:"error_rows"`
	Errors    []RowError             `json:"errors"`
	Items     []estimate.CatalogItem `json:"-"`
}

// columnAliases maps accepted (normalized) header spellings to canonical
// field keys. Vendors export price sheets with wildly inconsistent headings.
var columnAliases = map[string]string{
	"name":                 "name",
	"item":                 "name",
	"item name":            "name",
	"description":          "name",
	"category":             "category",
	"section":              "category",
	"unit":                 "unit",
	"uom":                  "unit",
	"price":                "price",
	"unit price":           "price",
	"cost":                 "price",
	"coverage":             "coverage",
	"coverage per unit":    "coverage",
	"coverage unit":        "coverage_unit",
	"proposal description": "proposal_description",
	"proposal text":        "proposal_description",
}

var validCategories = map[string]estimate.Category{
	"materials":   estimate.CategoryMaterials,
	"labor":       estimate.CategoryLabor,
	"equipment":   estimate.CategoryEquipment,
	"accessories": estimate.CategoryAccessories,
	"schafer":     estimate.CategorySchafer,
}

var validCoverageUnits = map[string]estimate.CoverageUnit{
	"lf":   estimate.CoverageLinearFeet,
	"sqft": estimate.CoverageSquareFeet,
	"sq":   estimate.CoverageSquares,
}

// ParsePriceList reads a price list upload and returns the parsed items and
// any validation errors. The format is chosen by the file name extension.
func ParsePriceList(file io.Reader, fileName string) (*Result, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format %q: must be .csv or .xlsx", fileName)
	}
	if err != nil {
		return nil, err
	}

	columnKeys := mapHeaders(headers)
	if !hasKey(columnKeys, "name") || !hasKey(columnKeys, "price") {
		return nil, fmt.Errorf("file must have name and price columns, got headers %v", headers)
	}

	result := &Result{TotalRows: len(dataRows)}
	errorRows := make(map[int]bool)

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, plus the header row

		fields := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			fields[key] = strings.TrimSpace(row[colIdx])
		}

		item, rowErrs := buildItem(rowNum, fields)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			errorRows[rowNum] = true
			continue
		}
		result.Items = append(result.Items, item)
	}

	result.ErrorRows = len(errorRows)
	result.ValidRows = result.TotalRows - result.ErrorRows
	return result, nil
}

func buildItem(rowNum int, fields map[string]string) (estimate.CatalogItem, []RowError) {
	var errs []RowError

	item := estimate.CatalogItem{
		Name:                fields["name"],
		Unit:                fields["unit"],
		Kind:                estimate.KindPriceList,
		ProposalDescription: fields["proposal_description"],
	}

	if item.Name == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "Name", Message: "Name is required"})
	}

	if raw := fields["category"]; raw == "" {
		item.Category = estimate.CategoryMaterials
	} else if cat, ok := validCategories[strings.ToLower(raw)]; ok {
		item.Category = cat
	} else {
		errs = append(errs, RowError{
			Row: rowNum, Field: "Category",
			Message: fmt.Sprintf("unknown category %q: must be one of materials, labor, equipment, accessories, schafer", raw),
		})
	}

	if raw := fields["price"]; raw == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "Price", Message: "Price is required"})
	} else {
		price, err := parseMoney(raw)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Field: "Price", Message: fmt.Sprintf("invalid price %q", raw)})
		} else if price < 0 {
			errs = append(errs, RowError{Row: rowNum, Field: "Price", Message: "Price must not be negative"})
		} else {
			item.Price = price
		}
	}

	if raw := fields["coverage"]; raw != "" {
		coverage, err := strconv.ParseFloat(raw, 64)
		if err != nil || coverage <= 0 {
			errs = append(errs, RowError{Row: rowNum, Field: "Coverage", Message: fmt.Sprintf("coverage must be a positive number, got %q", raw)})
		} else {
			item.Coverage = coverage
			unitRaw := strings.ToLower(fields["coverage_unit"])
			if unitRaw == "" {
				errs = append(errs, RowError{Row: rowNum, Field: "Coverage Unit", Message: "Coverage Unit is required when Coverage is set"})
			} else if cu, ok := validCoverageUnits[unitRaw]; ok {
				item.CoverageUnit = cu
			} else {
				errs = append(errs, RowError{
					Row: rowNum, Field: "Coverage Unit",
					Message: fmt.Sprintf("unknown coverage unit %q: must be lf, sqft, or sq", fields["coverage_unit"]),
				})
			}
		}
	}

	return item, errs
}

// parseMoney accepts plain floats plus the "$1,234.56" style vendors put in
// spreadsheets.
func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeaders resolves uploaded column headers to canonical field keys.
// Unrecognized columns map to "" and are ignored.
func mapHeaders(headers []string) []string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSuffix(norm, " *")
		keys[i] = columnAliases[strings.TrimSpace(norm)]
	}
	return keys
}

func hasKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
