package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

const sampleCSV = `Name,Category,Unit,Price,Coverage,Coverage Unit
Architectural Shingles,materials,bundle,43.50,0.333,sq
Synthetic Underlayment,materials,roll,89.00,1000,sqft
Tear Off Labor,labor,sq,55.00,,
`

func TestParsePriceList_CSV(t *testing.T) {
	result, err := ParsePriceList(strings.NewReader(sampleCSV), "prices.csv")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}

	if result.TotalRows != 3 || result.ValidRows != 3 || result.ErrorRows != 0 {
		t.Fatalf("unexpected summary: %+v", result)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}

	shingles := result.Items[0]
	if shingles.Name != "Architectural Shingles" {
		t.Errorf("name = %q", shingles.Name)
	}
	if shingles.Category != estimate.CategoryMaterials {
		t.Errorf("category = %q", shingles.Category)
	}
	if shingles.Price != 43.5 {
		t.Errorf("price = %v", shingles.Price)
	}
	if shingles.Coverage != 0.333 || shingles.CoverageUnit != estimate.CoverageSquares {
		t.Errorf("coverage = %v %q", shingles.Coverage, shingles.CoverageUnit)
	}
	if shingles.Kind != estimate.KindPriceList {
		t.Errorf("kind = %q", shingles.Kind)
	}

	labor := result.Items[2]
	if labor.Coverage != 0 || labor.CoverageUnit != "" {
		t.Errorf("empty coverage columns should leave coverage unset: %v %q", labor.Coverage, labor.CoverageUnit)
	}
}

func TestParsePriceList_HeaderAliases(t *testing.T) {
	csv := "Item,Section,UOM,Unit Price\nDrip Edge,materials,stick,$1,234.56\n"
	// Quote the price so the comma survives CSV parsing.
	csv = strings.Replace(csv, "$1,234.56", `"$1,234.56"`, 1)

	result, err := ParsePriceList(strings.NewReader(csv), "export.CSV")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %+v)", len(result.Items), result.Errors)
	}
	item := result.Items[0]
	if item.Name != "Drip Edge" || item.Unit != "stick" || item.Price != 1234.56 {
		t.Errorf("alias mapping failed: %+v", item)
	}
}

func TestParsePriceList_RowErrors(t *testing.T) {
	csv := `Name,Category,Price,Coverage,Coverage Unit
,materials,10,,
Ice and Water,gutters,10,,
Ridge Cap,materials,not-a-price,,
Starter Strip,materials,32,-5,lf
Hip Cap,materials,40,25,furlongs
Pipe Boot,materials,14.50,,
`
	result, err := ParsePriceList(strings.NewReader(csv), "prices.csv")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}

	if result.TotalRows != 6 {
		t.Fatalf("total rows = %d", result.TotalRows)
	}
	if result.ErrorRows != 5 || result.ValidRows != 1 {
		t.Fatalf("expected 5 error rows and 1 valid, got %d/%d", result.ErrorRows, result.ValidRows)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Pipe Boot" {
		t.Fatalf("only the clean row should import: %+v", result.Items)
	}

	wantFields := map[string]bool{}
	for _, e := range result.Errors {
		wantFields[e.Field] = true
		if e.Row < 2 || e.Row > 7 {
			t.Errorf("row number out of range: %+v", e)
		}
	}
	for _, f := range []string{"Name", "Category", "Price", "Coverage", "Coverage Unit"} {
		if !wantFields[f] {
			t.Errorf("expected an error on field %q, got %+v", f, result.Errors)
		}
	}
}

func TestParsePriceList_CoverageRequiresUnit(t *testing.T) {
	csv := "Name,Price,Coverage\nShingles,43.50,0.333\n"
	result, err := ParsePriceList(strings.NewReader(csv), "prices.csv")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}
	if result.ErrorRows != 1 {
		t.Fatalf("expected coverage-without-unit to fail the row: %+v", result)
	}
	if result.Errors[0].Field != "Coverage Unit" {
		t.Errorf("error field = %q", result.Errors[0].Field)
	}
}

func TestParsePriceList_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Name", "Category", "Unit", "Price"},
		{"Schafer Standing Seam Panel", "schafer", "sq", 410.0},
		{"Snow Guard", "accessories", "each", 8.25},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("build fixture: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	f.Close()

	result, err := ParsePriceList(bytes.NewReader(buf.Bytes()), "prices.xlsx")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %+v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Category != estimate.CategorySchafer || result.Items[0].Price != 410 {
		t.Errorf("first item: %+v", result.Items[0])
	}
	if result.Items[1].Category != estimate.CategoryAccessories {
		t.Errorf("second item: %+v", result.Items[1])
	}
}

func TestParsePriceList_BadInputs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		fileName string
	}{
		{"unsupported extension", sampleCSV, "prices.pdf"},
		{"header only", "Name,Price\n", "prices.csv"},
		{"missing price column", "Name,Category\nShingles,materials\n", "prices.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePriceList(strings.NewReader(tt.content), tt.fileName); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
