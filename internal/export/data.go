// Package export renders a calculated estimate to customer-facing documents.
// The engine returns raw numbers; all currency formatting happens here.
package export

import (
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// Row is one line of an exported estimate table.
type Row struct {
	Name       string
	Quantity   float64
	Unit       string
	UnitPrice  float64
	Total      float64
	WasteAdded float64
}

// Section groups the rows of one cost category under its display header.
type Section struct {
	Category estimate.Category
	Header   string
	Rows     []Row
	Subtotal float64
}

// Data holds everything the Excel and PDF renderers need.
type Data struct {
	Title         string
	Customer      estimate.CustomerInfo
	GeneratedDate string
	TotalSquares  float64
	Pitch         string

	Sections     []Section
	OptionalRows []Row

	SundriesAmount   float64
	BaseCost         float64
	OfficeAllocation float64
	TotalCost        float64
	SellPrice        float64
	SalesTaxAmount   float64
	FinalPrice       float64
}

// DefaultSectionHeaders are the proposal headings used when the caller does
// not supply its own map.
var DefaultSectionHeaders = map[estimate.Category]string{
	estimate.CategoryMaterials:   "Roofing Materials",
	estimate.CategoryLabor:       "Labor",
	estimate.CategoryEquipment:   "Equipment & Disposal",
	estimate.CategoryAccessories: "Accessories",
	estimate.CategorySchafer:     "Schafer Metal Systems",
}

// Build assembles export data from a calculated estimate. sectionHeaders may
// be nil or partial; missing categories fall back to the defaults. Categories
// with no line items are omitted.
func Build(est *estimate.Estimate, sectionHeaders map[estimate.Category]string) Data {
	data := Data{
		Title:         "Roofing Proposal",
		Customer:      est.Customer,
		GeneratedDate: est.GeneratedAt.Format("January 2, 2006"),
		TotalSquares:  est.Measurements.TotalSquares,
		Pitch:         est.Measurements.PredominantPitch,

		SundriesAmount:   est.SundriesAmount,
		BaseCost:         est.BaseCost,
		OfficeAllocation: est.OfficeAllocation,
		TotalCost:        est.TotalCost,
		SellPrice:        est.SellPrice,
		SalesTaxAmount:   est.SalesTaxAmount,
		FinalPrice:       est.FinalPrice,
	}

	for _, cat := range estimate.Categories() {
		items := est.ByCategory[cat]
		if len(items) == 0 {
			continue
		}
		section := Section{
			Category: cat,
			Header:   headerFor(cat, sectionHeaders),
			Subtotal: est.Totals[cat],
		}
		for _, li := range items {
			section.Rows = append(section.Rows, rowFor(li))
		}
		data.Sections = append(data.Sections, section)
	}

	for _, li := range est.OptionalItems {
		data.OptionalRows = append(data.OptionalRows, rowFor(li))
	}

	return data
}

func headerFor(cat estimate.Category, overrides map[estimate.Category]string) string {
	if overrides != nil {
		if h, ok := overrides[cat]; ok && h != "" {
			return h
		}
	}
	if h, ok := DefaultSectionHeaders[cat]; ok {
		return h
	}
	return string(cat)
}

func rowFor(li estimate.LineItem) Row {
	name := li.Name
	if li.ProposalDescription != "" {
		name = li.ProposalDescription
	}
	return Row{
		Name:       name,
		Quantity:   li.Quantity,
		Unit:       li.Unit,
		UnitPrice:  li.UnitPrice,
		Total:      li.Total,
		WasteAdded: li.WasteAdded,
	}
}
