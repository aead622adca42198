// Package estimate implements the roof estimate calculation engine: quantity
// derivation from roof measurements, waste and category aggregation, vendor
// price adjustment, and the financial cascade that turns category subtotals
// into a final customer price. The package performs no I/O; Calculate is a
// pure function over its inputs and is safe for concurrent use.
package estimate

import (
	"fmt"
	"time"
)

// Category classifies a catalog item for grouping and subtotals.
type Category string

const (
	CategoryMaterials   Category = "materials"
	CategoryLabor       Category = "labor"
	CategoryEquipment   Category = "equipment"
	CategoryAccessories Category = "accessories"
	CategorySchafer     Category = "schafer"
)

// categoryOrder fixes the display/grouping order of categories in an Estimate.
var categoryOrder = []Category{
	CategoryMaterials,
	CategoryLabor,
	CategoryEquipment,
	CategoryAccessories,
	CategorySchafer,
}

// Categories returns all known categories in their canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// CoverageUnit describes what one purchase unit of an item covers.
type CoverageUnit string

const (
	CoverageLinearFeet CoverageUnit = "lf"
	CoverageSquareFeet CoverageUnit = "sqft"
	CoverageSquares    CoverageUnit = "sq"
)

// ItemKind tags the origin of a catalog item.
type ItemKind string

const (
	KindPriceList ItemKind = "price_list"
	KindVendor    ItemKind = "vendor"
	KindCustom    ItemKind = "custom"
)

// Measurements holds the roof-scope facts produced by measurement extraction.
// Missing fields default to zero; the roof math degrades rather than failing.
type Measurements struct {
	TotalSquares     float64 `json:"total_squares"` // 1 square = 100 sq ft
	PredominantPitch string  `json:"predominant_pitch"`
	RidgeLength      float64 `json:"ridge_length"`
	HipLength        float64 `json:"hip_length"`
	ValleyLength     float64 `json:"valley_length"`
	EaveLength       float64 `json:"eave_length"`
	RakeLength       float64 `json:"rake_length"`
	Penetrations     float64 `json:"penetrations"`
	Skylights        float64 `json:"skylights"`
	Chimneys         float64 `json:"chimneys"`
	Complexity       string  `json:"complexity"`
	TearOff          bool    `json:"tear_off"`
}

// Perimeter returns the combined eave and rake length, the run that starter
// strip and perimeter products are measured against.
func (m Measurements) Perimeter() float64 {
	return m.EaveLength + m.RakeLength
}

// CatalogItem is a selectable, priced item. Coverage and CoverageUnit are
// either both set or both empty.
type CatalogItem struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Category            Category     `json:"category"`
	Unit                string       `json:"unit"` // sf, lf, sq, each, bundle, flat
	Price               float64      `json:"price"`
	Coverage            float64      `json:"coverage,omitempty"`
	CoverageUnit        CoverageUnit `json:"coverage_unit,omitempty"`
	ProposalDescription string       `json:"proposal_description,omitempty"`
	Kind                ItemKind     `json:"kind"`
	VendorQuoteID       string       `json:"vendor_quote_id,omitempty"`
}

// HasCoverage reports whether the item carries a usable coverage rule.
func (it CatalogItem) HasCoverage() bool {
	return it.Coverage > 0 && it.CoverageUnit != ""
}

// IsVendor reports whether the item came from a vendor quote.
func (it CatalogItem) IsVendor() bool {
	return it.Kind == KindVendor
}

// SelectionState carries which items are on the estimate and any manually
// entered base quantities. Items without a manual quantity fall back to the
// quantity derived from measurements.
type SelectionState struct {
	SelectedItemIDs []string           `json:"selected_item_ids"`
	ItemQuantities  map[string]float64 `json:"item_quantities"`
}

// FinancialKnobs is the immutable set of percentage dials applied by the
// financial cascade. All values are percentages; margin must be < 100.
type FinancialKnobs struct {
	WastePercent      float64 `json:"waste_percent"`
	SundriesPercent   float64 `json:"sundries_percent"`
	OfficeCostPercent float64 `json:"office_cost_percent"`
	MarginPercent     float64 `json:"margin_percent"`
	SalesTaxPercent   float64 `json:"sales_tax_percent"`
}

// VendorQuote summarizes one vendor quote: its pre-tax subtotal and the
// tax/fee-inclusive total.
type VendorQuote struct {
	ID       string  `json:"id"`
	Vendor   string  `json:"vendor"`
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

// OverheadFactor is the ratio used to fold the quote's tax and fees into its
// line item prices. It defaults to 1 when either amount is missing or zero.
func (q VendorQuote) OverheadFactor() float64 {
	if q.Total > 0 && q.Subtotal > 0 {
		return q.Total / q.Subtotal
	}
	return 1
}

// CustomerInfo is echoed through to the Estimate untouched.
type CustomerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Notes   string `json:"notes"`
}

// LineItem is a catalog item resolved against a quantity.
type LineItem struct {
	CatalogItem
	BaseQuantity float64 `json:"base_quantity"`
	Quantity     float64 `json:"quantity"`
	WasteAdded   float64 `json:"waste_added"`
	UnitPrice    float64 `json:"unit_price"` // effective price after vendor adjustment
	Total        float64 `json:"total"`
	Optional     bool    `json:"optional"`
}

// Estimate is the engine's sole output, rebuilt in full on every invocation.
type Estimate struct {
	ByCategory    map[Category][]LineItem `json:"by_category"`
	OptionalItems []LineItem              `json:"optional_items"`
	Totals        map[Category]float64    `json:"totals"`

	SundriesAmount   float64 `json:"sundries_amount"`
	BaseCost         float64 `json:"base_cost"`
	OfficeAllocation float64 `json:"office_allocation"`
	TotalCost        float64 `json:"total_cost"`
	SellPrice        float64 `json:"sell_price"`
	GrossProfit      float64 `json:"gross_profit"`
	ProfitMargin     float64 `json:"profit_margin"`
	SalesTaxAmount   float64 `json:"sales_tax_amount"`
	FinalPrice       float64 `json:"final_price"`

	Measurements Measurements   `json:"measurements"`
	Knobs        FinancialKnobs `json:"knobs"`
	Customer     CustomerInfo   `json:"customer"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Warning is a non-fatal finding from the validation rule battery.
type Warning struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
}

// ConfigurationError reports a knob value that makes the calculation
// mathematically undefined. It is the only condition that halts Calculate.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
