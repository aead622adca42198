package estimate

import (
	"math"
	"strings"
	"time"
)

// Input is everything one calculation needs. The engine never mutates it.
type Input struct {
	Measurements Measurements   `json:"measurements"`
	Sources      CatalogSources `json:"sources"`
	Overrides    Overrides      `json:"overrides"`
	Selection    SelectionState `json:"selection"`
	Knobs        FinancialKnobs `json:"knobs"`
	VendorQuotes []VendorQuote  `json:"vendor_quotes"`
	Customer     CustomerInfo   `json:"customer"`
}

// Calculate runs the full estimate pipeline: catalog resolution, quantity
// derivation, waste and category aggregation, vendor price adjustment, and
// the financial cascade. The Estimate is rebuilt from scratch on every call,
// so a recalculation can never observe a partially updated cascade.
//
// The only fatal condition is a margin of 100% or more, which makes the
// sell price undefined; everything else degrades to zero quantities or
// advisory warnings.
func Calculate(in Input) (*Estimate, error) {
	if in.Knobs.MarginPercent >= 100 {
		return nil, &ConfigurationError{
			Field:  "margin_percent",
			Reason: "must be less than 100 (margin is a percentage of sell price)",
		}
	}

	catalog := ResolveCatalog(in.Sources, in.Overrides)
	byID := make(map[string]CatalogItem, len(catalog))
	for _, it := range catalog {
		byID[it.ID] = it
	}
	derived := DeriveQuantities(in.Measurements, catalog)
	overheadFactors := vendorOverheadFactors(in.VendorQuotes)

	est := &Estimate{
		ByCategory:   make(map[Category][]LineItem),
		Totals:       make(map[Category]float64),
		Measurements: in.Measurements,
		Knobs:        in.Knobs,
		Customer:     in.Customer,
		GeneratedAt:  time.Now().UTC(),
	}

	for _, id := range in.Selection.SelectedItemIDs {
		it, ok := byID[id]
		if !ok {
			// Selected but no longer in the catalog: drop it.
			continue
		}

		li := buildLineItem(it, baseQuantity(id, in.Selection, derived), in.Knobs, overheadFactors)
		if li.Optional {
			est.OptionalItems = append(est.OptionalItems, li)
			continue
		}
		est.ByCategory[li.Category] = append(est.ByCategory[li.Category], li)
		est.Totals[li.Category] += li.Total
	}

	applyCascade(est, in.Knobs)
	return est, nil
}

// baseQuantity prefers a manually entered quantity; items the caller has not
// touched fall back to the quantity derived from measurements.
func baseQuantity(id string, sel SelectionState, derived map[string]float64) float64 {
	if q, ok := sel.ItemQuantities[id]; ok {
		return q
	}
	return derived[id]
}

func buildLineItem(it CatalogItem, base float64, knobs FinancialKnobs, factors map[string]float64) LineItem {
	li := LineItem{
		CatalogItem:  it,
		BaseQuantity: base,
		Quantity:     base,
		UnitPrice:    it.Price,
		Optional:     isOptionalItem(it),
	}

	if wasteApplies(it, li.Optional) {
		li.Quantity = math.Ceil(base * (1 + knobs.WastePercent/100))
		li.WasteAdded = li.Quantity - base
	}

	if it.IsVendor() {
		if f, ok := factors[it.VendorQuoteID]; ok {
			li.UnitPrice = it.Price * f
		}
	}

	li.Total = li.Quantity * li.UnitPrice
	return li
}

// wasteApplies reports whether the waste multiplier covers this item: only
// owner material-class quantities get waste, never vendor-quoted or optional
// items.
func wasteApplies(it CatalogItem, optional bool) bool {
	if it.IsVendor() || optional {
		return false
	}
	return it.Category == CategoryMaterials || it.Category == CategorySchafer
}

// isOptionalItem flags items quoted separately from the contract price.
// Currently that is skylights only.
func isOptionalItem(it CatalogItem) bool {
	return nameContains("skylight")(strings.ToLower(it.Name))
}

// vendorOverheadFactors precomputes total/subtotal per quote so vendor tax,
// freight, and fees spread proportionally across that quote's items and the
// vendor category total reconciles exactly with the quoted total.
func vendorOverheadFactors(quotes []VendorQuote) map[string]float64 {
	factors := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		factors[q.ID] = q.OverheadFactor()
	}
	return factors
}

// applyCascade runs the strict percentage-layer sequence over the category
// totals. Stages feed each other in order; nothing is rounded between
// stages. Margin is profit as a percent of sell price, not cost-plus markup,
// hence the division by (1 - margin).
func applyCascade(est *Estimate, knobs FinancialKnobs) {
	sundriesBase := est.Totals[CategoryMaterials] + est.Totals[CategorySchafer]
	est.SundriesAmount = sundriesBase * knobs.SundriesPercent / 100

	est.BaseCost = est.SundriesAmount
	for _, cat := range categoryOrder {
		est.BaseCost += est.Totals[cat]
	}

	est.OfficeAllocation = est.BaseCost * knobs.OfficeCostPercent / 100
	est.TotalCost = est.BaseCost + est.OfficeAllocation

	est.SellPrice = est.TotalCost / (1 - knobs.MarginPercent/100)
	est.GrossProfit = est.SellPrice - est.TotalCost
	if est.SellPrice != 0 {
		est.ProfitMargin = est.GrossProfit / est.SellPrice * 100
	}

	est.SalesTaxAmount = est.SellPrice * knobs.SalesTaxPercent / 100
	est.FinalPrice = est.SellPrice + est.SalesTaxAmount
}
