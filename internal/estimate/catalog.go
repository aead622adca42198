package estimate

// CatalogSources groups the three item origins that feed one estimate.
type CatalogSources struct {
	PriceList   []CatalogItem `json:"price_list"`
	VendorItems []CatalogItem `json:"vendor_items"`
	CustomItems []CatalogItem `json:"custom_items"`
}

// Overrides carries user edits applied on top of the source items. An
// override always replaces the source value; keys with no matching item are
// ignored.
type Overrides struct {
	Prices map[string]float64 `json:"prices"`
	Names  map[string]string  `json:"names"`
}

// ResolveCatalog merges the owner price list, vendor quote items, and custom
// items into a single list deduplicated by id (first occurrence wins, in
// price-list, vendor, custom order), then applies price and name overrides.
func ResolveCatalog(sources CatalogSources, overrides Overrides) []CatalogItem {
	seen := make(map[string]bool)
	merged := make([]CatalogItem, 0, len(sources.PriceList)+len(sources.VendorItems)+len(sources.CustomItems))

	appendItems := func(items []CatalogItem, kind ItemKind) {
		for _, it := range items {
			if it.ID == "" || seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			if it.Kind == "" {
				it.Kind = kind
			}
			merged = append(merged, it)
		}
	}

	appendItems(sources.PriceList, KindPriceList)
	appendItems(sources.VendorItems, KindVendor)
	appendItems(sources.CustomItems, KindCustom)

	for i := range merged {
		if overrides.Prices != nil {
			if p, ok := overrides.Prices[merged[i].ID]; ok {
				merged[i].Price = p
			}
		}
		if overrides.Names != nil {
			if n, ok := overrides.Names[merged[i].ID]; ok && n != "" {
				merged[i].Name = n
			}
		}
	}

	return merged
}
