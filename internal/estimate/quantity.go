package estimate

import (
	"math"
	"strings"
)

// Quantity derivation resolves a base quantity for every catalog item from
// the roof measurements. The catalog is free text, so dispatch is keyword
// driven; the rule tables below pin the precedence explicitly. Order is
// load-bearing: the first matching tier wins, and within a tier the first
// matching keyword wins.

// flatFeeKeywords name one-off charges that default to a quantity of 1 even
// when the unit would otherwise require manual entry.
var flatFeeKeywords = []string{"delivery", "fuel", "porto", "rolloff", "reprographic"}

// linearLength maps a name keyword to the roof length it is measured against.
type linearLength struct {
	match  func(name string) bool
	length func(m Measurements) float64
}

// linearLengths is evaluated in order; starter must come before rake (a
// "starter strip" runs the full perimeter, not just the rakes) and ridge
// before hip ("hip & ridge" caps cover both runs).
var linearLengths = []linearLength{
	{nameContains("starter"), Measurements.Perimeter},
	{nameContains("valley"), func(m Measurements) float64 { return m.ValleyLength }},
	{nameContains("eave", "drip"), func(m Measurements) float64 { return m.EaveLength }},
	{nameContains("rake"), func(m Measurements) float64 { return m.RakeLength }},
	{nameContains("ridge", "h&r"), func(m Measurements) float64 { return m.RidgeLength + m.HipLength }},
	{nameContains("hip"), func(m Measurements) float64 { return m.HipLength }},
}

// countFields maps a name keyword to the roof count it refers to.
var countFields = []linearLength{
	{nameContains("skylight"), func(m Measurements) float64 { return m.Skylights }},
	{nameContains("chimney"), func(m Measurements) float64 { return m.Chimneys }},
	{nameContains("penetration", "pipe", "boot"), func(m Measurements) float64 { return m.Penetrations }},
}

// calcType classifies a unit for the fallback tier.
type calcType int

const (
	calcUnknown calcType = iota
	calcArea
	calcLinear
	calcCount
	calcFlat
)

var unitCalcTypes = map[string]calcType{
	"sq":     calcArea,
	"sf":     calcArea,
	"sqft":   calcArea,
	"square": calcArea,
	"lf":     calcLinear,
	"each":   calcCount,
	"flat":   calcFlat,
}

// quantityRule is one tier of the derivation policy.
type quantityRule struct {
	applies func(m Measurements, it CatalogItem) bool
	resolve func(m Measurements, it CatalogItem) float64
}

var quantityRules = []quantityRule{
	{appliesCoverage, resolveCoverage},
	{appliesManualEach, resolveManualEach},
	{appliesNamedSpecial, resolveNamedSpecial},
	{appliesAlways, resolveUnitFallback},
}

// DeriveQuantities computes a base quantity for every item in the catalog.
// Items no rule can resolve get a quantity of 0; they stay selectable but
// contribute nothing until a quantity is entered by hand.
func DeriveQuantities(m Measurements, catalog []CatalogItem) map[string]float64 {
	quantities := make(map[string]float64, len(catalog))
	for _, it := range catalog {
		quantities[it.ID] = deriveQuantity(m, it)
	}
	return quantities
}

func deriveQuantity(m Measurements, it CatalogItem) float64 {
	for _, rule := range quantityRules {
		if rule.applies(m, it) {
			return rule.resolve(m, it)
		}
	}
	return 0
}

// ── Tier 1: coverage-based ──────────────────────────────────────────────

func appliesCoverage(_ Measurements, it CatalogItem) bool {
	return it.HasCoverage()
}

func resolveCoverage(m Measurements, it CatalogItem) float64 {
	switch it.CoverageUnit {
	case CoverageLinearFeet:
		return math.Ceil(linearNumerator(m, it.Name) / it.Coverage)
	case CoverageSquareFeet:
		return math.Ceil(m.TotalSquares * 100 / it.Coverage)
	case CoverageSquares:
		return math.Ceil(m.TotalSquares / it.Coverage)
	}
	return 0
}

func linearNumerator(m Measurements, name string) float64 {
	lowered := strings.ToLower(name)
	for _, ll := range linearLengths {
		if ll.match(lowered) {
			return ll.length(m)
		}
	}
	// Unrecognized linear products run along the eaves more often than not.
	return m.EaveLength
}

// ── Tier 2: manual-entry default for "each" items ───────────────────────

// Items sold per each with no coverage rule need human judgment (how many
// snow guards?) so they default to zero rather than an arbitrary guess.
// Known flat-fee charges are the exception and default to one.

func appliesManualEach(_ Measurements, it CatalogItem) bool {
	return it.Unit == "each" && !it.HasCoverage()
}

func resolveManualEach(_ Measurements, it CatalogItem) float64 {
	if nameContains(flatFeeKeywords...)(strings.ToLower(it.Name)) {
		return 1
	}
	return 0
}

// ── Tier 3: named special cases ─────────────────────────────────────────

func appliesNamedSpecial(m Measurements, it CatalogItem) bool {
	return resolveNamedSpecialFn(m, it) != nil
}

func resolveNamedSpecial(m Measurements, it CatalogItem) float64 {
	if fn := resolveNamedSpecialFn(m, it); fn != nil {
		return fn()
	}
	return 0
}

func resolveNamedSpecialFn(m Measurements, it CatalogItem) func() float64 {
	name := strings.ToLower(it.Name)
	switch {
	case nameContains("osb", "oriented strand")(name):
		return func() float64 { return m.TotalSquares * 3 }
	case nameContains("starter")(name):
		return func() float64 { return m.Perimeter() }
	case nameContains("rolloff")(name) && m.TearOff:
		return func() float64 { return math.Ceil(m.TotalSquares / 15) }
	case nameContains("delivery", "fuel", "porto", "rolloff")(name) || it.Unit == "flat":
		return func() float64 { return 1 }
	case it.Category == CategoryLabor && it.Unit != "each":
		return func() float64 { return m.TotalSquares }
	}
	return nil
}

// ── Tier 4: unit-type fallback ──────────────────────────────────────────

func appliesAlways(Measurements, CatalogItem) bool { return true }

func resolveUnitFallback(m Measurements, it CatalogItem) float64 {
	switch unitCalcTypes[it.Unit] {
	case calcArea:
		if it.Unit == "sf" {
			return m.TotalSquares * 100
		}
		return m.TotalSquares
	case calcLinear:
		return linearNumerator(m, it.Name)
	case calcCount:
		return countNumerator(m, it.Name)
	case calcFlat:
		return 1
	}
	return 0
}

func countNumerator(m Measurements, name string) float64 {
	lowered := strings.ToLower(name)
	for _, cf := range countFields {
		if cf.match(lowered) {
			return cf.length(m)
		}
	}
	return 0
}

// nameContains builds a predicate matching any of the given substrings
// against an already-lowercased name.
func nameContains(keywords ...string) func(name string) bool {
	return func(name string) bool {
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
		return false
	}
}
