// Package seed inserts the default owner price list and financial knob
// defaults on first startup.
package seed

import (
	"database/sql"
	"fmt"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// defaultKnobs are the shop's starting dials: 10% waste, 7% sundries, 10%
// office overhead, 40% margin, no sales tax until configured per state.
var defaultKnobs = estimate.FinancialKnobs{
	WastePercent:      10,
	SundriesPercent:   7,
	OfficeCostPercent: 10,
	MarginPercent:     40,
	SalesTaxPercent:   0,
}

// defaultPriceList is the starter catalog for a new install. IDs are fixed
// so reseeding stays idempotent.
var defaultPriceList = []estimate.CatalogItem{
	{ID: "pl-shingles", Name: "Architectural Shingles", Category: estimate.CategoryMaterials, Unit: "bundle", Price: 43.50, Coverage: 0.333, CoverageUnit: estimate.CoverageSquares},
	{ID: "pl-underlayment", Name: "Synthetic Underlayment", Category: estimate.CategoryMaterials, Unit: "each", Price: 95, Coverage: 1000, CoverageUnit: estimate.CoverageSquareFeet},
	{ID: "pl-ice-water", Name: "Ice & Water Valley Roll", Category: estimate.CategoryMaterials, Unit: "each", Price: 115, Coverage: 66, CoverageUnit: estimate.CoverageLinearFeet},
	{ID: "pl-starter", Name: "Starter Strip", Category: estimate.CategoryMaterials, Unit: "bundle", Price: 38, Coverage: 120, CoverageUnit: estimate.CoverageLinearFeet},
	{ID: "pl-hip-ridge", Name: "Hip & Ridge Cap", Category: estimate.CategoryMaterials, Unit: "bundle", Price: 62.50, Coverage: 25, CoverageUnit: estimate.CoverageLinearFeet},
	{ID: "pl-drip-edge", Name: "Drip Edge 10ft", Category: estimate.CategoryMaterials, Unit: "each", Price: 12.25, Coverage: 10, CoverageUnit: estimate.CoverageLinearFeet},
	{ID: "pl-osb", Name: "OSB 7/16", Category: estimate.CategoryMaterials, Unit: "sheet", Price: 28.75},
	{ID: "pl-skylight", Name: "Velux Skylight", Category: estimate.CategoryMaterials, Unit: "each", Price: 925},
	{ID: "pl-pipe-boot", Name: "Pipe Boot", Category: estimate.CategoryAccessories, Unit: "each", Price: 18},
	{ID: "pl-ridge-vent", Name: "Ridge Vent 4ft", Category: estimate.CategoryAccessories, Unit: "each", Price: 21, Coverage: 4, CoverageUnit: estimate.CoverageLinearFeet},
	{ID: "pl-snowguard", Name: "Snowguard Install", Category: estimate.CategoryAccessories, Unit: "each", Price: 45},
	{ID: "pl-install", Name: "Shingle Install", Category: estimate.CategoryLabor, Unit: "sq", Price: 165},
	{ID: "pl-tear-off", Name: "Tear Off Labor", Category: estimate.CategoryLabor, Unit: "sq", Price: 55},
	{ID: "pl-rolloff", Name: "Rolloff Dumpster", Category: estimate.CategoryEquipment, Unit: "flat", Price: 450},
	{ID: "pl-delivery", Name: "Material Delivery", Category: estimate.CategoryEquipment, Unit: "each", Price: 125},
	{ID: "pl-schafer-panel", Name: "Schafer Metal Panel", Category: estimate.CategorySchafer, Unit: "sq", Price: 210},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureKnobConfig(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensurePriceList(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureKnobConfig(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM knob_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check knob config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO knob_config (
			id,
			waste_percent,
			sundries_percent,
			office_cost_percent,
			margin_percent,
			sales_tax_percent
		)
		VALUES (1, ?, ?, ?, ?, ?)
	`, defaultKnobs.WastePercent, defaultKnobs.SundriesPercent, defaultKnobs.OfficeCostPercent,
		defaultKnobs.MarginPercent, defaultKnobs.SalesTaxPercent); err != nil {
		return fmt.Errorf("insert knob config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensurePriceList(tx *sql.Tx, stats *Stats) error {
	for _, it := range defaultPriceList {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM price_list WHERE id = ? LIMIT 1)`, it.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check price list item %s: %w", it.ID, err)
		}
		if exists {
			continue
		}

		var coverage, coverageUnit any
		if it.HasCoverage() {
			coverage = it.Coverage
			coverageUnit = string(it.CoverageUnit)
		}
		if _, err := tx.Exec(`
			INSERT INTO price_list (id, name, category, unit, price, coverage, coverage_unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, it.ID, it.Name, string(it.Category), it.Unit, it.Price, coverage, coverageUnit); err != nil {
			return fmt.Errorf("insert price list item %s: %w", it.ID, err)
		}
		stats.Inserts++
	}
	return nil
}
