package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// GetKnobs reads the financial knob defaults singleton.
func (s *Store) GetKnobs() (estimate.FinancialKnobs, error) {
	var k estimate.FinancialKnobs
	err := s.db.QueryRow(`
		SELECT waste_percent, sundries_percent, office_cost_percent, margin_percent, sales_tax_percent
		FROM knob_config
		WHERE id = 1
	`).Scan(&k.WastePercent, &k.SundriesPercent, &k.OfficeCostPercent, &k.MarginPercent, &k.SalesTaxPercent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate.FinancialKnobs{}, ErrNotFound
		}
		return estimate.FinancialKnobs{}, fmt.Errorf("query knob config: %w", err)
	}
	return k, nil
}

// SaveKnobs replaces the knob defaults singleton.
func (s *Store) SaveKnobs(k estimate.FinancialKnobs) error {
	_, err := s.db.Exec(`
		UPDATE knob_config
		SET
			waste_percent = ?,
			sundries_percent = ?,
			office_cost_percent = ?,
			margin_percent = ?,
			sales_tax_percent = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, k.WastePercent, k.SundriesPercent, k.OfficeCostPercent, k.MarginPercent, k.SalesTaxPercent)
	if err != nil {
		return fmt.Errorf("update knob config: %w", err)
	}
	return nil
}
