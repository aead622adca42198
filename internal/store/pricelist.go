package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// ListPriceList returns all owner price-list items ordered by category, then
// name.
func (s *Store) ListPriceList() ([]estimate.CatalogItem, error) {
	rows, err := s.db.Query(`
		SELECT id, name, category, unit, price, coverage, coverage_unit, COALESCE(proposal_description, '')
		FROM price_list
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query price list: %w", err)
	}
	defer rows.Close()

	items := make([]estimate.CatalogItem, 0)
	for rows.Next() {
		it, err := scanPriceListItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price list: %w", err)
	}

	return items, nil
}

// GetPriceListItem reads one item by id.
func (s *Store) GetPriceListItem(id string) (estimate.CatalogItem, error) {
	row := s.db.QueryRow(`
		SELECT id, name, category, unit, price, coverage, coverage_unit, COALESCE(proposal_description, '')
		FROM price_list
		WHERE id = ?
	`, id)
	it, err := scanPriceListItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate.CatalogItem{}, ErrNotFound
		}
		return estimate.CatalogItem{}, err
	}
	return it, nil
}

// InsertPriceListItem stores a new item, assigning an id when missing, and
// returns the stored item.
func (s *Store) InsertPriceListItem(it estimate.CatalogItem) (estimate.CatalogItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Kind = estimate.KindPriceList

	_, err := s.db.Exec(`
		INSERT INTO price_list (id, name, category, unit, price, coverage, coverage_unit, proposal_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, it.Name, string(it.Category), it.Unit, it.Price,
		nullFloat(it.Coverage), nullString(string(it.CoverageUnit)), it.ProposalDescription)
	if err != nil {
		return estimate.CatalogItem{}, fmt.Errorf("insert price list item: %w", err)
	}

	return it, nil
}

// UpdatePriceListItem replaces the stored fields of an existing item.
func (s *Store) UpdatePriceListItem(it estimate.CatalogItem) error {
	result, err := s.db.Exec(`
		UPDATE price_list
		SET
			name = ?,
			category = ?,
			unit = ?,
			price = ?,
			coverage = ?,
			coverage_unit = ?,
			proposal_description = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, it.Name, string(it.Category), it.Unit, it.Price,
		nullFloat(it.Coverage), nullString(string(it.CoverageUnit)), it.ProposalDescription, it.ID)
	if err != nil {
		return fmt.Errorf("update price list item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update price list item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePriceListItem removes one item.
func (s *Store) DeletePriceListItem(id string) error {
	result, err := s.db.Exec(`DELETE FROM price_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete price list item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete price list item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPriceListItem(row rowScanner) (estimate.CatalogItem, error) {
	var (
		it           estimate.CatalogItem
		category     string
		coverage     sql.NullFloat64
		coverageUnit sql.NullString
	)
	if err := row.Scan(&it.ID, &it.Name, &category, &it.Unit, &it.Price, &coverage, &coverageUnit, &it.ProposalDescription); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return it, err
		}
		return it, fmt.Errorf("scan price list item: %w", err)
	}
	it.Category = estimate.Category(category)
	if coverage.Valid && coverageUnit.Valid {
		it.Coverage = coverage.Float64
		it.CoverageUnit = estimate.CoverageUnit(coverageUnit.String)
	}
	it.Kind = estimate.KindPriceList
	return it, nil
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
