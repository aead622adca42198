// Package store persists estimates, the owner price list, and the financial
// knob defaults in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the application database.
type Store struct {
	db *sql.DB
}

// New returns a Store over an already-opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EstimateSummary is the list-view projection of a stored estimate.
type EstimateSummary struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customer_name"`
	FinalPrice   float64 `json:"final_price"`
	CreatedAt    string  `json:"created_at"`
}

// StoredEstimate is a full estimate read back from storage, field-for-field
// as the engine produced it.
type StoredEstimate struct {
	ID        string             `json:"id"`
	Estimate  estimate.Estimate  `json:"estimate"`
	Warnings  []estimate.Warning `json:"warnings"`
	CreatedAt string             `json:"created_at"`
}

// SaveEstimate stores the full estimate snapshot plus its warnings and
// returns the new id. The snapshot keeps base quantities so waste can be
// recomputed consistently on reload.
func (s *Store) SaveEstimate(est *estimate.Estimate, warnings []estimate.Warning) (string, error) {
	estJSON, err := json.Marshal(est)
	if err != nil {
		return "", fmt.Errorf("marshal estimate: %w", err)
	}
	if warnings == nil {
		warnings = []estimate.Warning{}
	}
	warnJSON, err := json.Marshal(warnings)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO estimates (id, customer_name, notes, final_price, estimate_json, warnings_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, est.Customer.Name, est.Customer.Notes, est.FinalPrice, string(estJSON), string(warnJSON))
	if err != nil {
		return "", fmt.Errorf("insert estimate: %w", err)
	}

	return id, nil
}

// GetEstimate reads one stored estimate by id.
func (s *Store) GetEstimate(id string) (*StoredEstimate, error) {
	var (
		stored   StoredEstimate
		estJSON  string
		warnJSON string
	)
	err := s.db.QueryRow(`
		SELECT id, estimate_json, warnings_json, created_at
		FROM estimates
		WHERE id = ?
	`, id).Scan(&stored.ID, &estJSON, &warnJSON, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query estimate: %w", err)
	}

	if err := json.Unmarshal([]byte(estJSON), &stored.Estimate); err != nil {
		return nil, fmt.Errorf("unmarshal estimate %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(warnJSON), &stored.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings %s: %w", id, err)
	}

	return &stored, nil
}

// ListEstimates returns summaries newest-first, optionally filtered by a
// substring match over customer name and notes.
func (s *Store) ListEstimates(query string) ([]EstimateSummary, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, customer_name, final_price, created_at
		FROM estimates
		WHERE (? = '' OR customer_name LIKE ? OR notes LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	summaries := make([]EstimateSummary, 0)
	for rows.Next() {
		var sum EstimateSummary
		if err := rows.Scan(&sum.ID, &sum.CustomerName, &sum.FinalPrice, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}

	return summaries, nil
}

// DeleteEstimate removes one stored estimate.
func (s *Store) DeleteEstimate(id string) error {
	result, err := s.db.Exec(`DELETE FROM estimates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
