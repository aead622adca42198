package main

import (
	"log/slog"
	"net/http"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

func (s *server) handleGetKnobs(w http.ResponseWriter, r *http.Request) {
	knobs, err := s.store.GetKnobs()
	if err != nil {
		slog.Error("failed to load knob defaults", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load knob defaults")
		return
	}
	writeJSON(w, http.StatusOK, knobs)
}

func (s *server) handleUpdateKnobs(w http.ResponseWriter, r *http.Request) {
	var knobs estimate.FinancialKnobs
	if err := readJSON(r, &knobs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateKnobs(knobs); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.store.SaveKnobs(knobs); err != nil {
		slog.Error("failed to save knob defaults", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save knob defaults")
		return
	}
	writeJSON(w, http.StatusOK, knobs)
}

func validateKnobs(k estimate.FinancialKnobs) string {
	percents := []struct {
		name  string
		value float64
	}{
		{"waste_percent", k.WastePercent},
		{"sundries_percent", k.SundriesPercent},
		{"office_cost_percent", k.OfficeCostPercent},
		{"margin_percent", k.MarginPercent},
		{"sales_tax_percent", k.SalesTaxPercent},
	}
	for _, p := range percents {
		if p.value < 0 {
			return p.name + " must not be negative"
		}
	}
	if k.MarginPercent >= 100 {
		return "margin_percent must be less than 100"
	}
	return ""
}
