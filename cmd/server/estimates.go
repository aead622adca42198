package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/export"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/metrics"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/store"
)

// calculateRequest is the body for calculate and create. The owner price list
// always comes from the database; vendor and custom items travel with the
// request because they belong to this one estimate.
type calculateRequest struct {
	Measurements estimate.Measurements    `json:"measurements"`
	VendorItems  []estimate.CatalogItem   `json:"vendor_items"`
	CustomItems  []estimate.CatalogItem   `json:"custom_items"`
	Overrides    estimate.Overrides       `json:"overrides"`
	Selection    estimate.SelectionState  `json:"selection"`
	Knobs        *estimate.FinancialKnobs `json:"knobs"`
	VendorQuotes []estimate.VendorQuote   `json:"vendor_quotes"`
	Customer     estimate.CustomerInfo    `json:"customer"`
}

type estimateResponse struct {
	ID       string             `json:"id,omitempty"`
	Estimate *estimate.Estimate `json:"estimate"`
	Warnings []estimate.Warning `json:"warnings"`
}

// calculate runs the engine for one request, filling in the stored price
// list and, when the request carries no knobs, the stored defaults.
func (s *server) calculate(req calculateRequest) (*estimate.Estimate, []estimate.Warning, error) {
	priceList, err := s.store.ListPriceList()
	if err != nil {
		return nil, nil, fmt.Errorf("load price list: %w", err)
	}

	knobs := estimate.FinancialKnobs{}
	if req.Knobs != nil {
		knobs = *req.Knobs
	} else {
		knobs, err = s.store.GetKnobs()
		if err != nil {
			return nil, nil, fmt.Errorf("load knob defaults: %w", err)
		}
	}

	start := time.Now()
	est, err := estimate.Calculate(estimate.Input{
		Measurements: req.Measurements,
		Sources: estimate.CatalogSources{
			PriceList:   priceList,
			VendorItems: req.VendorItems,
			CustomItems: req.CustomItems,
		},
		Overrides:    req.Overrides,
		Selection:    req.Selection,
		Knobs:        knobs,
		VendorQuotes: req.VendorQuotes,
		Customer:     req.Customer,
	})
	metrics.ObserveCalculation(start, err)
	if err != nil {
		return nil, nil, err
	}

	warnings := estimate.Validate(est)
	if warnings == nil {
		warnings = []estimate.Warning{}
	}
	return est, warnings, nil
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	est, warnings, err := s.calculate(req)
	if err != nil {
		s.writeCalculateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse{Estimate: est, Warnings: warnings})
}

func (s *server) handleCreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	est, warnings, err := s.calculate(req)
	if err != nil {
		s.writeCalculateError(w, err)
		return
	}

	id, err := s.store.SaveEstimate(est, warnings)
	if err != nil {
		slog.Error("failed to save estimate", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save estimate")
		return
	}

	writeJSON(w, http.StatusCreated, estimateResponse{ID: id, Estimate: est, Warnings: warnings})
}

// writeCalculateError maps engine errors to status codes. A configuration
// error is the caller's to fix; anything else is ours.
func (s *server) writeCalculateError(w http.ResponseWriter, err error) {
	var cfgErr *estimate.ConfigurationError
	if errors.As(err, &cfgErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: cfgErr.Error(),
			Field: cfgErr.Field,
		})
		return
	}
	slog.Error("calculation failed", "err", err)
	writeError(w, http.StatusInternalServerError, "calculation failed")
}

func (s *server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	summaries, err := s.store.ListEstimates(query)
	if err != nil {
		slog.Error("failed to list estimates", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list estimates")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.GetEstimate(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "estimate not found")
			return
		}
		slog.Error("failed to load estimate", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load estimate")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *server) handleDeleteEstimate(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteEstimate(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "estimate not found")
			return
		}
		slog.Error("failed to delete estimate", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete estimate")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "xlsx")
}

func (s *server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "pdf")
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	stored, err := s.store.GetEstimate(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "estimate not found")
			return
		}
		slog.Error("failed to load estimate", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load estimate")
		return
	}

	data := export.Build(&stored.Estimate, nil)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		body, err = export.GenerateExcel(data)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		body, err = export.GeneratePDF(data)
		contentType = "application/pdf"
	}
	if err != nil {
		slog.Error("failed to generate export", "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to generate export")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(stored, format)))
	w.Write(body)
}

func exportFileName(stored *store.StoredEstimate, format string) string {
	name := strings.TrimSpace(stored.Estimate.Customer.Name)
	if name == "" {
		name = "estimate"
	}
	name = strings.ReplaceAll(name, " ", "-")
	return fmt.Sprintf("%s-%s.%s", name, stored.ID[:8], format)
}
