package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/importer"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/store"
)

const maxImportBytes = 10 << 20 // 10 MiB

func (s *server) handleListPriceList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListPriceList()
	if err != nil {
		slog.Error("failed to list price list", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list price list")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGetPriceListItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetPriceListItem(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "price list item not found")
			return
		}
		slog.Error("failed to load price list item", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load price list item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleCreatePriceListItem(w http.ResponseWriter, r *http.Request) {
	var item estimate.CatalogItem
	if err := readJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePriceListItem(item); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	stored, err := s.store.InsertPriceListItem(item)
	if err != nil {
		slog.Error("failed to create price list item", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create price list item")
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *server) handleUpdatePriceListItem(w http.ResponseWriter, r *http.Request) {
	var item estimate.CatalogItem
	if err := readJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = chi.URLParam(r, "id")
	if msg := validatePriceListItem(item); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.store.UpdatePriceListItem(item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "price list item not found")
			return
		}
		slog.Error("failed to update price list item", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update price list item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleDeletePriceListItem(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeletePriceListItem(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "price list item not found")
			return
		}
		slog.Error("failed to delete price list item", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete price list item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportPriceList accepts a multipart upload ("file") of a .csv or
// .xlsx price sheet. Rows that validate are inserted; the response reports
// per-row errors so the owner can fix the sheet and retry.
func (s *server) handleImportPriceList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	result, err := importer.ParsePriceList(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted := 0
	for _, item := range result.Items {
		if _, err := s.store.InsertPriceListItem(item); err != nil {
			slog.Error("failed to insert imported item", "name", item.Name, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to insert imported items")
			return
		}
		inserted++
	}

	slog.Info("imported price list", "file", header.Filename, "inserted", inserted, "error_rows", result.ErrorRows)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_rows": result.TotalRows,
		"valid_rows": result.ValidRows,
		"error_rows": result.ErrorRows,
		"inserted":   inserted,
		"errors":     result.Errors,
	})
}

func validatePriceListItem(item estimate.CatalogItem) string {
	if item.Name == "" {
		return "name is required"
	}
	if item.Price < 0 {
		return "price must not be negative"
	}
	switch item.Category {
	case estimate.CategoryMaterials, estimate.CategoryLabor, estimate.CategoryEquipment,
		estimate.CategoryAccessories, estimate.CategorySchafer:
	default:
		return "category must be one of materials, labor, equipment, accessories, schafer"
	}
	if item.Coverage < 0 {
		return "coverage must not be negative"
	}
	if item.Coverage > 0 && item.CoverageUnit == "" {
		return "coverage_unit is required when coverage is set"
	}
	return ""
}
