package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/config"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/db"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/logging"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/metrics"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/migrations"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/seed"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/store"
)

type server struct {
	store *store.Store
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			slog.Error("failed to run database migrations", "err", err)
			os.Exit(1)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		slog.Error("failed to seed defaults", "err", err)
		os.Exit(1)
	}
	if stats.Inserts > 0 {
		slog.Info("seeded default data", "inserts", stats.Inserts)
	}

	srv := &server{store: store.New(database)}

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimates/calculate", s.handleCalculate)
		r.Post("/estimates", s.handleCreateEstimate)
		r.Get("/estimates", s.handleListEstimates)
		r.Get("/estimates/{id}", s.handleGetEstimate)
		r.Delete("/estimates/{id}", s.handleDeleteEstimate)
		r.Get("/estimates/{id}/export/excel", s.handleExportExcel)
		r.Get("/estimates/{id}/export/pdf", s.handleExportPDF)

		r.Get("/price-list", s.handleListPriceList)
		r.Post("/price-list", s.handleCreatePriceListItem)
		r.Post("/price-list/import", s.handleImportPriceList)
		r.Get("/price-list/{id}", s.handleGetPriceListItem)
		r.Put("/price-list/{id}", s.handleUpdatePriceListItem)
		r.Delete("/price-list/{id}", s.handleDeletePriceListItem)

		r.Get("/settings/knobs", s.handleGetKnobs)
		r.Put("/settings/knobs", s.handleUpdateKnobs)
	})

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", handleHealthz)

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
