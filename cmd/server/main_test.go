package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
	"github.com/timcoe429/northstarroof-estimator-sub000/internal/store"
)

func newTestServer(t *testing.T) (*server, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE estimates (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			final_price REAL NOT NULL DEFAULT 0,
			estimate_json TEXT NOT NULL,
			warnings_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE price_list (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			unit TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			coverage REAL,
			coverage_unit TEXT,
			proposal_description TEXT,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT
		);
		CREATE TABLE knob_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			waste_percent REAL NOT NULL,
			sundries_percent REAL NOT NULL,
			office_cost_percent REAL NOT NULL,
			margin_percent REAL NOT NULL,
			sales_tax_percent REAL NOT NULL,
			updated_at TEXT
		);
		INSERT INTO knob_config (id, waste_percent, sundries_percent, office_cost_percent, margin_percent, sales_tax_percent)
		VALUES (1, 10, 7, 10, 40, 0);
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return &server{store: store.New(db)}, db
}

func seedPriceListItem(t *testing.T, srv *server, it estimate.CatalogItem) estimate.CatalogItem {
	t.Helper()

	stored, err := srv.store.InsertPriceListItem(it)
	if err != nil {
		t.Fatalf("failed to seed price list item: %v", err)
	}
	return stored
}

func doJSON(t *testing.T, srv *server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "estimator_http_requests_total") &&
		!strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics body does not look like a Prometheus scrape")
	}
}
