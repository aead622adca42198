package store

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/timcoe429/northstarroof-estimator-sub000/internal/estimate"
)

func newTestStore(t *testing.T) *Store {
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
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return New(db)
}

func calculatedEstimate(t *testing.T, customer string) *estimate.Estimate {
	t.Helper()

	est, err := estimate.Calculate(estimate.Input{
		Measurements: estimate.Measurements{TotalSquares: 20, EaveLength: 100, RakeLength: 60},
		Sources: estimate.CatalogSources{PriceList: []estimate.CatalogItem{
			{ID: "shingles", Name: "Shingles", Category: estimate.CategoryMaterials, Unit: "bundle", Price: 43.5, Coverage: 0.333, CoverageUnit: estimate.CoverageSquares},
		}},
		Selection: estimate.SelectionState{SelectedItemIDs: []string{"shingles"}},
		Knobs:     estimate.FinancialKnobs{WastePercent: 10, MarginPercent: 40},
		Customer:  estimate.CustomerInfo{Name: customer, Notes: "call before delivery"},
	})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	return est
}

func TestSaveAndGetEstimateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	est := calculatedEstimate(t, "Hartman Residence")
	warnings := estimate.Validate(est)

	id, err := s.SaveEstimate(est, warnings)
	if err != nil {
		t.Fatalf("SaveEstimate returned error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	stored, err := s.GetEstimate(id)
	if err != nil {
		t.Fatalf("GetEstimate returned error: %v", err)
	}

	if stored.Estimate.FinalPrice != est.FinalPrice {
		t.Errorf("FinalPrice = %v, want %v", stored.Estimate.FinalPrice, est.FinalPrice)
	}
	if stored.Estimate.Customer.Name != "Hartman Residence" {
		t.Errorf("customer = %q", stored.Estimate.Customer.Name)
	}
	// Base quantities must survive the round trip so waste can be recomputed.
	items := stored.Estimate.ByCategory[estimate.CategoryMaterials]
	if len(items) != 1 || items[0].BaseQuantity != est.ByCategory[estimate.CategoryMaterials][0].BaseQuantity {
		t.Errorf("line items did not round-trip: %+v", items)
	}
	if len(stored.Warnings) != len(warnings) {
		t.Errorf("warnings did not round-trip: got %d, want %d", len(stored.Warnings), len(warnings))
	}
}

func TestGetEstimateNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetEstimate("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEstimatesFiltersByCustomerAndNotes(t *testing.T) {
	s := newTestStore(t)

	for _, customer := range []string{"Hartman Residence", "Miller Barn", "Hartley Office"} {
		if _, err := s.SaveEstimate(calculatedEstimate(t, customer), nil); err != nil {
			t.Fatalf("SaveEstimate(%q) returned error: %v", customer, err)
		}
	}

	all, err := s.ListEstimates("")
	if err != nil {
		t.Fatalf("ListEstimates returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(all))
	}

	hart, err := s.ListEstimates("Hart")
	if err != nil {
		t.Fatalf("ListEstimates filter returned error: %v", err)
	}
	if len(hart) != 2 {
		t.Fatalf("expected 2 estimates matching 'Hart', got %+v", hart)
	}

	byNotes, err := s.ListEstimates("delivery")
	if err != nil {
		t.Fatalf("ListEstimates notes filter returned error: %v", err)
	}
	if len(byNotes) != 3 {
		t.Fatalf("expected notes filter to match all, got %d", len(byNotes))
	}
}

func TestDeleteEstimate(t *testing.T) {
	s := newTestStore(t)
	id, err := s.SaveEstimate(calculatedEstimate(t, "Hartman Residence"), nil)
	if err != nil {
		t.Fatalf("SaveEstimate returned error: %v", err)
	}

	if err := s.DeleteEstimate(id); err != nil {
		t.Fatalf("DeleteEstimate returned error: %v", err)
	}
	if err := s.DeleteEstimate(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPriceListCRUD(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertPriceListItem(estimate.CatalogItem{
		Name:         "Hip & Ridge Cap",
		Category:     estimate.CategoryMaterials,
		Unit:         "bundle",
		Price:        62.5,
		Coverage:     25,
		CoverageUnit: estimate.CoverageLinearFeet,
	})
	if err != nil {
		t.Fatalf("InsertPriceListItem returned error: %v", err)
	}
	if inserted.ID == "" {
		t.Fatal("expected a generated id")
	}

	got, err := s.GetPriceListItem(inserted.ID)
	if err != nil {
		t.Fatalf("GetPriceListItem returned error: %v", err)
	}
	if got.Coverage != 25 || got.CoverageUnit != estimate.CoverageLinearFeet {
		t.Errorf("coverage did not round-trip: %+v", got)
	}
	if got.Kind != estimate.KindPriceList {
		t.Errorf("expected price_list kind, got %q", got.Kind)
	}

	got.Price = 65
	if err := s.UpdatePriceListItem(got); err != nil {
		t.Fatalf("UpdatePriceListItem returned error: %v", err)
	}

	items, err := s.ListPriceList()
	if err != nil {
		t.Fatalf("ListPriceList returned error: %v", err)
	}
	if len(items) != 1 || items[0].Price != 65 {
		t.Fatalf("unexpected price list: %+v", items)
	}

	if err := s.DeletePriceListItem(inserted.ID); err != nil {
		t.Fatalf("DeletePriceListItem returned error: %v", err)
	}
	if err := s.DeletePriceListItem(inserted.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPriceListItemWithoutCoverage(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertPriceListItem(estimate.CatalogItem{
		Name:     "Snowguard Install",
		Category: estimate.CategoryAccessories,
		Unit:     "each",
		Price:    45,
	})
	if err != nil {
		t.Fatalf("InsertPriceListItem returned error: %v", err)
	}

	got, err := s.GetPriceListItem(inserted.ID)
	if err != nil {
		t.Fatalf("GetPriceListItem returned error: %v", err)
	}
	if got.HasCoverage() {
		t.Errorf("expected no coverage, got %+v", got)
	}
}

func TestKnobsSingleton(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetKnobs(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before seed, got %v", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO knob_config (id, waste_percent, sundries_percent, office_cost_percent, margin_percent, sales_tax_percent)
		VALUES (1, 10, 7, 10, 40, 0)
	`); err != nil {
		t.Fatalf("seed knobs: %v", err)
	}

	k, err := s.GetKnobs()
	if err != nil {
		t.Fatalf("GetKnobs returned error: %v", err)
	}
	if k.MarginPercent != 40 || k.WastePercent != 10 {
		t.Fatalf("unexpected knobs: %+v", k)
	}

	k.MarginPercent = 35
	if err := s.SaveKnobs(k); err != nil {
		t.Fatalf("SaveKnobs returned error: %v", err)
	}
	updated, err := s.GetKnobs()
	if err != nil {
		t.Fatalf("GetKnobs after save returned error: %v", err)
	}
	if updated.MarginPercent != 35 {
		t.Fatalf("expected margin 35 after save, got %v", updated.MarginPercent)
	}
}
