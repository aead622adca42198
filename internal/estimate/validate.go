package estimate

import (
	"fmt"
	"strings"
)

const severityWarning = "warning"

// Heuristic floor: a reasonable materials spend per square. Estimates below
// it usually mean a forgotten shingle or underlayment line.
const materialsFloorPerSquare = 50

// validationRule inspects a finished estimate and may emit one warning.
type validationRule struct {
	id    string
	check func(est *Estimate) *Warning
}

var validationRules = []validationRule{
	{"waste-zero", checkWasteZero},
	{"no-labor", checkNoLabor},
	{"no-underlayment", checkNoUnderlayment},
	{"no-drip-edge", checkNoDripEdge},
	{"margin-range", checkMarginRange},
	{"materials-floor", checkMaterialsFloor},
}

// Validate runs the sanity-check battery over a finished estimate. Findings
// are always advisory; nothing here blocks calculation, saving, or export.
func Validate(est *Estimate) []Warning {
	if est == nil {
		return nil
	}
	var warnings []Warning
	for _, rule := range validationRules {
		if w := rule.check(est); w != nil {
			w.ID = rule.id
			w.Severity = severityWarning
			warnings = append(warnings, *w)
		}
	}
	return warnings
}

func checkWasteZero(est *Estimate) *Warning {
	if est.Knobs.WastePercent == 0 {
		return &Warning{
			Message: "waste percentage is 0; material quantities have no cutting allowance",
			Field:   "waste_percent",
		}
	}
	return nil
}

func checkNoLabor(est *Estimate) *Warning {
	if len(est.ByCategory[CategoryLabor]) == 0 {
		return &Warning{Message: "no labor items are selected"}
	}
	return nil
}

func checkNoUnderlayment(est *Estimate) *Warning {
	if !anyLineItem(est, func(li LineItem) bool {
		return li.Category == CategoryMaterials && strings.Contains(strings.ToLower(li.Name), "underlayment")
	}) {
		return &Warning{Message: "no underlayment material is on the estimate"}
	}
	return nil
}

func checkNoDripEdge(est *Estimate) *Warning {
	if !anyLineItem(est, func(li LineItem) bool {
		return strings.Contains(strings.ToLower(li.Name), "drip edge")
	}) {
		return &Warning{Message: "no drip edge item is on the estimate"}
	}
	return nil
}

func checkMarginRange(est *Estimate) *Warning {
	m := est.Knobs.MarginPercent
	if m < 25 || m > 60 {
		return &Warning{
			Message: fmt.Sprintf("margin of %.1f%% is outside the typical 25-60%% range", m),
			Field:   "margin_percent",
		}
	}
	return nil
}

func checkMaterialsFloor(est *Estimate) *Warning {
	floor := est.Measurements.TotalSquares * materialsFloorPerSquare
	if est.Totals[CategoryMaterials] < floor {
		return &Warning{
			Message: fmt.Sprintf("materials total $%.2f is below the $%.2f heuristic floor for %.1f squares",
				est.Totals[CategoryMaterials], floor, est.Measurements.TotalSquares),
		}
	}
	return nil
}

func anyLineItem(est *Estimate, pred func(LineItem) bool) bool {
	for _, items := range est.ByCategory {
		for _, li := range items {
			if pred(li) {
				return true
			}
		}
	}
	for _, li := range est.OptionalItems {
		if pred(li) {
			return true
		}
	}
	return false
}
