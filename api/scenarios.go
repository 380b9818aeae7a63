/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Dates are anchored to today so the default payslip
  window (one year back) shows interesting period splits.

AVAILABLE SCENARIOS:
  single-parent:   One child aging out mid-window (rate 10 -> 13)
  growing-family:  A birth mid-window plus an older sibling
  contractor-mix:  Positions + contracts + bonuses, no dependents

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees
 3. Register children and income records

NOTE:
  Scenarios reset the database. Only use in development/demo
  environments.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
  - server.go: scenario routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-parent",
		Name:        "Single Parent",
		Description: "One dependent turning 18 mid-window: two tax periods, rate 10 then 13",
	},
	{
		ID:          "growing-family",
		Name:        "Growing Family",
		Description: "A birth mid-window plus an older sibling: three tax periods",
	},
	{
		ID:          "contractor-mix",
		Name:        "Contractor Mix",
		Description: "Position, overlapping contract and bonuses at the flat 13% rate",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "single-parent":
		err = h.loadSingleParent(ctx)
	case "growing-family":
		err = h.loadGrowingFamily(ctx)
	case "contractor-mix":
		err = h.loadContractorMix(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase wipes all records.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleParent(ctx context.Context) error {
	today := payroll.Today()

	id, err := h.Store.CreateEmployee(ctx, payroll.Employee{
		ID:       "emp-morgan",
		Name:     "Morgan Vasquez",
		Title:    "Accountant",
		HireDate: today.AddYears(-6),
	})
	if err != nil {
		return err
	}

	// Turns 18 six months into the default payslip window.
	if _, err := h.Store.CreateChild(ctx, payroll.Child{
		EmployeeID: id,
		Name:       "Alex",
		BirthDate:  today.AddYears(-18).AddDays(-183),
	}); err != nil {
		return err
	}

	_, err = h.Store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID:  id,
		Title:       "Accountant",
		MonthlyRate: payroll.NewMoney(3200),
		WorkRate:    decimal.NewFromInt(1),
		Start:       today.AddYears(-6),
	})
	return err
}

func (h *Handler) loadGrowingFamily(ctx context.Context) error {
	today := payroll.Today()

	first, err := h.Store.CreateEmployee(ctx, payroll.Employee{
		ID:       "emp-priya",
		Name:     "Priya Nair",
		Title:    "Team Lead",
		HireDate: today.AddYears(-4),
	})
	if err != nil {
		return err
	}
	second, err := h.Store.CreateEmployee(ctx, payroll.Employee{
		ID:       "emp-tomas",
		Name:     "Tomas Nair",
		Title:    "Designer",
		HireDate: today.AddYears(-3),
	})
	if err != nil {
		return err
	}

	if _, err := h.Store.CreateChild(ctx, payroll.Child{
		EmployeeID:     first,
		SecondParentID: &second,
		Name:           "Mira",
		BirthDate:      today.AddYears(-7),
	}); err != nil {
		return err
	}
	// Born four months ago: opens a third period mid-window.
	if _, err := h.Store.CreateChild(ctx, payroll.Child{
		EmployeeID:     first,
		SecondParentID: &second,
		Name:           "Ravi",
		BirthDate:      today.AddDays(-120),
	}); err != nil {
		return err
	}

	if _, err := h.Store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID:  first,
		Title:       "Team Lead",
		MonthlyRate: payroll.NewMoney(4500),
		WorkRate:    decimal.NewFromInt(1),
		Start:       today.AddYears(-4),
	}); err != nil {
		return err
	}
	_, err = h.Store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID:  second,
		Title:       "Designer",
		MonthlyRate: payroll.NewMoney(3600),
		WorkRate:    decimal.NewFromFloat(0.8),
		Start:       today.AddYears(-3),
	})
	return err
}

func (h *Handler) loadContractorMix(ctx context.Context) error {
	today := payroll.Today()

	id, err := h.Store.CreateEmployee(ctx, payroll.Employee{
		ID:       "emp-kofi",
		Name:     "Kofi Mensah",
		Title:    "Consultant",
		HireDate: today.AddYears(-2),
	})
	if err != nil {
		return err
	}

	if _, err := h.Store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID:  id,
		Title:       "Staff Consultant",
		MonthlyRate: payroll.NewMoney(2800),
		WorkRate:    decimal.NewFromFloat(0.6),
		Start:       today.AddYears(-2),
	}); err != nil {
		return err
	}
	if _, err := h.Store.CreateContract(ctx, payroll.ContractAssignment{
		EmployeeID:  id,
		Title:       "Migration project",
		MonthlyRate: payroll.NewMoney(1900),
		Start:       today.AddDays(-200),
		End:         datePtr(today.AddDays(-20)),
	}); err != nil {
		return err
	}
	if _, err := h.Store.CreateBonus(ctx, payroll.Bonus{
		EmployeeID: id,
		Title:      "Delivery bonus",
		Amount:     payroll.NewMoney(1500),
		Date:       today.AddDays(-19),
	}); err != nil {
		return err
	}
	// Signed negative amount: a deduction.
	_, err = h.Store.CreateBonus(ctx, payroll.Bonus{
		EmployeeID: id,
		Title:      "Hardware damage",
		Amount:     payroll.NewMoney(-250),
		Date:       today.AddDays(-10),
	})
	return err
}

func datePtr(d payroll.Date) *payroll.Date { return &d }
