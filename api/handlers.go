/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and the store.

ENDPOINTS:
  Employees:
    GET    /api/employees                    List all employees
    POST   /api/employees                    Create employee
    GET    /api/employees/{id}               Get employee
    POST   /api/employees/{id}/terminate     Set last day, close assignments
    GET    /api/employees/{id}/payslip       Compute payslip for a range

  Records:
    POST   /api/children                     Register a dependent child
    POST   /api/positions                    Create position assignment
    POST   /api/contracts                    Create contract assignment
    POST   /api/bonuses                      Create one-off bonus

  Reports:
    GET    /api/reports/annual               Per-employee income ranking

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario
    POST   /api/scenarios/reset              Wipe the database (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (missing employee id, malformed dates)
  - 404: Employee not found
  - 500: Store/supplier failures

  The payslip computation is all-or-nothing: a failed fetch returns 500,
  never a partial payslip.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *payroll.Engine

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:  store,
		Engine: payroll.NewEngine(store),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	hireDate, err := payroll.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), payroll.Employee{
		ID:       payroll.EmployeeID(req.ID),
		Name:     req.Name,
		Title:    req.Title,
		HireDate: hireDate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: string(id)})
}

// TerminateEmployee sets the employee's last day and closes any
// open-ended assignments on that date.
func (h *Handler) TerminateEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	var req TerminateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	on, err := payroll.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Store.TerminateEmployee(r.Context(), id, on); err != nil {
		if payroll.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to terminate employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// CreateChild registers a dependent child.
func (h *Handler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	birth, err := payroll.ParseDate(req.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid birth_date", err)
		return
	}

	child := payroll.Child{
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Name:       req.Name,
		BirthDate:  birth,
	}
	if req.SecondParentID != nil {
		sp := payroll.EmployeeID(*req.SecondParentID)
		child.SecondParentID = &sp
	}

	id, err := h.Store.CreateChild(r.Context(), child)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create child", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: string(id)})
}

// CreatePosition creates a salaried position assignment.
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req CreatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	start, end, err := parseInterval(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dates", err)
		return
	}

	workRate := decimal.NewFromInt(1)
	if req.WorkRate > 0 {
		workRate = decimal.NewFromFloat(req.WorkRate)
	}

	id, err := h.Store.CreatePosition(r.Context(), payroll.PositionAssignment{
		EmployeeID:  payroll.EmployeeID(req.EmployeeID),
		Title:       req.Title,
		MonthlyRate: payroll.NewMoney(req.MonthlyRate),
		WorkRate:    workRate,
		Start:       start,
		End:         end,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create position", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: string(id)})
}

// CreateContract creates a contract assignment.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	start, end, err := parseInterval(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dates", err)
		return
	}

	id, err := h.Store.CreateContract(r.Context(), payroll.ContractAssignment{
		EmployeeID:  payroll.EmployeeID(req.EmployeeID),
		Title:       req.Title,
		MonthlyRate: payroll.NewMoney(req.MonthlyRate),
		Start:       start,
		End:         end,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: string(id)})
}

// CreateBonus creates a one-off signed bonus.
func (h *Handler) CreateBonus(w http.ResponseWriter, r *http.Request) {
	var req CreateBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	day, err := payroll.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	id, err := h.Store.CreateBonus(r.Context(), payroll.Bonus{
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Title:      req.Title,
		Amount:     payroll.NewMoney(req.Amount),
		Date:       day,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create bonus", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: string(id)})
}

// =============================================================================
// PAYSLIP HANDLER
// =============================================================================

// GetPayslip computes the payslip for an employee over a date range.
// GET /api/employees/{id}/payslip?start=YYYY-MM-DD&end=YYYY-MM-DD
// start defaults to one year before now, end to now.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	query, err := parseQueryRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	slip, err := h.Engine.Payslip(r.Context(), id, query)
	if err != nil {
		switch {
		case payroll.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Employee not found", nil)
		case payroll.IsClientError(err):
			writeError(w, http.StatusBadRequest, "Invalid request", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to compute payslip", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// AnnualReport ranks employees by prorated income over a date range.
// GET /api/reports/annual?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) AnnualReport(w http.ResponseWriter, r *http.Request) {
	query, err := parseQueryRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	entries := make([]ReportEntryDTO, 0, len(employees))
	for _, emp := range employees {
		if emp.HireDate.After(query.End) {
			continue
		}
		slip, err := h.Engine.Payslip(r.Context(), emp.ID, query)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute report", err)
			return
		}
		entries = append(entries, ReportEntryDTO{
			EmployeeID:  string(emp.ID),
			Name:        emp.Name,
			TotalIncome: slip.Gross.Round2().Float64(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalIncome != entries[j].TotalIncome {
			return entries[i].TotalIncome > entries[j].TotalIncome
		}
		return entries[i].Name < entries[j].Name
	})

	writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseQueryRange applies the default window (one year back from today)
// for missing parameters.
func parseQueryRange(startStr, endStr string) (payroll.Range, error) {
	end := payroll.Today()
	start := end.AddYears(-1)

	var err error
	if startStr != "" {
		if start, err = payroll.ParseDate(startStr); err != nil {
			return payroll.Range{}, err
		}
	}
	if endStr != "" {
		if end, err = payroll.ParseDate(endStr); err != nil {
			return payroll.Range{}, err
		}
	}
	return payroll.NewRange(start, end)
}

// parseInterval parses a start date and optional end date.
func parseInterval(startStr string, endStr *string) (payroll.Date, *payroll.Date, error) {
	start, err := payroll.ParseDate(startStr)
	if err != nil {
		return payroll.Date{}, nil, err
	}
	if endStr == nil || *endStr == "" {
		return start, nil, nil
	}
	end, err := payroll.ParseDate(*endStr)
	if err != nil {
		return payroll.Date{}, nil, err
	}
	if end.Before(start) {
		return payroll.Date{}, nil, payroll.ErrInvalidRange
	}
	return start, &end, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
