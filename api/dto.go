/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary values cross the JSON boundary as float64. The core computes
  in decimal; conversion happens only here, after rounding.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/payslip.go: The domain types these mirror
*/
package api

import (
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Title           string  `json:"title,omitempty"`
	HireDate        string  `json:"hire_date"`
	TerminationDate *string `json:"termination_date,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	HireDate string `json:"hire_date"`
}

// TerminateEmployeeRequest sets an employee's last day.
type TerminateEmployeeRequest struct {
	Date string `json:"date"`
}

// CreateChildRequest registers a dependent child.
type CreateChildRequest struct {
	EmployeeID     string  `json:"employee_id"`
	SecondParentID *string `json:"second_parent_id,omitempty"`
	Name           string  `json:"name"`
	BirthDate      string  `json:"birth_date"`
}

// CreatePositionRequest creates a salaried position assignment.
type CreatePositionRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Title       string  `json:"title"`
	MonthlyRate float64 `json:"monthly_rate"`
	WorkRate    float64 `json:"work_rate,omitempty"` // 0 = full time (1.0)
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"` // null = ongoing
}

// CreateContractRequest creates a contract assignment.
type CreateContractRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Title       string  `json:"title"`
	MonthlyRate float64 `json:"monthly_rate"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
}

// CreateBonusRequest creates a one-off signed bonus.
type CreateBonusRequest struct {
	EmployeeID string  `json:"employee_id"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
}

// CreatedResponse returns the id of a newly created record.
type CreatedResponse struct {
	ID string `json:"id"`
}

// =============================================================================
// PAYSLIP RESPONSE
// =============================================================================

// PayslipDTO is the full payslip response.
type PayslipDTO struct {
	FullName       string            `json:"full_name"`
	Positions      []LineItemDTO     `json:"positions"`
	Contracts      []LineItemDTO     `json:"contracts"`
	Bonuses        []BonusItemDTO    `json:"bonuses"`
	TaxCalculation TaxCalculationDTO `json:"tax_calculation"`
	Totals         TotalsDTO         `json:"totals"`
}

// LineItemDTO is a prorated position or contract line item.
type LineItemDTO struct {
	Type   string  `json:"type"` // "position" or "contract"
	Title  string  `json:"title"`
	Rate   float64 `json:"rate"`
	Start  string  `json:"start"`
	End    *string `json:"end"` // null = ongoing
	Amount float64 `json:"amount"`
}

// BonusItemDTO is a bonus line item.
type BonusItemDTO struct {
	Type   string  `json:"type"` // always "bonus"
	Title  string  `json:"title"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// TaxCalculationDTO is the period breakdown with totals.
type TaxCalculationDTO struct {
	Periods        []TaxPeriodDTO  `json:"periods"`
	Total          float64         `json:"total"`
	TaxTotal       float64         `json:"taxTotal"`
	NetTotal       float64         `json:"netTotal"`
	TaxRateChanges []RateChangeDTO `json:"taxRateChanges"`
}

// TaxPeriodDTO is one sub-period of constant tax rate.
type TaxPeriodDTO struct {
	Period     string  `json:"period"` // "start - end"
	Days       int     `json:"days"`
	ChildCount int     `json:"child_count"`
	TaxRate    int     `json:"tax_rate"`
	Income     float64 `json:"income"`
	Tax        float64 `json:"tax"`
}

// RateChangeDTO is one entry of the tax-rate change log.
type RateChangeDTO struct {
	Date         string `json:"date"`
	PreviousRate int    `json:"previous_rate"`
	NewRate      int    `json:"new_rate"`
	TriggeredBy  string `json:"triggered_by"`
}

// TotalsDTO is the independently computed top-level totals block.
type TotalsDTO struct {
	Gross float64 `json:"gross"`
	Tax   float64 `json:"tax"`
	Net   float64 `json:"net"`
}

// =============================================================================
// REPORTS AND SCENARIOS
// =============================================================================

// ReportEntryDTO is one row of the annual income report.
type ReportEntryDTO struct {
	EmployeeID  string  `json:"employee_id"`
	Name        string  `json:"name"`
	TotalIncome float64 `json:"total_income"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       string(e.ID),
		Name:     e.Name,
		Title:    e.Title,
		HireDate: e.HireDate.String(),
	}
	if e.TerminationDate != nil {
		s := e.TerminationDate.String()
		dto.TerminationDate = &s
	}
	return dto
}

func toPayslipDTO(slip *payroll.Payslip) PayslipDTO {
	periods := make([]TaxPeriodDTO, len(slip.Periods))
	for i, p := range slip.Periods {
		periods[i] = TaxPeriodDTO{
			Period:     p.Period.String(),
			Days:       p.Period.Days(),
			ChildCount: p.Period.DependentCount,
			TaxRate:    p.Period.TaxRate,
			Income:     p.Income.Float64(),
			Tax:        p.Tax.Float64(),
		}
	}

	changes := make([]RateChangeDTO, len(slip.RateChanges))
	for i, c := range slip.RateChanges {
		changes[i] = RateChangeDTO{
			Date:         c.Date.String(),
			PreviousRate: c.PreviousRate,
			NewRate:      c.NewRate,
			TriggeredBy:  c.TriggeredBy,
		}
	}

	return PayslipDTO{
		FullName:  slip.Employee.Name,
		Positions: toLineItemDTOs(slip.Positions),
		Contracts: toLineItemDTOs(slip.Contracts),
		Bonuses:   toBonusItemDTOs(slip.Bonuses),
		TaxCalculation: TaxCalculationDTO{
			Periods:        periods,
			Total:          slip.Total.Float64(),
			TaxTotal:       slip.TaxTotal.Float64(),
			NetTotal:       slip.NetTotal.Float64(),
			TaxRateChanges: changes,
		},
		Totals: TotalsDTO{
			Gross: slip.Gross.Round2().Float64(),
			Tax:   slip.Tax.Round2().Float64(),
			Net:   slip.Net.Round2().Float64(),
		},
	}
}

func toLineItemDTOs(lines []payroll.AssignmentLine) []LineItemDTO {
	dtos := make([]LineItemDTO, len(lines))
	for i, l := range lines {
		dto := LineItemDTO{
			Type:   l.Kind,
			Title:  l.Title,
			Rate:   l.Rate.Float64(),
			Start:  l.Start.String(),
			Amount: l.Amount.Float64(),
		}
		if l.End != nil {
			s := l.End.String()
			dto.End = &s
		}
		dtos[i] = dto
	}
	return dtos
}

func toBonusItemDTOs(bonuses []payroll.BonusLine) []BonusItemDTO {
	dtos := make([]BonusItemDTO, len(bonuses))
	for i, b := range bonuses {
		dtos[i] = BonusItemDTO{
			Type:   "bonus",
			Title:  b.Title,
			Date:   b.Date.String(),
			Amount: b.Amount.Float64(),
		}
	}
	return dtos
}
