/*
Package payroll implements the payslip computation engine.

PURPOSE:
  Given an employee's income sources (salaried positions, fixed-term
  contracts, one-off bonuses) and dependents (children under 18, which
  reduce the applicable tax rate), the engine produces a payslip for an
  arbitrary date range, split into sub-periods whenever the tax rate
  changes.

PIPELINE:
  1. dependent.go: each qualifying child becomes a pair of boundary
     events delimiting its dependent window within the query range.
  2. timeline.go: an event sweep turns those events into a gapless,
     non-overlapping sequence of TaxPeriods with per-period rates.
  3. income.go: every position/contract is prorated by inclusive day
     count into each period; bonuses land whole in a single period.
  4. payslip.go: totals, tax-rate change log, and line items are
     assembled into the final Payslip.

DESIGN PRINCIPLES:
  1. Purity: the engine owns no storage; income records arrive through
     the IncomeSource interface, so tests run on fixture data.
  2. Precision: all money math uses decimal.Decimal, never float64.
  3. Determinism: identical inputs always produce identical payslips.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: a decimal monetary amount
  - Employee, Child, PositionAssignment, ContractAssignment, Bonus:
    the raw records the engine consumes
  - TaxPeriod: a derived sub-interval with constant dependent count

SEE ALSO:
  - timeline.go: period construction
  - income.go: proration rules
  - payslip.go: aggregation and the IncomeSource contract
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TAX CONSTANTS
// =============================================================================

const (
	// BaseTaxRate is the percentage applied with zero dependents.
	BaseTaxRate = 13

	// RatePerDependent is the percentage-point reduction per dependent child.
	RatePerDependent = 3

	// DependentAgeYears is how long a child counts as a dependent.
	DependentAgeYears = 18

	// DaysPerMonth is the proration convention: a monthly rate covers 30 days.
	DaysPerMonth = 30
)

// TaxRateFor returns the tax rate percentage for a dependent count.
// The rate is floored at zero and never negative.
func TaxRateFor(dependents int) int {
	rate := BaseTaxRate - RatePerDependent*dependents
	if rate < 0 {
		return 0
	}
	return rate
}

// =============================================================================
// MONEY - Decimal monetary amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(v float64) Money          { return Money{Value: decimal.NewFromFloat(v)} }
func NewMoneyFromInt(v int64) Money     { return Money{Value: decimal.NewFromInt(v)} }
func ZeroMoney() Money                  { return Money{Value: decimal.Zero} }

// MoneyFromString parses a decimal string, returning zero on failure.
// Used when loading values persisted as text.
func MoneyFromString(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool             { return m.Value.Equal(o.Value) }

// Round2 rounds to two decimal places (cents).
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

// Float64 converts for the JSON boundary. Core math never round-trips
// through this.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

func (m Money) String() string { return m.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RecordID string

// =============================================================================
// RAW RECORDS - Inputs fetched by the host layer
// =============================================================================

// Employee is the person a payslip is computed for. Read-only here.
type Employee struct {
	ID              EmployeeID
	Name            string
	Title           string
	HireDate        Date
	TerminationDate *Date // nil = still employed
}

// Child belongs to one employee and optionally a second linked employee.
// It defines a dependent window [BirthDate, BirthDate + 18 years).
type Child struct {
	ID             RecordID
	EmployeeID     EmployeeID
	SecondParentID *EmployeeID
	Name           string
	BirthDate      Date
}

// DependentUntil is the first date the child no longer counts as a
// dependent (the 18th birthday).
func (c Child) DependentUntil() Date {
	return c.BirthDate.AddYears(DependentAgeYears)
}

// PositionAssignment is recurring salaried income accruing continuously
// over its active interval. WorkRate is a fractional multiplier (1.0 =
// full time).
type PositionAssignment struct {
	ID          RecordID
	EmployeeID  EmployeeID
	Title       string
	MonthlyRate Money
	WorkRate    decimal.Decimal
	Start       Date
	End         *Date // nil = ongoing
}

// ContractAssignment has the same proration semantics as a position but
// no work-rate multiplier.
type ContractAssignment struct {
	ID          RecordID
	EmployeeID  EmployeeID
	Title       string
	MonthlyRate Money
	Start       Date
	End         *Date // nil = ongoing
}

// Bonus is a signed point event: the full amount lands on a single date.
type Bonus struct {
	ID         RecordID
	EmployeeID EmployeeID
	Title      string
	Amount     Money
	Date       Date
}

// =============================================================================
// TAX PERIOD - Derived sub-interval with constant dependent count
// =============================================================================

// TaxPeriod is a maximal sub-interval of the query range over which the
// dependent count (and hence the tax rate) is constant.
//
// Start is inclusive. End is the next boundary event date: the boundary
// day itself belongs to the FOLLOWING period, so for day counting End is
// exclusive — except for the final period, whose End is the query end
// and is itself counted. LastDay resolves that distinction.
type TaxPeriod struct {
	Start          Date
	End            Date
	Final          bool
	DependentCount int
	TaxRate        int
	Reason         string // audit: what triggered this period
}

// LastDay returns the last date that belongs to this period.
func (p TaxPeriod) LastDay() Date {
	if p.Final {
		return p.End
	}
	return p.End.AddDays(-1)
}

// Days returns the inclusive number of days the period covers.
func (p TaxPeriod) Days() int {
	return DaysBetween(p.Start, p.LastDay()) + 1
}

// Contains reports whether a date belongs to this period.
func (p TaxPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.LastDay())
}

func (p TaxPeriod) String() string {
	return p.Start.String() + " - " + p.End.String()
}
