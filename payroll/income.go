/*
income.go - Period Income Calculator

Apportions each income source across the tax periods. Positions and
contracts accrue day by day: the contribution to a period is the
inclusive day count of the overlap times the monthly rate (times the
work-rate for positions) divided by 30. Bonuses are atomic point events
attributed whole to the single period containing their date.
*/
package payroll

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)
var daysPerMonth = decimal.NewFromInt(DaysPerMonth)

// =============================================================================
// PERIOD INCOME
// =============================================================================

// PeriodIncome is a tax period together with the income earned in it and
// the tax owed on that income.
type PeriodIncome struct {
	Period TaxPeriod
	Income Money
	Tax    Money
}

// ComputePeriodIncomes prorates every assignment into every period and
// drops each bonus into the one period containing its date. Income and
// tax are rounded to cents per period.
func ComputePeriodIncomes(
	periods []TaxPeriod,
	positions []PositionAssignment,
	contracts []ContractAssignment,
	bonuses []Bonus,
) []PeriodIncome {
	result := make([]PeriodIncome, len(periods))

	for i, p := range periods {
		income := ZeroMoney()

		for _, pos := range positions {
			income = income.Add(prorated(pos.MonthlyRate, pos.WorkRate, pos.Start, pos.End, p.Start, p.LastDay()))
		}
		for _, c := range contracts {
			income = income.Add(prorated(c.MonthlyRate, one, c.Start, c.End, p.Start, p.LastDay()))
		}
		for _, b := range bonuses {
			if p.Contains(b.Date) {
				income = income.Add(b.Amount)
			}
		}

		income = income.Round2()
		rate := decimal.NewFromInt(int64(p.TaxRate))
		tax := income.Mul(rate).Div(decimal.NewFromInt(100)).Round2()

		result[i] = PeriodIncome{Period: p, Income: income, Tax: tax}
	}

	return result
}

// =============================================================================
// PRORATION
// =============================================================================

// prorated computes an assignment's contribution to the inclusive window
// [winStart, winLast]. An open-ended assignment (end == nil) extends to
// the window's last day. A degenerate overlap contributes zero; a
// single-day overlap counts as one day.
func prorated(monthlyRate Money, workRate decimal.Decimal, start Date, end *Date, winStart, winLast Date) Money {
	overlapStart := MaxDate(start, winStart)
	overlapEnd := winLast
	if end != nil {
		overlapEnd = MinDate(*end, winLast)
	}

	if overlapStart.After(overlapEnd) {
		return ZeroMoney()
	}

	days := DaysBetween(overlapStart, overlapEnd) + 1
	return monthlyRate.
		Mul(workRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(daysPerMonth)
}

// ProratedOverRange is the full-window proration used for per-assignment
// line items: the amount the assignment earns across the whole query
// range, independent of the period split.
func ProratedOverRange(monthlyRate Money, workRate decimal.Decimal, start Date, end *Date, query Range) Money {
	return prorated(monthlyRate, workRate, start, end, query.Start, query.End)
}
