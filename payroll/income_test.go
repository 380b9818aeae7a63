package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

func money(v float64) payroll.Money { return payroll.NewMoney(v) }

func fullTime() decimal.Decimal { return decimal.NewFromInt(1) }

func position(rate float64, workRate float64, start payroll.Date, end *payroll.Date) payroll.PositionAssignment {
	return payroll.PositionAssignment{
		ID:          "pos-1",
		EmployeeID:  "emp-1",
		Title:       "Engineer",
		MonthlyRate: money(rate),
		WorkRate:    decimal.NewFromFloat(workRate),
		Start:       start,
		End:         end,
	}
}

func datePtr(d payroll.Date) *payroll.Date { return &d }

// =============================================================================
// PRORATION
// =============================================================================

func TestProration_Exact30Days_FullMonthlyRate(t *testing.T) {
	// GIVEN: One period covering 2023, a 1000/month full-time position
	//        active for exactly 30 inclusive days
	// WHEN: Computing period incomes
	// THEN: The contribution is exactly 1000.00

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	pos := position(1000, 1.0, date(2023, time.March, 1), datePtr(date(2023, time.March, 30)))
	incomes := payroll.ComputePeriodIncomes(periods, []payroll.PositionAssignment{pos}, nil, nil)

	if !incomes[0].Income.Equal(money(1000)) {
		t.Errorf("income = %s, want 1000.00", incomes[0].Income)
	}
}

func TestProration_SingleDayOverlap_CountsOneDay(t *testing.T) {
	// GIVEN: A position active for a single day
	// WHEN: Prorating
	// THEN: It contributes one day's worth: 300/30 = 10

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	day := date(2023, time.May, 5)
	pos := position(300, 1.0, day, datePtr(day))
	incomes := payroll.ComputePeriodIncomes(periods, []payroll.PositionAssignment{pos}, nil, nil)

	if !incomes[0].Income.Equal(money(10)) {
		t.Errorf("income = %s, want 10.00", incomes[0].Income)
	}
}

func TestProration_NoOverlap_ZeroContribution(t *testing.T) {
	// Assignment entirely before the query window contributes nothing,
	// and it is not an error.

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	pos := position(5000, 1.0, date(2020, time.January, 1), datePtr(date(2021, time.January, 1)))
	incomes := payroll.ComputePeriodIncomes(periods, []payroll.PositionAssignment{pos}, nil, nil)

	if !incomes[0].Income.IsZero() {
		t.Errorf("income = %s, want 0", incomes[0].Income)
	}
}

func TestProration_WorkRateMultiplier(t *testing.T) {
	// Half-time position for 30 days earns half the monthly rate.

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	pos := position(1000, 0.5, date(2023, time.March, 1), datePtr(date(2023, time.March, 30)))
	incomes := payroll.ComputePeriodIncomes(periods, []payroll.PositionAssignment{pos}, nil, nil)

	if !incomes[0].Income.Equal(money(500)) {
		t.Errorf("income = %s, want 500.00", incomes[0].Income)
	}
}

func TestProration_OpenEndedAssignment_RunsToWindowEnd(t *testing.T) {
	// GIVEN: An open-ended position starting 2023-12-02
	// WHEN: Prorating over 2023
	// THEN: It earns for Dec 2 .. Dec 31 = 30 days

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	pos := position(900, 1.0, date(2023, time.December, 2), nil)
	incomes := payroll.ComputePeriodIncomes(periods, []payroll.PositionAssignment{pos}, nil, nil)

	if !incomes[0].Income.Equal(money(900)) {
		t.Errorf("income = %s, want 900.00", incomes[0].Income)
	}
}

func TestProration_ContractHasNoWorkRate(t *testing.T) {
	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	con := payroll.ContractAssignment{
		ID:          "con-1",
		EmployeeID:  "emp-1",
		Title:       "Audit",
		MonthlyRate: money(600),
		Start:       date(2023, time.June, 1),
		End:         datePtr(date(2023, time.June, 30)),
	}
	incomes := payroll.ComputePeriodIncomes(periods, nil, []payroll.ContractAssignment{con}, nil)

	if !incomes[0].Income.Equal(money(600)) {
		t.Errorf("income = %s, want 600.00", incomes[0].Income)
	}
}

// =============================================================================
// BONUS ATTRIBUTION
// =============================================================================

func TestBonus_OnPeriodBoundary_AttributedOnce(t *testing.T) {
	// GIVEN: Periods split at 2023-06-15, a bonus dated exactly there
	// WHEN: Computing period incomes
	// THEN: The bonus lands whole in the second period, never split

	query := year2023()
	periods := payroll.BuildTimeline(
		payroll.DependentEvents([]payroll.Child{child("ben", date(2005, time.June, 15))}, query),
		query,
	)

	bonus := payroll.Bonus{
		ID: "bon-1", EmployeeID: "emp-1", Title: "Spot bonus",
		Amount: money(250), Date: date(2023, time.June, 15),
	}
	incomes := payroll.ComputePeriodIncomes(periods, nil, nil, []payroll.Bonus{bonus})

	if !incomes[0].Income.IsZero() {
		t.Errorf("first period income = %s, want 0", incomes[0].Income)
	}
	if !incomes[1].Income.Equal(money(250)) {
		t.Errorf("second period income = %s, want 250.00", incomes[1].Income)
	}
}

func TestBonus_NegativeAmount_Deduction(t *testing.T) {
	// Bonuses are signed: a negative amount reduces period income.

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	bonus := payroll.Bonus{
		ID: "bon-2", EmployeeID: "emp-1", Title: "Equipment damage",
		Amount: money(-120), Date: date(2023, time.August, 1),
	}
	incomes := payroll.ComputePeriodIncomes(periods, nil, nil, []payroll.Bonus{bonus})

	if !incomes[0].Income.Equal(money(-120)) {
		t.Errorf("income = %s, want -120.00", incomes[0].Income)
	}
}

// =============================================================================
// TAX PER PERIOD
// =============================================================================

func TestPeriodTax_RateApplied(t *testing.T) {
	// 10000 income at 13% = 1300 tax.

	query := year2023()
	periods := payroll.BuildTimeline(nil, query)

	bonus := payroll.Bonus{ID: "bon-3", EmployeeID: "emp-1", Amount: money(10000), Date: date(2023, time.May, 1)}
	incomes := payroll.ComputePeriodIncomes(periods, nil, nil, []payroll.Bonus{bonus})

	if !incomes[0].Tax.Equal(money(1300)) {
		t.Errorf("tax = %s, want 1300.00", incomes[0].Tax)
	}
}
