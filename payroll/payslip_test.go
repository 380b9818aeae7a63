package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine() (*payroll.Engine, *store.Memory) {
	mem := store.NewMemory()
	return payroll.NewEngine(mem), mem
}

func seedEmployee(mem *store.Memory, id payroll.EmployeeID, name string) {
	mem.AddEmployee(payroll.Employee{
		ID:       id,
		Name:     name,
		Title:    "Engineer",
		HireDate: date(2015, time.January, 1),
	})
}

// =============================================================================
// SCENARIO: NO DEPENDENTS
// =============================================================================

func TestPayslip_NoDependents_FullYearPosition(t *testing.T) {
	// GIVEN: Employee with zero children, one 3000/month full-time
	//        position spanning the whole of 2023 (365 inclusive days)
	// WHEN: Computing the payslip
	// THEN: A single 13% period, income 36500, tax 4745, net 31755

	engine, mem := newTestEngine()
	seedEmployee(mem, "emp-1", "Dana Orlov")
	mem.AddPosition(position(3000, 1.0, date(2023, time.January, 1), datePtr(date(2023, time.December, 31))))

	slip, err := engine.Payslip(context.Background(), "emp-1", year2023())
	require.NoError(t, err)

	require.Len(t, slip.Periods, 1)
	p := slip.Periods[0]
	assert.Equal(t, 13, p.Period.TaxRate)
	assert.Equal(t, 365, p.Period.Days())
	assert.True(t, p.Income.Equal(money(36500)), "income = %s", p.Income)
	assert.True(t, p.Tax.Equal(money(4745)), "tax = %s", p.Tax)

	assert.True(t, slip.Total.Equal(money(36500)), "total = %s", slip.Total)
	assert.True(t, slip.TaxTotal.Equal(money(4745)), "taxTotal = %s", slip.TaxTotal)
	assert.True(t, slip.NetTotal.Equal(money(31755)), "netTotal = %s", slip.NetTotal)

	assert.Empty(t, slip.RateChanges)
	require.Len(t, slip.Positions, 1)
	assert.True(t, slip.Positions[0].Amount.Equal(money(36500)))
	assert.True(t, slip.Gross.Equal(money(36500)), "gross = %s", slip.Gross)
}

// =============================================================================
// SCENARIO: CHILD AGING OUT
// =============================================================================

func TestPayslip_ChildTurns18_TwoPeriodsAndOneRateChange(t *testing.T) {
	// GIVEN: Child born 2005-06-15, query range 2023-01-01..2023-12-31
	// WHEN: Computing the payslip
	// THEN: Two periods (rate 10 then 13) and exactly one rate-change
	//       entry dated 2023-06-15

	engine, mem := newTestEngine()
	seedEmployee(mem, "emp-1", "Dana Orlov")
	mem.AddChild(child("ben", date(2005, time.June, 15)))
	mem.AddPosition(position(3000, 1.0, date(2023, time.January, 1), datePtr(date(2023, time.December, 31))))

	slip, err := engine.Payslip(context.Background(), "emp-1", year2023())
	require.NoError(t, err)

	require.Len(t, slip.Periods, 2)
	first, second := slip.Periods[0], slip.Periods[1]

	assert.Equal(t, 1, first.Period.DependentCount)
	assert.Equal(t, 10, first.Period.TaxRate)
	assert.True(t, first.Period.Start.Equal(date(2023, time.January, 1)))
	assert.True(t, first.Period.End.Equal(date(2023, time.June, 15)))

	assert.Equal(t, 0, second.Period.DependentCount)
	assert.Equal(t, 13, second.Period.TaxRate)
	assert.True(t, second.Period.Start.Equal(date(2023, time.June, 15)))
	assert.True(t, second.Period.End.Equal(date(2023, time.December, 31)))

	// Jan 1 - Jun 14 = 165 days at 10%, Jun 15 - Dec 31 = 200 days at 13%
	assert.True(t, first.Income.Equal(money(16500)), "first income = %s", first.Income)
	assert.True(t, first.Tax.Equal(money(1650)), "first tax = %s", first.Tax)
	assert.True(t, second.Income.Equal(money(20000)), "second income = %s", second.Income)
	assert.True(t, second.Tax.Equal(money(2600)), "second tax = %s", second.Tax)

	require.Len(t, slip.RateChanges, 1)
	change := slip.RateChanges[0]
	assert.True(t, change.Date.Equal(date(2023, time.June, 15)))
	assert.Equal(t, 10, change.PreviousRate)
	assert.Equal(t, 13, change.NewRate)
	assert.NotEmpty(t, change.TriggeredBy)
}

// =============================================================================
// GROSS / PERIOD-TOTAL AGREEMENT
// =============================================================================

func TestPayslip_GrossAgreesWithPeriodTotal(t *testing.T) {
	// GIVEN: A mixed fixture deliberately producing repeating decimals
	//        (7-day and 11-day stretches over a split timeline)
	// WHEN: Computing the payslip
	// THEN: The line-item gross and the period-based total agree within
	//       one cent per line item

	engine, mem := newTestEngine()
	seedEmployee(mem, "emp-1", "Dana Orlov")
	mem.AddChild(child("kid", date(2023, time.April, 10)))
	mem.AddPosition(position(1000, 1.0, date(2023, time.February, 3), datePtr(date(2023, time.February, 9))))
	mem.AddPosition(position(2777.77, 0.8, date(2023, time.March, 1), nil))
	mem.AddContract(payroll.ContractAssignment{
		ID: "con-1", EmployeeID: "emp-1", Title: "Consulting",
		MonthlyRate: money(1234.56),
		Start:       date(2023, time.April, 5), End: datePtr(date(2023, time.April, 15)),
	})
	mem.AddBonus(payroll.Bonus{
		ID: "bon-1", EmployeeID: "emp-1", Title: "Referral",
		Amount: money(333.33), Date: date(2023, time.April, 10),
	})

	slip, err := engine.Payslip(context.Background(), "emp-1", year2023())
	require.NoError(t, err)

	lineItems := len(slip.Positions) + len(slip.Contracts) + len(slip.Bonuses)
	tolerance := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(lineItems)))

	diff := slip.Gross.Sub(slip.Total).Value.Abs()
	assert.True(t, diff.LessThanOrEqual(tolerance),
		"gross %s and period total %s differ by %s (tolerance %s)",
		slip.Gross, slip.Total, diff, tolerance)
}

// =============================================================================
// DETERMINISM
// =============================================================================

func TestPayslip_Deterministic(t *testing.T) {
	engine, mem := newTestEngine()
	seedEmployee(mem, "emp-1", "Dana Orlov")
	mem.AddChild(child("kid", date(2010, time.May, 20)))
	mem.AddPosition(position(2500, 1.0, date(2022, time.June, 1), nil))
	mem.AddBonus(payroll.Bonus{
		ID: "bon-1", EmployeeID: "emp-1", Title: "Annual",
		Amount: money(500), Date: date(2023, time.December, 20),
	})

	first, err := engine.Payslip(context.Background(), "emp-1", year2023())
	require.NoError(t, err)
	second, err := engine.Payslip(context.Background(), "emp-1", year2023())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// =============================================================================
// ERROR PATHS
// =============================================================================

func TestPayslip_MissingEmployeeID(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Payslip(context.Background(), "", year2023())
	assert.ErrorIs(t, err, payroll.ErrMissingEmployeeID)
	assert.True(t, payroll.IsClientError(err))
}

func TestPayslip_UnknownEmployee(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Payslip(context.Background(), "nobody", year2023())
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
	assert.True(t, payroll.IsNotFound(err))
}

// failingSource wraps a Memory store and fails one fetch.
type failingSource struct {
	*store.Memory
	failErr error
}

func (f *failingSource) BonusesFor(context.Context, payroll.EmployeeID, payroll.Range) ([]payroll.Bonus, error) {
	return nil, f.failErr
}

func TestPayslip_SupplierFailure_NoPartialResult(t *testing.T) {
	// GIVEN: The bonus fetch fails
	// WHEN: Computing the payslip
	// THEN: The whole computation fails; no partial payslip

	mem := store.NewMemory()
	seedEmployee(mem, "emp-1", "Dana Orlov")
	mem.AddPosition(position(3000, 1.0, date(2023, time.January, 1), nil))

	boom := errors.New("db gone")
	engine := payroll.NewEngine(&failingSource{Memory: mem, failErr: boom})

	slip, err := engine.Payslip(context.Background(), "emp-1", year2023())
	assert.Nil(t, slip)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var supplierErr *payroll.SupplierError
	require.ErrorAs(t, err, &supplierErr)
	assert.Equal(t, "bonuses", supplierErr.Fetch)
}

// =============================================================================
// SECOND-PARENT LINKAGE
// =============================================================================

func TestPayslip_ChildLinkedAsSecondParent_Counts(t *testing.T) {
	engine, mem := newTestEngine()
	seedEmployee(mem, "emp-2", "Riley Chen")

	secondParent := payroll.EmployeeID("emp-2")
	mem.AddChild(payroll.Child{
		ID: "child-x", EmployeeID: "emp-1", SecondParentID: &secondParent,
		Name: "sam", BirthDate: date(2012, time.July, 1),
	})

	slip, err := engine.Payslip(context.Background(), "emp-2", year2023())
	require.NoError(t, err)

	require.Len(t, slip.Periods, 1)
	assert.Equal(t, 1, slip.Periods[0].Period.DependentCount)
	assert.Equal(t, 10, slip.Periods[0].Period.TaxRate)
}
