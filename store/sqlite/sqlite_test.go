package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) payroll.Date {
	return payroll.NewDate(year, month, day)
}

func datePtr(d payroll.Date) *payroll.Date { return &d }

func year2023() payroll.Range {
	return payroll.Range{Start: date(2023, time.January, 1), End: date(2023, time.December, 31)}
}

func seedEmployee(t *testing.T, store *sqlite.Store, id string) payroll.EmployeeID {
	empID, err := store.CreateEmployee(context.Background(), payroll.Employee{
		ID:       payroll.EmployeeID(id),
		Name:     "Dana Orlov",
		Title:    "Engineer",
		HireDate: date(2015, time.March, 1),
	})
	require.NoError(t, err)
	return empID
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployee_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := seedEmployee(t, store, "emp-1")

	emp, err := store.GetEmployee(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Dana Orlov", emp.Name)
	assert.True(t, emp.HireDate.Equal(date(2015, time.March, 1)))
	assert.Nil(t, emp.TerminationDate)
}

func TestEmployee_GetMissing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	emp, err := store.GetEmployee(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, emp)
}

func TestEmployee_GeneratedID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateEmployee(context.Background(), payroll.Employee{
		Name:     "No ID",
		HireDate: date(2020, time.January, 1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestEmployee_Terminate_ClosesOpenAssignments(t *testing.T) {
	// GIVEN: An employee with an open-ended position and contract
	// WHEN: Terminating on 2023-06-30
	// THEN: Termination date is set and both assignments are closed

	store := newTestStore(t)
	ctx := context.Background()
	id := seedEmployee(t, store, "emp-1")

	_, err := store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID: id, Title: "Engineer",
		MonthlyRate: payroll.NewMoney(3000), WorkRate: decimal.NewFromInt(1),
		Start: date(2022, time.January, 1),
	})
	require.NoError(t, err)
	_, err = store.CreateContract(ctx, payroll.ContractAssignment{
		EmployeeID: id, Title: "Side project",
		MonthlyRate: payroll.NewMoney(500),
		Start:       date(2022, time.June, 1),
	})
	require.NoError(t, err)

	end := date(2023, time.June, 30)
	require.NoError(t, store.TerminateEmployee(ctx, id, end))

	emp, err := store.GetEmployee(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, emp.TerminationDate)
	assert.True(t, emp.TerminationDate.Equal(end))

	positions, err := store.PositionsFor(ctx, id, year2023())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.NotNil(t, positions[0].End)
	assert.True(t, positions[0].End.Equal(end))

	contracts, err := store.ContractsFor(ctx, id, year2023())
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.NotNil(t, contracts[0].End)
	assert.True(t, contracts[0].End.Equal(end))
}

func TestEmployee_TerminateMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.TerminateEmployee(context.Background(), "nobody", date(2023, time.June, 30))
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

// =============================================================================
// RANGE QUERY CONTRACT
// =============================================================================

func TestPositionsFor_IntersectionSemantics(t *testing.T) {
	// Only assignments whose interval intersects the range qualify;
	// open-ended assignments extend indefinitely.

	store := newTestStore(t)
	ctx := context.Background()
	id := seedEmployee(t, store, "emp-1")

	mk := func(recID string, start payroll.Date, end *payroll.Date) {
		_, err := store.CreatePosition(ctx, payroll.PositionAssignment{
			ID: payroll.RecordID(recID), EmployeeID: id, Title: recID,
			MonthlyRate: payroll.NewMoney(1000), WorkRate: decimal.NewFromInt(1),
			Start: start, End: end,
		})
		require.NoError(t, err)
	}

	mk("before", date(2021, time.January, 1), datePtr(date(2022, time.December, 31)))
	mk("straddles-start", date(2022, time.June, 1), datePtr(date(2023, time.February, 1)))
	mk("inside", date(2023, time.May, 1), datePtr(date(2023, time.June, 1)))
	mk("open-ended", date(2020, time.January, 1), nil)
	mk("after", date(2024, time.January, 1), nil)

	positions, err := store.PositionsFor(ctx, id, year2023())
	require.NoError(t, err)

	got := make([]string, len(positions))
	for i, p := range positions {
		got[i] = string(p.ID)
	}
	assert.ElementsMatch(t, []string{"straddles-start", "inside", "open-ended"}, got)
}

func TestBonusesFor_InclusiveBothEnds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := seedEmployee(t, store, "emp-1")

	for _, tc := range []struct {
		recID string
		day   payroll.Date
	}{
		{"on-start", date(2023, time.January, 1)},
		{"on-end", date(2023, time.December, 31)},
		{"outside", date(2024, time.January, 1)},
	} {
		_, err := store.CreateBonus(ctx, payroll.Bonus{
			ID: payroll.RecordID(tc.recID), EmployeeID: id, Title: tc.recID,
			Amount: payroll.NewMoney(100), Date: tc.day,
		})
		require.NoError(t, err)
	}

	bonuses, err := store.BonusesFor(ctx, id, year2023())
	require.NoError(t, err)

	got := make([]string, len(bonuses))
	for i, b := range bonuses {
		got[i] = string(b.ID)
	}
	assert.ElementsMatch(t, []string{"on-start", "on-end"}, got)
}

func TestChildrenFor_PreFilterAndSecondParent(t *testing.T) {
	// GIVEN: Children inside and outside the plausible dependent window,
	//        plus one linked via the second parent
	// WHEN: Querying for 2023
	// THEN: Only plausible dependents of the queried employee return

	store := newTestStore(t)
	ctx := context.Background()
	first := seedEmployee(t, store, "emp-1")
	second, err := store.CreateEmployee(ctx, payroll.Employee{
		ID: "emp-2", Name: "Riley Chen", HireDate: date(2018, time.April, 1),
	})
	require.NoError(t, err)

	mk := func(recID string, owner payroll.EmployeeID, secondParent *payroll.EmployeeID, birth payroll.Date) {
		_, err := store.CreateChild(ctx, payroll.Child{
			ID: payroll.RecordID(recID), EmployeeID: owner, SecondParentID: secondParent,
			Name: recID, BirthDate: birth,
		})
		require.NoError(t, err)
	}

	mk("dependent", first, nil, date(2010, time.May, 5))
	mk("aged-out", first, nil, date(2004, time.January, 1)) // 18 before 2023
	mk("unborn", first, nil, date(2024, time.February, 2))  // born after 2023
	mk("via-second-parent", second, &first, date(2015, time.August, 8))
	mk("other-family", second, nil, date(2012, time.March, 3))

	children, err := store.ChildrenFor(ctx, first, year2023())
	require.NoError(t, err)

	got := make([]string, len(children))
	for i, c := range children {
		got[i] = string(c.ID)
	}
	assert.ElementsMatch(t, []string{"dependent", "via-second-parent"}, got)
}

// =============================================================================
// MONEY ROUND TRIP
// =============================================================================

func TestMoney_DecimalRoundTrip(t *testing.T) {
	// Rates persisted as decimal strings come back exact.

	store := newTestStore(t)
	ctx := context.Background()
	id := seedEmployee(t, store, "emp-1")

	rate := payroll.MoneyFromString("2777.77")
	work, err := decimal.NewFromString("0.8")
	require.NoError(t, err)

	_, err = store.CreatePosition(ctx, payroll.PositionAssignment{
		EmployeeID: id, Title: "Engineer",
		MonthlyRate: rate, WorkRate: work,
		Start: date(2023, time.January, 1),
	})
	require.NoError(t, err)

	positions, err := store.PositionsFor(ctx, id, year2023())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].MonthlyRate.Equal(rate))
	assert.True(t, positions[0].WorkRate.Equal(work))
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_WipesAllRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := seedEmployee(t, store, "emp-1")

	_, err := store.CreateBonus(ctx, payroll.Bonus{
		EmployeeID: id, Title: "Annual", Amount: payroll.NewMoney(100),
		Date: date(2023, time.July, 1),
	})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}
