/*
payslip.go - Payslip assembly and the IncomeSource contract

PURPOSE:
  Orchestrates the pipeline: fetch records, build the tax-period
  timeline, prorate income into periods, and assemble the payslip with
  totals and the tax-rate change log.

INCOME SOURCE:
  The engine owns no storage. All records arrive through the
  IncomeSource interface, so the store/sqlite package serves production
  and the payroll/store memory implementation serves tests. The three
  income fetches (positions, contracts, bonuses) are independent reads
  and run concurrently; the computation is all-or-nothing — any fetch
  failure aborts the payslip.

TWO GROSS FIGURES:
  The period-based Total sums per-period incomes; the line-item Gross
  independently sums each assignment's own full-window proration rounded
  to cents. The two are reported side by side and agree within rounding
  tolerance; a persistent mismatch indicates a proration bug.
*/
package payroll

import (
	"context"
	"sync"
)

// =============================================================================
// INCOME SOURCE - Supplier contract (implemented by the host layer)
// =============================================================================

// IncomeSource supplies the raw records the engine computes over.
//
// The *For methods return records whose interval (or date) intersects
// the given range; open-ended assignments are treated as extending to
// the range end. ChildrenFor may pre-filter children who cannot count
// as dependents anywhere inside the range.
type IncomeSource interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ChildrenFor(ctx context.Context, id EmployeeID, r Range) ([]Child, error)
	PositionsFor(ctx context.Context, id EmployeeID, r Range) ([]PositionAssignment, error)
	ContractsFor(ctx context.Context, id EmployeeID, r Range) ([]ContractAssignment, error)
	BonusesFor(ctx context.Context, id EmployeeID, r Range) ([]Bonus, error)
}

// =============================================================================
// PAYSLIP - The assembled result
// =============================================================================

// AssignmentLine is a per-assignment line item: the assignment's own
// prorated amount over the full query range.
type AssignmentLine struct {
	Kind   string // "position" or "contract"
	Title  string
	Rate   Money
	Start  Date
	End    *Date // nil = ongoing
	Amount Money
}

// BonusLine is a bonus line item.
type BonusLine struct {
	Title  string
	Date   Date
	Amount Money
}

// RateChange records one tax-rate transition for the audit log.
type RateChange struct {
	Date         Date
	PreviousRate int
	NewRate      int
	TriggeredBy  string
}

// Payslip is the full computation result for one employee and range.
type Payslip struct {
	Employee Employee
	Range    Range

	Positions []AssignmentLine
	Contracts []AssignmentLine
	Bonuses   []BonusLine

	Periods     []PeriodIncome
	Total       Money // sum of period incomes
	TaxTotal    Money
	NetTotal    Money
	RateChanges []RateChange

	// Independently computed totals block (line-item based).
	Gross Money
	Tax   Money
	Net   Money
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes payslips from an IncomeSource.
type Engine struct {
	Source IncomeSource
}

func NewEngine(source IncomeSource) *Engine {
	return &Engine{Source: source}
}

// Payslip runs the full pipeline for one employee over a query range.
func (e *Engine) Payslip(ctx context.Context, id EmployeeID, query Range) (*Payslip, error) {
	if id == "" {
		return nil, ErrMissingEmployeeID
	}

	emp, err := e.Source.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	children, err := e.Source.ChildrenFor(ctx, id, query)
	if err != nil {
		return nil, &SupplierError{Fetch: "children", Err: err}
	}

	periods := BuildTimeline(DependentEvents(children, query), query)

	positions, contracts, bonuses, err := e.fetchIncome(ctx, id, query)
	if err != nil {
		return nil, err
	}

	incomes := ComputePeriodIncomes(periods, positions, contracts, bonuses)

	slip := &Payslip{
		Employee:    *emp,
		Range:       query,
		Periods:     incomes,
		RateChanges: rateChangeLog(periods),
	}

	slip.Total, slip.TaxTotal, slip.NetTotal = sumPeriods(incomes)
	slip.Positions, slip.Contracts, slip.Bonuses = lineItems(positions, contracts, bonuses, query)
	slip.Gross = grossOfLines(slip.Positions, slip.Contracts, slip.Bonuses)
	slip.Tax = slip.TaxTotal
	slip.Net = slip.Gross.Sub(slip.Tax)

	return slip, nil
}

// fetchIncome issues the three independent supplier reads concurrently
// and joins on all of them. First failure wins.
func (e *Engine) fetchIncome(ctx context.Context, id EmployeeID, query Range) (
	[]PositionAssignment, []ContractAssignment, []Bonus, error,
) {
	var (
		wg        sync.WaitGroup
		positions []PositionAssignment
		contracts []ContractAssignment
		bonuses   []Bonus
		errs      [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		if positions, err = e.Source.PositionsFor(ctx, id, query); err != nil {
			errs[0] = &SupplierError{Fetch: "positions", Err: err}
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if contracts, err = e.Source.ContractsFor(ctx, id, query); err != nil {
			errs[1] = &SupplierError{Fetch: "contracts", Err: err}
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if bonuses, err = e.Source.BonusesFor(ctx, id, query); err != nil {
			errs[2] = &SupplierError{Fetch: "bonuses", Err: err}
		}
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return positions, contracts, bonuses, nil
}

// =============================================================================
// AGGREGATION
// =============================================================================

func sumPeriods(incomes []PeriodIncome) (total, tax, net Money) {
	total, tax = ZeroMoney(), ZeroMoney()
	for _, pi := range incomes {
		total = total.Add(pi.Income)
		tax = tax.Add(pi.Tax)
	}
	return total, tax, total.Sub(tax)
}

// rateChangeLog walks the periods in order and records every rate
// transition between consecutive periods. A first period already below
// the base rate is the query window opening mid-state, not a change.
func rateChangeLog(periods []TaxPeriod) []RateChange {
	var changes []RateChange
	if len(periods) == 0 {
		return changes
	}
	prev := periods[0].TaxRate

	for _, p := range periods[1:] {
		if p.TaxRate != prev {
			changes = append(changes, RateChange{
				Date:         p.Start,
				PreviousRate: prev,
				NewRate:      p.TaxRate,
				TriggeredBy:  p.Reason,
			})
		}
		prev = p.TaxRate
	}
	return changes
}

func lineItems(
	positions []PositionAssignment,
	contracts []ContractAssignment,
	bonuses []Bonus,
	query Range,
) (posLines, conLines []AssignmentLine, bonusLines []BonusLine) {
	posLines = make([]AssignmentLine, 0, len(positions))
	for _, p := range positions {
		posLines = append(posLines, AssignmentLine{
			Kind:   "position",
			Title:  p.Title,
			Rate:   p.MonthlyRate,
			Start:  p.Start,
			End:    p.End,
			Amount: ProratedOverRange(p.MonthlyRate, p.WorkRate, p.Start, p.End, query).Round2(),
		})
	}

	conLines = make([]AssignmentLine, 0, len(contracts))
	for _, c := range contracts {
		conLines = append(conLines, AssignmentLine{
			Kind:   "contract",
			Title:  c.Title,
			Rate:   c.MonthlyRate,
			Start:  c.Start,
			End:    c.End,
			Amount: ProratedOverRange(c.MonthlyRate, one, c.Start, c.End, query).Round2(),
		})
	}

	bonusLines = make([]BonusLine, 0, len(bonuses))
	for _, b := range bonuses {
		bonusLines = append(bonusLines, BonusLine{Title: b.Title, Date: b.Date, Amount: b.Amount})
	}

	return posLines, conLines, bonusLines
}

// grossOfLines sums every line item's already-rounded amount.
func grossOfLines(positions, contracts []AssignmentLine, bonuses []BonusLine) Money {
	gross := ZeroMoney()
	for _, l := range positions {
		gross = gross.Add(l.Amount)
	}
	for _, l := range contracts {
		gross = gross.Add(l.Amount)
	}
	for _, b := range bonuses {
		gross = gross.Add(b.Amount)
	}
	return gross
}
