/*
timeline.go - Tax-Rate Timeline Builder

Sweeps dependent boundary events into a sorted, gapless sequence of
TaxPeriods covering exactly the query range. This is a pure function of
its inputs: sorted-merge plus running-sum, no hidden state.

INVARIANTS:
  - Periods are contiguous and non-overlapping; their union is exactly
    [query.Start, query.End].
  - Multiple events on the same date collapse into one combined delta,
    so at most one boundary is emitted per distinct date.
  - Zero-length periods are dropped.
  - tax_rate = max(13 - 3 * dependent_count, 0) on every period.
*/
package payroll

import (
	"sort"
	"strings"
)

// BuildTimeline constructs the tax-period sequence for a query range.
// With no events the result is a single period spanning the whole range
// at the base rate.
func BuildTimeline(events []BoundaryEvent, query Range) []TaxPeriod {
	// Sort a copy: the sweep must not reorder the caller's slice.
	sorted := make([]BoundaryEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	var periods []TaxPeriod

	count := 0
	cursor := query.Start
	reason := "period start"

	i := 0
	for i < len(sorted) {
		// Combine all events sharing this date into one delta.
		at := sorted[i].At
		delta := 0
		var reasons []string
		for i < len(sorted) && sorted[i].At.Equal(at) {
			delta += sorted[i].Delta
			reasons = append(reasons, sorted[i].Reason)
			i++
		}

		switch {
		case at.BeforeOrEqual(query.Start):
			// Window already open (or event exactly at the range start):
			// folds into the first period's count, no boundary.
			count += delta

		case at.AfterOrEqual(query.End):
			// A boundary at or past the range end would only open a
			// zero-length period; the current period runs to the end.

		default:
			if at.After(cursor) {
				periods = append(periods, TaxPeriod{
					Start:          cursor,
					End:            at,
					DependentCount: count,
					TaxRate:        TaxRateFor(count),
					Reason:         reason,
				})
				cursor = at
				reason = strings.Join(reasons, "; ")
			}
			count += delta
		}
	}

	// Close the trailing period at the query end.
	if cursor.BeforeOrEqual(query.End) {
		periods = append(periods, TaxPeriod{
			Start:          cursor,
			End:            query.End,
			Final:          true,
			DependentCount: count,
			TaxRate:        TaxRateFor(count),
			Reason:         reason,
		})
	}

	return periods
}
