/*
dependent.go - Dependent-Window Extractor

Each qualifying child reduces the tax rate while under 18. This file
turns child records into boundary events: +1 when the child's dependent
window opens inside the query range, -1 when it closes. The timeline
builder sweeps these events into tax periods.
*/
package payroll

import "fmt"

// =============================================================================
// BOUNDARY EVENTS
// =============================================================================

// BoundaryEvent marks a change in the dependent count at a date.
type BoundaryEvent struct {
	At     Date
	Delta  int
	Reason string
}

// DependentEvents computes the effective dependent window for each child,
// clipped to the query range, and emits its boundary event pair.
//
// The effective window is [max(birth, query.Start), min(birth + 18y,
// query.End)), end exclusive. A child whose clipped window is empty
// contributes nothing.
func DependentEvents(children []Child, query Range) []BoundaryEvent {
	var events []BoundaryEvent

	for _, c := range children {
		start := MaxDate(c.BirthDate, query.Start)
		end := MinDate(c.DependentUntil(), query.End)

		if start.AfterOrEqual(end) {
			continue
		}

		events = append(events,
			BoundaryEvent{
				At:     start,
				Delta:  +1,
				Reason: fmt.Sprintf("child %s becomes a dependent", c.Name),
			},
			BoundaryEvent{
				At:     end,
				Delta:  -1,
				Reason: fmt.Sprintf("child %s turns %d", c.Name, DependentAgeYears),
			},
		)
	}

	return events
}
