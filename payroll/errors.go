/*
errors.go - Centralized error types for the payroll engine

ERROR CATEGORIES:
  1. Validation errors - malformed dates, inverted ranges
  2. Not-found errors  - unknown employee
  3. Supplier errors   - an IncomeSource fetch failed

The engine never produces a partial payslip: any supplier failure aborts
the whole computation. Degenerate intervals (start >= end) are a defined
zero-contribution no-op, never an error.
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when no employee matches the given id.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrMalformedDate is returned when a date string is not YYYY-MM-DD.
	ErrMalformedDate = errors.New("malformed date")

	// ErrInvalidRange is returned when a query window ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrMissingEmployeeID is returned when a request omits the employee id.
	ErrMissingEmployeeID = errors.New("employee id is required")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// SupplierError wraps a failed IncomeSource fetch with which fetch failed.
type SupplierError struct {
	Fetch string // "positions", "contracts", "bonuses", "children"
	Err   error
}

func (e *SupplierError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Fetch, e.Err)
}

func (e *SupplierError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrMissingEmployeeID)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
