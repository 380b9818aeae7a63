// Package store provides an in-memory IncomeSource implementation
// (for testing/dev).
package store

import (
	"context"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of payroll.IncomeSource
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]payroll.Employee
	children  []payroll.Child
	positions []payroll.PositionAssignment
	contracts []payroll.ContractAssignment
	bonuses   []payroll.Bonus
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[payroll.EmployeeID]payroll.Employee),
	}
}

// =============================================================================
// RECORD CREATION
// =============================================================================

func (m *Memory) AddEmployee(e payroll.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) AddChild(c payroll.Child) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = append(m.children, c)
}

func (m *Memory) AddPosition(p payroll.PositionAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, p)
}

func (m *Memory) AddContract(c payroll.ContractAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = append(m.contracts, c)
}

func (m *Memory) AddBonus(b payroll.Bonus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonuses = append(m.bonuses, b)
}

// =============================================================================
// INCOME SOURCE (payroll.IncomeSource interface)
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

// ChildrenFor returns children linked to the employee (as first or
// second parent) whose dependent window intersects the range.
func (m *Memory) ChildrenFor(_ context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Child
	for _, c := range m.children {
		linked := c.EmployeeID == id || (c.SecondParentID != nil && *c.SecondParentID == id)
		if !linked {
			continue
		}
		if c.BirthDate.After(r.End) || c.DependentUntil().BeforeOrEqual(r.Start) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) PositionsFor(_ context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.PositionAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.PositionAssignment
	for _, p := range m.positions {
		if p.EmployeeID == id && intersects(p.Start, p.End, r) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ContractsFor(_ context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.ContractAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.ContractAssignment
	for _, c := range m.contracts {
		if c.EmployeeID == id && intersects(c.Start, c.End, r) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) BonusesFor(_ context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.Bonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Bonus
	for _, b := range m.bonuses {
		if b.EmployeeID == id && r.Contains(b.Date) {
			out = append(out, b)
		}
	}
	return out, nil
}

// intersects reports whether [start, end] (end nil = ongoing) overlaps
// the inclusive range.
func intersects(start payroll.Date, end *payroll.Date, r payroll.Range) bool {
	if start.After(r.End) {
		return false
	}
	if end != nil && end.Before(r.Start) {
		return false
	}
	return true
}
