/*
Package sqlite provides the SQLite-backed record store.

PURPOSE:
  Implements persistence for all payroll records (employees, children,
  positions, contracts, bonuses) and the payroll.IncomeSource interface
  the engine computes from. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:  identity, hire/termination dates
  children:   dependents (first + optional second parent link)
  positions:  recurring salaried income with work-rate multiplier
  contracts:  recurring contract income
  bonuses:    one-off signed point events

DATES AND MONEY:
  Dates are stored as YYYY-MM-DD TEXT. Monetary values and work rates
  are stored as decimal strings, never floats, so nothing is lost on
  the round trip.

IDS:
  Record ids are ULIDs generated on insert when the caller does not
  supply one. ULIDs sort by creation time, which keeps listing queries
  stable without an extra column.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block and crash recovery is
  cleaner.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := payroll.NewEngine(store)

SEE ALSO:
  - payroll/payslip.go: IncomeSource interface definition
  - payroll/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements record persistence and payroll.IncomeSource.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT,
		hire_date TEXT NOT NULL,
		termination_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS children (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		second_parent_id TEXT REFERENCES employees(id),
		name TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_children_employee
		ON children(employee_id, birth_date);
	CREATE INDEX IF NOT EXISTS idx_children_second_parent
		ON children(second_parent_id) WHERE second_parent_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		monthly_rate TEXT NOT NULL,
		work_rate TEXT NOT NULL DEFAULT '1',
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: payslip range queries
	CREATE INDEX IF NOT EXISTS idx_positions_employee_dates
		ON positions(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		monthly_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee_dates
		ON contracts(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS bonuses (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		amount TEXT NOT NULL,
		bonus_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bonuses_employee_date
		ON bonuses(employee_id, bonus_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

func newID() string {
	return ulid.Make().String()
}

func nullDate(d *payroll.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanDate(s string) (payroll.Date, error) {
	return payroll.ParseDate(s)
}

func scanNullDate(ns sql.NullString) (*payroll.Date, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := payroll.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee inserts an employee, generating an id when absent.
func (s *Store) CreateEmployee(ctx context.Context, e payroll.Employee) (payroll.EmployeeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = payroll.EmployeeID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, title, hire_date, termination_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Title, e.HireDate.String(), nullDate(e.TerminationDate), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert employee: %w", err)
	}
	return e.ID, nil
}

// GetEmployee returns nil (no error) when the id matches nothing.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, title, hire_date, termination_date
		FROM employees WHERE id = ?`, id)

	var (
		e        payroll.Employee
		hire     string
		termNull sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Title, &hire, &termNull); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}

	var err error
	if e.HireDate, err = scanDate(hire); err != nil {
		return nil, err
	}
	if e.TerminationDate, err = scanNullDate(termNull); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, title, hire_date, termination_date
		FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		var (
			e        payroll.Employee
			hire     string
			termNull sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Title, &hire, &termNull); err != nil {
			return nil, err
		}
		if e.HireDate, err = scanDate(hire); err != nil {
			return nil, err
		}
		if e.TerminationDate, err = scanNullDate(termNull); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TerminateEmployee sets the termination date and closes any open-ended
// positions and contracts on the same date.
func (s *Store) TerminateEmployee(ctx context.Context, id payroll.EmployeeID, on payroll.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE employees SET termination_date = ? WHERE id = ?`, on.String(), id)
	if err != nil {
		return fmt.Errorf("terminate employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrEmployeeNotFound
	}

	for _, table := range []string{"positions", "contracts"} {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s SET end_date = ? WHERE employee_id = ? AND end_date IS NULL`, table),
			on.String(), id)
		if err != nil {
			return fmt.Errorf("close open %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// RECORD CREATION
// =============================================================================

func (s *Store) CreateChild(ctx context.Context, c payroll.Child) (payroll.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = payroll.RecordID(newID())
	}
	var secondParent any
	if c.SecondParentID != nil {
		secondParent = string(*c.SecondParentID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO children (id, employee_id, second_parent_id, name, birth_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.EmployeeID, secondParent, c.Name, c.BirthDate.String(), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert child: %w", err)
	}
	return c.ID, nil
}

func (s *Store) CreatePosition(ctx context.Context, p payroll.PositionAssignment) (payroll.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = payroll.RecordID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (id, employee_id, title, monthly_rate, work_rate, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, p.Title, p.MonthlyRate.Value.String(), p.WorkRate.String(),
		p.Start.String(), nullDate(p.End), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert position: %w", err)
	}
	return p.ID, nil
}

func (s *Store) CreateContract(ctx context.Context, c payroll.ContractAssignment) (payroll.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = payroll.RecordID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, employee_id, title, monthly_rate, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.EmployeeID, c.Title, c.MonthlyRate.Value.String(),
		c.Start.String(), nullDate(c.End), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert contract: %w", err)
	}
	return c.ID, nil
}

func (s *Store) CreateBonus(ctx context.Context, b payroll.Bonus) (payroll.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = payroll.RecordID(newID())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bonuses (id, employee_id, title, amount, bonus_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.EmployeeID, b.Title, b.Amount.Value.String(), b.Date.String(), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert bonus: %w", err)
	}
	return b.ID, nil
}

// =============================================================================
// INCOME SOURCE (payroll.IncomeSource interface)
// =============================================================================

// ChildrenFor returns children linked to the employee (as either parent)
// whose dependent window could intersect the range: born no later than
// the range end and not yet 18 at the range start.
func (s *Store) ChildrenFor(ctx context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	minBirth := r.Start.AddYears(-payroll.DependentAgeYears)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, second_parent_id, name, birth_date
		FROM children
		WHERE (employee_id = ? OR second_parent_id = ?)
		  AND birth_date <= ?
		  AND birth_date > ?
		ORDER BY birth_date`,
		id, id, r.End.String(), minBirth.String())
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	var out []payroll.Child
	for rows.Next() {
		var (
			c          payroll.Child
			secondNull sql.NullString
			birth      string
		)
		if err := rows.Scan(&c.ID, &c.EmployeeID, &secondNull, &c.Name, &birth); err != nil {
			return nil, err
		}
		if secondNull.Valid {
			sp := payroll.EmployeeID(secondNull.String)
			c.SecondParentID = &sp
		}
		if c.BirthDate, err = scanDate(birth); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PositionsFor returns position assignments whose interval intersects
// the range; open-ended assignments always qualify once started.
func (s *Store) PositionsFor(ctx context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.PositionAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, title, monthly_rate, work_rate, start_date, end_date
		FROM positions
		WHERE employee_id = ?
		  AND start_date <= ?
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date`,
		id, r.End.String(), r.Start.String())
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var out []payroll.PositionAssignment
	for rows.Next() {
		var (
			p          payroll.PositionAssignment
			rate, work string
			start      string
			endNull    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Title, &rate, &work, &start, &endNull); err != nil {
			return nil, err
		}
		p.MonthlyRate = payroll.MoneyFromString(rate)
		p.WorkRate = payroll.MoneyFromString(work).Value
		if p.Start, err = scanDate(start); err != nil {
			return nil, err
		}
		if p.End, err = scanNullDate(endNull); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ContractsFor mirrors PositionsFor for contract assignments.
func (s *Store) ContractsFor(ctx context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.ContractAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, title, monthly_rate, start_date, end_date
		FROM contracts
		WHERE employee_id = ?
		  AND start_date <= ?
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date`,
		id, r.End.String(), r.Start.String())
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	var out []payroll.ContractAssignment
	for rows.Next() {
		var (
			c       payroll.ContractAssignment
			rate    string
			start   string
			endNull sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.Title, &rate, &start, &endNull); err != nil {
			return nil, err
		}
		c.MonthlyRate = payroll.MoneyFromString(rate)
		if c.Start, err = scanDate(start); err != nil {
			return nil, err
		}
		if c.End, err = scanNullDate(endNull); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// BonusesFor returns bonuses dated within the range, inclusive both ends.
func (s *Store) BonusesFor(ctx context.Context, id payroll.EmployeeID, r payroll.Range) ([]payroll.Bonus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, title, amount, bonus_date
		FROM bonuses
		WHERE employee_id = ? AND bonus_date >= ? AND bonus_date <= ?
		ORDER BY bonus_date`,
		id, r.Start.String(), r.End.String())
	if err != nil {
		return nil, fmt.Errorf("query bonuses: %w", err)
	}
	defer rows.Close()

	var out []payroll.Bonus
	for rows.Next() {
		var (
			b      payroll.Bonus
			amount string
			day    string
		)
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Title, &amount, &day); err != nil {
			return nil, err
		}
		b.Amount = payroll.MoneyFromString(amount)
		if b.Date, err = scanDate(day); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all records. Only used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"bonuses", "contracts", "positions", "children", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
