package postgresql

import (
	"context"
	"fmt"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/payroll"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== EMPLOYEES ==========

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) payroll.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, name, hourly_rate, overtime_enabled, overtime_rate_hourly,
	   overtime_start_minutes, created_at, updated_at`

func (r *employeeRepository) GetByID(ctx context.Context, id string) (payroll.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var e payroll.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.HourlyRate, &e.OvertimeEnabled, &e.OvertimeRateHourly,
		&e.OvertimeStartMinutes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Employee{}, payroll.ErrEmployeeNotFound
		}
		return payroll.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepository) GetByIDs(ctx context.Context, ids []string) ([]payroll.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ANY($1)`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var e payroll.Employee
		if err := rows.Scan(
			&e.ID, &e.Name, &e.HourlyRate, &e.OvertimeEnabled, &e.OvertimeRateHourly,
			&e.OvertimeStartMinutes, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// ========== IMPORT ROWS ==========

type importRowRepository struct {
	db *database.DB
}

func NewImportRowRepository(db *database.DB) payroll.ImportRowRepository {
	return &importRowRepository{db: db}
}

func (r *importRowRepository) GetByIDs(ctx context.Context, ids []string) ([]payroll.ImportRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_date, in_minutes, out_minutes, presummed_minutes, imported_at
		FROM payroll_import_rows
		WHERE id = ANY($1)
		ORDER BY work_date, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get import rows: %w", err)
	}
	defer rows.Close()

	var imports []payroll.ImportRow
	for rows.Next() {
		var row payroll.ImportRow
		if err := rows.Scan(
			&row.ID, &row.EmployeeID, &row.WorkDate, &row.InMinutes, &row.OutMinutes,
			&row.PresummedMinutes, &row.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}
		imports = append(imports, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import rows: %w", err)
	}

	return imports, nil
}

// ========== RUNS ==========

type runRepository struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (id, period_start, period_end, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	if err := q.QueryRow(ctx, query, run.ID, run.PeriodStart, run.PeriodEnd, run.Notes).Scan(&run.CreatedAt); err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	lineQuery := `
		INSERT INTO payroll_run_lines (
			id, run_id, employee_id, employee_name,
			total_minutes, regular_minutes, overtime_minutes,
			hourly_rate, overtime_rate, regular_pay, overtime_pay, gross_pay,
			amount_paid, amount_owed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	for i := range run.Lines {
		line := &run.Lines[i]
		err := q.QueryRow(ctx, lineQuery,
			line.ID, run.ID, line.EmployeeID, line.EmployeeName,
			line.TotalMinutes, line.RegularMinutes, line.OvertimeMinutes,
			line.HourlyRate, line.OvertimeRate, line.RegularPay, line.OvertimePay, line.GrossPay,
			line.AmountPaid, line.AmountOwed,
		).Scan(&line.CreatedAt, &line.UpdatedAt)
		if err != nil {
			return payroll.Run{}, fmt.Errorf("failed to create payroll run line: %w", err)
		}
	}

	return run, nil
}

func (r *runRepository) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period_start, period_end, notes, created_at
		FROM payroll_runs
		WHERE id = $1
	`

	var run payroll.Run
	err := q.QueryRow(ctx, query, id).Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Notes, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	lineQuery := `
		SELECT id, run_id, employee_id, employee_name,
			   total_minutes, regular_minutes, overtime_minutes,
			   hourly_rate, overtime_rate, regular_pay, overtime_pay, gross_pay,
			   amount_paid, amount_owed, created_at, updated_at
		FROM payroll_run_lines
		WHERE run_id = $1
		ORDER BY employee_name, employee_id
	`

	rows, err := q.Query(ctx, lineQuery, id)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to get payroll run lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line payroll.RunLine
		if err := rows.Scan(
			&line.ID, &line.RunID, &line.EmployeeID, &line.EmployeeName,
			&line.TotalMinutes, &line.RegularMinutes, &line.OvertimeMinutes,
			&line.HourlyRate, &line.OvertimeRate, &line.RegularPay, &line.OvertimePay, &line.GrossPay,
			&line.AmountPaid, &line.AmountOwed, &line.CreatedAt, &line.UpdatedAt,
		); err != nil {
			return payroll.Run{}, fmt.Errorf("failed to scan payroll run line: %w", err)
		}
		run.Lines = append(run.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return payroll.Run{}, fmt.Errorf("failed to iterate payroll run lines: %w", err)
	}

	return run, nil
}

func (r *runRepository) GetLineByID(ctx context.Context, lineID string) (payroll.RunLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, run_id, employee_id, employee_name,
			   total_minutes, regular_minutes, overtime_minutes,
			   hourly_rate, overtime_rate, regular_pay, overtime_pay, gross_pay,
			   amount_paid, amount_owed, created_at, updated_at
		FROM payroll_run_lines
		WHERE id = $1
	`

	var line payroll.RunLine
	err := q.QueryRow(ctx, query, lineID).Scan(
		&line.ID, &line.RunID, &line.EmployeeID, &line.EmployeeName,
		&line.TotalMinutes, &line.RegularMinutes, &line.OvertimeMinutes,
		&line.HourlyRate, &line.OvertimeRate, &line.RegularPay, &line.OvertimePay, &line.GrossPay,
		&line.AmountPaid, &line.AmountOwed, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.RunLine{}, payroll.ErrRunLineNotFound
		}
		return payroll.RunLine{}, fmt.Errorf("failed to get payroll run line: %w", err)
	}

	return line, nil
}

func (r *runRepository) ApplyLinePayment(ctx context.Context, lineID string, amount decimal.Decimal) (payroll.RunLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_run_lines
		SET amount_paid = amount_paid + $2,
			amount_owed = GREATEST(amount_owed - $2, 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, run_id, employee_id, employee_name,
			   total_minutes, regular_minutes, overtime_minutes,
			   hourly_rate, overtime_rate, regular_pay, overtime_pay, gross_pay,
			   amount_paid, amount_owed, created_at, updated_at
	`

	var line payroll.RunLine
	err := q.QueryRow(ctx, query, lineID, amount).Scan(
		&line.ID, &line.RunID, &line.EmployeeID, &line.EmployeeName,
		&line.TotalMinutes, &line.RegularMinutes, &line.OvertimeMinutes,
		&line.HourlyRate, &line.OvertimeRate, &line.RegularPay, &line.OvertimePay, &line.GrossPay,
		&line.AmountPaid, &line.AmountOwed, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.RunLine{}, payroll.ErrRunLineNotFound
		}
		return payroll.RunLine{}, fmt.Errorf("failed to apply line payment: %w", err)
	}

	return line, nil
}
