package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
}

type ImportRowRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]ImportRow, error)
}

type RunRepository interface {
	// CreateRun inserts the run and all of its lines in one transaction.
	CreateRun(ctx context.Context, run Run) (Run, error)

	GetRunByID(ctx context.Context, id string) (Run, error)

	GetLineByID(ctx context.Context, lineID string) (RunLine, error)

	// ApplyLinePayment increases AmountPaid and decreases AmountOwed
	// (floored at zero) on one line, atomically.
	ApplyLinePayment(ctx context.Context, lineID string, amount decimal.Decimal) (RunLine, error)
}
