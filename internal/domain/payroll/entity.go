package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee - pay configuration. OvertimeStartMinutes is a time-of-day
// boundary (minutes since midnight) that recurs every civil day; minutes
// worked at or after it are overtime.
type Employee struct {
	ID                   string
	Name                 string
	HourlyRate           decimal.Decimal
	OvertimeEnabled      bool
	OvertimeRateHourly   *decimal.Decimal
	OvertimeStartMinutes *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ImportRow - one raw clock-in/clock-out record from a time-clock import.
// Rows with a nil EmployeeID cannot be paid and are reported as unlinked.
// PresummedMinutes is set instead of In/Out for imports that only carry a
// per-day total.
type ImportRow struct {
	ID               string
	EmployeeID       *string
	WorkDate         time.Time
	InMinutes        int
	OutMinutes       int
	PresummedMinutes *int
	ImportedAt       time.Time
}

// Split - a worked interval divided at the overtime boundary.
type Split struct {
	RegularMinutes  int
	OvertimeMinutes int
}

// Run aggregates selected import rows into per-employee pay lines for a
// period. Lines are created once with the run; only payment recording
// mutates them afterward.
type Run struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Notes       *string
	CreatedAt   time.Time

	Lines []RunLine
}

type RunLine struct {
	ID              string
	RunID           string
	EmployeeID      string
	EmployeeName    string
	TotalMinutes    int
	RegularMinutes  int
	OvertimeMinutes int
	HourlyRate      decimal.Decimal
	OvertimeRate    decimal.Decimal
	RegularPay      decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossPay        decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountOwed      decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
