package payroll

import (
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type BuildRunRequest struct {
	PeriodStart  string   `json:"period_start"` // "2006-01-02"
	PeriodEnd    string   `json:"period_end"`
	ImportRowIDs []string `json:"import_row_ids"`
	// RateOverrides replaces the configured overtime rate per employee for
	// this run only.
	RateOverrides map[string]decimal.Decimal `json:"rate_overrides,omitempty"`
	Notes         *string                    `json:"notes,omitempty"`
	ActorID       *string                    `json:"actor_id,omitempty"`
}

func (r *BuildRunRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.PeriodStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, okEnd := validator.IsValidDate(r.PeriodEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must not be before period_start"})
	}
	if len(r.ImportRowIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "import_row_ids", Message: "at least one row is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunLineResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	TotalMinutes    int             `json:"total_minutes"`
	RegularMinutes  int             `json:"regular_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	OvertimeRate    decimal.Decimal `json:"overtime_rate"`
	RegularPay      decimal.Decimal `json:"regular_pay"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountOwed      decimal.Decimal `json:"amount_owed"`
}

type RunResponse struct {
	ID          string            `json:"id"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Notes       *string           `json:"notes,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Lines       []RunLineResponse `json:"lines"`
	// UnlinkedRowIDs lists selected rows that could not be paid because no
	// employee is linked. Reported, never silently dropped.
	UnlinkedRowIDs []string `json:"unlinked_row_ids,omitempty"`
}

func ToRunResponse(run Run, unlinked []string) RunResponse {
	lines := make([]RunLineResponse, 0, len(run.Lines))
	for _, l := range run.Lines {
		lines = append(lines, RunLineResponse{
			ID:              l.ID,
			EmployeeID:      l.EmployeeID,
			EmployeeName:    l.EmployeeName,
			TotalMinutes:    l.TotalMinutes,
			RegularMinutes:  l.RegularMinutes,
			OvertimeMinutes: l.OvertimeMinutes,
			HourlyRate:      l.HourlyRate,
			OvertimeRate:    l.OvertimeRate,
			RegularPay:      l.RegularPay,
			OvertimePay:     l.OvertimePay,
			GrossPay:        l.GrossPay,
			AmountPaid:      l.AmountPaid,
			AmountOwed:      l.AmountOwed,
		})
	}

	return RunResponse{
		ID:             run.ID,
		PeriodStart:    run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      run.PeriodEnd.Format("2006-01-02"),
		Notes:          run.Notes,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
		Lines:          lines,
		UnlinkedRowIDs: unlinked,
	}
}

// ========== LINE PAYMENT DTOs ==========

type LinePaymentRequest struct {
	LineID  string          `json:"-"`
	Amount  decimal.Decimal `json:"amount"`
	ActorID *string         `json:"actor_id,omitempty"`
}

func (r *LinePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
