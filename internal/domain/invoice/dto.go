package invoice

import (
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GenerateRequest struct {
	// PeriodStart is any date inside the target week ("2006-01-02"); the
	// service snaps it to the Monday-Sunday week. Empty means the current
	// week.
	PeriodStart string  `json:"period_start,omitempty"`
	ClientID    *string `json:"client_id,omitempty"`
	Kind        string  `json:"kind"` // "regular" or "bcba"
	ActorID     *string `json:"actor_id,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Kind, []string{"regular", "bcba"}) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be one of: regular, bcba"})
	}
	if r.PeriodStart != "" {
		if _, ok := validator.IsValidDate(r.PeriodStart); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GroupResult reports the outcome for one (client, week) cell.
type GroupResult struct {
	ClientID  string  `json:"client_id"`
	WeekStart string  `json:"week_start"`
	Outcome   string  `json:"outcome"` // "created", "skipped", "error"
	Reason    string  `json:"reason,omitempty"`
	InvoiceID *string `json:"invoice_id,omitempty"`
	Number    *string `json:"number,omitempty"`
}

// GenerateSummary - batch outcome. One group's failure never aborts the
// rest; callers get every per-group result.
type GenerateSummary struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Groups  []GroupResult `json:"groups"`
}

// ========== BILLING PREVIEW DTOs ==========

type BillPreviewEntry struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	EntryType string `json:"entry_type,omitempty"`
}

type BillPreviewRequest struct {
	InsuranceID string             `json:"insurance_id"`
	Kind        string             `json:"kind"`
	Entries     []BillPreviewEntry `json:"entries"`
}

func (r *BillPreviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.InsuranceID) {
		errs = append(errs, validator.ValidationError{Field: "insurance_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.Kind, []string{"regular", "bcba"}) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be one of: regular, bcba"})
	}
	if len(r.Entries) == 0 {
		errs = append(errs, validator.ValidationError{Field: "entries", Message: "at least one entry is required"})
	}
	for i, e := range r.Entries {
		field := "entries[" + validator.Itoa(i) + "]"
		if clock.ParseClock(e.StartTime) == clock.NoTime {
			errs = append(errs, validator.ValidationError{Field: field + ".start_time", Message: "could not be parsed"})
		}
		if clock.ParseClock(e.EndTime) == clock.NoTime {
			errs = append(errs, validator.ValidationError{Field: field + ".end_time", Message: "could not be parsed"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BillPreviewLine struct {
	Date    string          `json:"date"`
	Minutes int             `json:"minutes"`
	Units   int64           `json:"units"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

type BillPreviewResponse struct {
	UnitMinutes int               `json:"unit_minutes"`
	Lines       []BillPreviewLine `json:"lines"`
	TotalUnits  int64             `json:"total_units"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// ========== PAYMENT / ADJUSTMENT DTOs ==========

type RecordPaymentRequest struct {
	InvoiceID string          `json:"-"`
	Amount    decimal.Decimal `json:"amount"`
	Method    *string         `json:"method,omitempty"`
	Reference *string         `json:"reference,omitempty"`
	PaidAt    *string         `json:"paid_at,omitempty"` // "2006-01-02", defaults to today
	ActorID   *string         `json:"actor_id,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}
	if r.PaidAt != nil {
		if _, ok := validator.IsValidDate(*r.PaidAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "paid_at", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordAdjustmentRequest struct {
	InvoiceID string          `json:"-"`
	Amount    decimal.Decimal `json:"amount"` // signed
	Reason    *string         `json:"reason,omitempty"`
	ActorID   *string         `json:"actor_id,omitempty"`
}

func (r *RecordAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Amount.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-zero"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type InvoiceResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	ClientID    string          `json:"client_id"`
	Kind        string          `json:"kind"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Adjustments decimal.Decimal `json:"adjustments"`
	Outstanding decimal.Decimal `json:"outstanding"`
	CreatedAt   string          `json:"created_at"`
}

func ToInvoiceResponse(inv Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		ClientID:    inv.ClientID,
		Kind:        inv.Kind,
		PeriodStart: inv.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   inv.PeriodEnd.Format("2006-01-02"),
		Status:      string(inv.Status),
		TotalAmount: inv.TotalAmount,
		PaidAmount:  inv.PaidAmount,
		Adjustments: inv.Adjustments,
		Outstanding: inv.Outstanding,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}
}
