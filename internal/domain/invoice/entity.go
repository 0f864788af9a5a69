package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enum
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "DRAFT"
	StatusReady         InvoiceStatus = "READY"
	StatusSent          InvoiceStatus = "SENT"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
)

// Invoice covers one client's billable entries for one Monday-Sunday week.
// Invariant: Outstanding == TotalAmount + Adjustments - PaidAmount, and for
// a given client the period ranges of two non-deleted invoices never
// overlap.
type Invoice struct {
	ID          string
	Number      string
	ClientID    string
	Kind        string // timesheet kind the invoice was generated from
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      InvoiceStatus
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Adjustments decimal.Decimal
	Outstanding decimal.Decimal
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvoiceEntry - one billable line, collapsed per calendar date. Rate and
// units are frozen at generation time; later payer rate changes never touch
// existing lines.
type InvoiceEntry struct {
	ID          string
	InvoiceID   string
	TimesheetID string
	ProviderID  string
	InsuranceID string
	ServiceDate time.Time
	Minutes     int
	Units       int64
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// Payment - append-only ledger row against an invoice.
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Method    *string
	Reference *string
	PaidAt    time.Time
	CreatedAt time.Time
}

// InvoiceAdjustment - append-only signed correction against an invoice.
type InvoiceAdjustment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Reason    *string
	CreatedAt time.Time
}
