package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (Invoice, error)

	// ExistsOverlapping reports whether a non-deleted invoice for clientID
	// has a period range intersecting [start, end]. The generation
	// idempotency check.
	ExistsOverlapping(ctx context.Context, clientID string, start, end time.Time) (bool, error)

	// LockClientPeriod takes a transaction-scoped advisory lock on the
	// (client, week) cell so concurrent generation runs serialize on the
	// check-then-create sequence. Released automatically at commit/rollback.
	LockClientPeriod(ctx context.Context, clientID, weekKey string) error

	// Create inserts the invoice and all of its lines. Must run inside a
	// transaction together with the entry/timesheet flag updates.
	Create(ctx context.Context, inv Invoice, entries []InvoiceEntry) error

	GetEntries(ctx context.Context, invoiceID string) ([]InvoiceEntry, error)

	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error

	// SoftDelete marks a draft invoice deleted.
	SoftDelete(ctx context.Context, id string) error

	// InsertPayment / InsertAdjustment append a ledger row. The caller
	// recomputes and persists the invoice totals in the same transaction.
	InsertPayment(ctx context.Context, p Payment) error
	InsertAdjustment(ctx context.Context, a InvoiceAdjustment) error
	UpdateTotals(ctx context.Context, id string, paid, adjustments, outstanding decimal.Decimal, status InvoiceStatus) error
}

// NumberSequence allocates sequential human-readable invoice numbers,
// formatted PREFIX-YEAR-NNNN and monotonic within a year.
type NumberSequence interface {
	Next(ctx context.Context, year int) (string, error)
}
