package timesheet

import (
	"context"
	"time"
)

// EligibilityFilter selects timesheets that can still be invoiced: approved
// or sent, not soft-deleted, carrying at least one non-invoiced entry, with
// a start date inside [PeriodStart, PeriodEnd].
type EligibilityFilter struct {
	Kind        Kind
	ClientID    *string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type TimesheetRepository interface {
	GetByID(ctx context.Context, id string) (Timesheet, error)

	// GetEntriesForConflictScan returns entries of non-deleted, non-secondary
	// timesheets whose provider or client matches and whose stored date falls
	// in [from, to]. Callers pass a widened range and re-normalize dates
	// before comparing. Entries of excludeTimesheetID are omitted.
	GetEntriesForConflictScan(ctx context.Context, providerID, clientID string, from, to time.Time, excludeTimesheetID *string) ([]ConflictScanEntry, error)

	// GetEligibleTimesheets loads eligible timesheets with only their
	// non-invoiced entries attached.
	GetEligibleTimesheets(ctx context.Context, filter EligibilityFilter) ([]Timesheet, error)

	// MarkEntriesInvoiced flips invoiced=true on every listed entry. It fails
	// with ErrEntryAlreadyInvoiced when any entry was already flagged, so an
	// invoicing transaction can roll back instead of double-billing.
	MarkEntriesInvoiced(ctx context.Context, entryIDs []string) error

	// SetInvoiceReference records the consuming invoice on timesheets whose
	// back-reference is still unset.
	SetInvoiceReference(ctx context.Context, timesheetIDs []string, invoiceID string, invoicedAt time.Time) error
}
