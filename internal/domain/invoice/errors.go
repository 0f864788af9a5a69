package invoice

import "errors"

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceExistsForWeek = errors.New("an invoice already exists for this client and period")
	ErrNothingToInvoice     = errors.New("no eligible entries remain for this period")
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrInvoiceNotDraft      = errors.New("invoice is not in draft status")
	ErrInvoiceDeleted       = errors.New("invoice has been deleted")
	ErrInvalidStatusChange  = errors.New("invalid invoice status transition")
	ErrZeroAdjustment       = errors.New("adjustment amount must be non-zero")
	ErrMixedTimesheetKinds  = errors.New("cannot invoice regular and bcba timesheets together")
)
