package timesheet

import (
	"time"
)

// Kind separates the two billing paths. Regular and BCBA timesheets are
// never invoiced together and resolve their rates from different pairs on
// the payer record.
type Kind string

const (
	KindRegular Kind = "regular"
	KindBCBA    Kind = "bcba"
)

// Category marks the scheduling class of a timesheet. Secondary timesheets
// are exempt from overlap checking by business rule.
type Category string

const (
	CategoryPrimary   Category = "primary"
	CategorySecondary Category = "secondary"
)

// EntryType enum
type EntryType string

const (
	EntryTypeSession EntryType = "session"
	// EntryTypeSupervision bills zero on regular timesheets; BCBA timesheets
	// bill it normally.
	EntryTypeSupervision EntryType = "supervision"
)

// TimesheetEntry - one scheduled/worked interval. Start/end are day-local
// clock times in minutes since midnight; Date is the stored UTC instant of
// the calendar day.
type TimesheetEntry struct {
	ID              string
	TimesheetID     string
	Date            time.Time
	StartMinutes    int
	EndMinutes      int
	DurationMinutes int
	EntryType       EntryType
	Invoiced        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusSent     Status = "sent"
)

// Timesheet owns an ordered set of entries for one provider/client pair.
// InvoiceID is set exactly once, inside the invoicing transaction.
type Timesheet struct {
	ID          string
	ProviderID  string
	ClientID    string
	InsuranceID *string
	Kind        Kind
	Category    Category
	Status      Status
	StartDate   time.Time
	InvoiceID   *string
	InvoicedAt  *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Entries []TimesheetEntry
}

// ConflictScanEntry is the persisted-entry snapshot the overlap detector
// compares candidates against, with enough context for diagnostic display.
type ConflictScanEntry struct {
	EntryID      string
	TimesheetID  string
	ProviderID   string
	ClientID     string
	Date         time.Time
	StartMinutes int
	EndMinutes   int
	EntryType    EntryType
}
