package insurance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Insurance - per-payer rate table. Regular and BCBA timesheets resolve
// their rate/unit pair independently; Rate is the legacy single-rate
// fallback kept for payers created before the pairs existed.
type Insurance struct {
	ID                 string
	Name               string
	Rate               *decimal.Decimal
	RegularRate        *decimal.Decimal
	RegularUnitMinutes *int
	BCBARate           *decimal.Decimal
	BCBAUnitMinutes    *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RateHistory - append-only log row written whenever a payer's rates change.
// Historical invoice lines keep the rate they were billed at; this log is
// the only record of what changed and when.
type RateHistory struct {
	ID          string
	InsuranceID string
	Field       string
	OldValue    *decimal.Decimal
	NewValue    *decimal.Decimal
	ChangedBy   *string
	ChangedAt   time.Time
}
