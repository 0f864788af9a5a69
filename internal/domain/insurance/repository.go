package insurance

import (
	"context"

	"github.com/shopspring/decimal"
)

type UpdateRatesRequest struct {
	InsuranceID        string           `json:"-"`
	RegularRate        *decimal.Decimal `json:"regular_rate,omitempty"`
	RegularUnitMinutes *int             `json:"regular_unit_minutes,omitempty"`
	BCBARate           *decimal.Decimal `json:"bcba_rate,omitempty"`
	BCBAUnitMinutes    *int             `json:"bcba_unit_minutes,omitempty"`
	ChangedBy          *string          `json:"-"`
}

type InsuranceRepository interface {
	GetByID(ctx context.Context, id string) (Insurance, error)

	// GetByClientID resolves the payer assigned to a client. Returns
	// ErrNoInsuranceAssigned when the client has no payer.
	GetByClientID(ctx context.Context, clientID string) (Insurance, error)

	// UpdateRates changes rate fields and appends one RateHistory row per
	// changed field in the same transaction.
	UpdateRates(ctx context.Context, req UpdateRatesRequest) (Insurance, error)

	GetRateHistory(ctx context.Context, insuranceID string) ([]RateHistory, error)
}
