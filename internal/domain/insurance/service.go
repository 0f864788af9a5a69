package insurance

import "context"

type InsuranceService interface {
	Get(ctx context.Context, id string) (InsuranceResponse, error)

	// UpdateRates validates and applies rate changes, appending one rate
	// history row per changed field in the same transaction.
	UpdateRates(ctx context.Context, req UpdateRatesRequest) (InsuranceResponse, error)

	GetRateHistory(ctx context.Context, insuranceID string) ([]RateHistoryResponse, error)
}
