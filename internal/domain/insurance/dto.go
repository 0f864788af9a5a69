package insurance

import (
	"time"

	"github.com/shopspring/decimal"
)

type InsuranceResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Rate               *decimal.Decimal `json:"rate,omitempty"`
	RegularRate        *decimal.Decimal `json:"regular_rate,omitempty"`
	RegularUnitMinutes *int             `json:"regular_unit_minutes,omitempty"`
	BCBARate           *decimal.Decimal `json:"bcba_rate,omitempty"`
	BCBAUnitMinutes    *int             `json:"bcba_unit_minutes,omitempty"`
	UpdatedAt          string           `json:"updated_at"`
}

func ToInsuranceResponse(ins Insurance) InsuranceResponse {
	return InsuranceResponse{
		ID:                 ins.ID,
		Name:               ins.Name,
		Rate:               ins.Rate,
		RegularRate:        ins.RegularRate,
		RegularUnitMinutes: ins.RegularUnitMinutes,
		BCBARate:           ins.BCBARate,
		BCBAUnitMinutes:    ins.BCBAUnitMinutes,
		UpdatedAt:          ins.UpdatedAt.Format(time.RFC3339),
	}
}

type RateHistoryResponse struct {
	ID        string           `json:"id"`
	Field     string           `json:"field"`
	OldValue  *decimal.Decimal `json:"old_value,omitempty"`
	NewValue  *decimal.Decimal `json:"new_value,omitempty"`
	ChangedBy *string          `json:"changed_by,omitempty"`
	ChangedAt string           `json:"changed_at"`
}

func ToRateHistoryResponse(h RateHistory) RateHistoryResponse {
	return RateHistoryResponse{
		ID:        h.ID,
		Field:     h.Field,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		ChangedBy: h.ChangedBy,
		ChangedAt: h.ChangedAt.Format(time.RFC3339),
	}
}
