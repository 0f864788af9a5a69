package billing

import (
	"context"
	"fmt"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type BillingServiceImpl struct {
	insuranceRepo insurance.InsuranceRepository
	calculator    *Calculator
}

func NewBillingService(insuranceRepo insurance.InsuranceRepository, calculator *Calculator) invoice.BillingService {
	return &BillingServiceImpl{
		insuranceRepo: insuranceRepo,
		calculator:    calculator,
	}
}

// Preview prices a set of entries against a payer's rate table without
// persisting anything.
func (s *BillingServiceImpl) Preview(ctx context.Context, req invoice.BillPreviewRequest) (invoice.BillPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return invoice.BillPreviewResponse{}, err
	}

	ins, err := s.insuranceRepo.GetByID(ctx, req.InsuranceID)
	if err != nil {
		return invoice.BillPreviewResponse{}, fmt.Errorf("failed to get insurance: %w", err)
	}

	kind := timesheet.Kind(req.Kind)
	rate, unitMinutes, err := s.calculator.ResolveRate(ins, kind)
	if err != nil {
		return invoice.BillPreviewResponse{}, err
	}

	resp := invoice.BillPreviewResponse{
		UnitMinutes: unitMinutes,
		Lines:       make([]invoice.BillPreviewLine, 0, len(req.Entries)),
		TotalAmount: decimal.Zero,
	}

	for _, e := range req.Entries {
		minutes := clock.Duration(clock.ParseClock(e.StartTime), clock.ParseClock(e.EndTime))
		entryType := timesheet.EntryType(e.EntryType)
		if entryType == "" {
			entryType = timesheet.EntryTypeSession
		}

		units, amount := s.calculator.Bill(minutes, entryType, rate, unitMinutes, kind)
		resp.Lines = append(resp.Lines, invoice.BillPreviewLine{
			Date:    e.Date,
			Minutes: minutes,
			Units:   units,
			Rate:    rate,
			Amount:  amount,
		})
		resp.TotalUnits += units
		resp.TotalAmount = resp.TotalAmount.Add(amount)
	}

	return resp, nil
}
