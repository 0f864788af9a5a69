package insurance

import (
	"context"
	"log/slog"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
)

type InsuranceServiceImpl struct {
	tx            database.TxRunner
	insuranceRepo insurance.InsuranceRepository
	auditRec      audit.Recorder
	logger        *slog.Logger
}

func NewInsuranceService(
	tx database.TxRunner,
	insuranceRepo insurance.InsuranceRepository,
	auditRec audit.Recorder,
	logger *slog.Logger,
) insurance.InsuranceService {
	return &InsuranceServiceImpl{
		tx:            tx,
		insuranceRepo: insuranceRepo,
		auditRec:      auditRec,
		logger:        logger,
	}
}

func (s *InsuranceServiceImpl) Get(ctx context.Context, id string) (insurance.InsuranceResponse, error) {
	ins, err := s.insuranceRepo.GetByID(ctx, id)
	if err != nil {
		return insurance.InsuranceResponse{}, err
	}
	return insurance.ToInsuranceResponse(ins), nil
}

func (s *InsuranceServiceImpl) UpdateRates(ctx context.Context, req insurance.UpdateRatesRequest) (insurance.InsuranceResponse, error) {
	if req.RegularRate != nil && !req.RegularRate.IsPositive() {
		return insurance.InsuranceResponse{}, insurance.ErrInvalidRate
	}
	if req.BCBARate != nil && !req.BCBARate.IsPositive() {
		return insurance.InsuranceResponse{}, insurance.ErrInvalidRate
	}
	if req.RegularUnitMinutes != nil && *req.RegularUnitMinutes < 1 {
		return insurance.InsuranceResponse{}, insurance.ErrInvalidUnitSize
	}
	if req.BCBAUnitMinutes != nil && *req.BCBAUnitMinutes < 1 {
		return insurance.InsuranceResponse{}, insurance.ErrInvalidUnitSize
	}

	var updated insurance.Insurance
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.insuranceRepo.UpdateRates(ctx, req)
		return err
	})
	if err != nil {
		return insurance.InsuranceResponse{}, err
	}

	event := audit.Event{
		Action:     audit.ActionUpdate,
		EntityType: "insurance",
		EntityID:   updated.ID,
		ActorID:    req.ChangedBy,
		Metadata:   map[string]any{"name": updated.Name},
		OccurredAt: time.Now().UTC(),
	}
	if err := s.auditRec.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed",
			slog.String("entity_type", event.EntityType),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()))
	}

	return insurance.ToInsuranceResponse(updated), nil
}

func (s *InsuranceServiceImpl) GetRateHistory(ctx context.Context, insuranceID string) ([]insurance.RateHistoryResponse, error) {
	if _, err := s.insuranceRepo.GetByID(ctx, insuranceID); err != nil {
		return nil, err
	}

	history, err := s.insuranceRepo.GetRateHistory(ctx, insuranceID)
	if err != nil {
		return nil, err
	}

	out := make([]insurance.RateHistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, insurance.ToRateHistoryResponse(h))
	}
	return out, nil
}
