package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type insuranceRepository struct {
	db *database.DB
}

func NewInsuranceRepository(db *database.DB) insurance.InsuranceRepository {
	return &insuranceRepository{db: db}
}

const insuranceColumns = `id, name, rate, regular_rate, regular_unit_minutes,
	   bcba_rate, bcba_unit_minutes, created_at, updated_at`

func scanInsurance(row pgx.Row) (insurance.Insurance, error) {
	var ins insurance.Insurance
	err := row.Scan(
		&ins.ID, &ins.Name, &ins.Rate, &ins.RegularRate, &ins.RegularUnitMinutes,
		&ins.BCBARate, &ins.BCBAUnitMinutes, &ins.CreatedAt, &ins.UpdatedAt,
	)
	return ins, err
}

func (r *insuranceRepository) GetByID(ctx context.Context, id string) (insurance.Insurance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + insuranceColumns + ` FROM insurances WHERE id = $1`

	ins, err := scanInsurance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return insurance.Insurance{}, insurance.ErrInsuranceNotFound
		}
		return insurance.Insurance{}, fmt.Errorf("failed to get insurance: %w", err)
	}

	return ins, nil
}

func (r *insuranceRepository) GetByClientID(ctx context.Context, clientID string) (insurance.Insurance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT i.id, i.name, i.rate, i.regular_rate, i.regular_unit_minutes,
			   i.bcba_rate, i.bcba_unit_minutes, i.created_at, i.updated_at
		FROM insurances i
		JOIN clients c ON c.insurance_id = i.id
		WHERE c.id = $1
	`

	ins, err := scanInsurance(q.QueryRow(ctx, query, clientID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return insurance.Insurance{}, insurance.ErrNoInsuranceAssigned
		}
		return insurance.Insurance{}, fmt.Errorf("failed to get insurance for client: %w", err)
	}

	return ins, nil
}

func (r *insuranceRepository) UpdateRates(ctx context.Context, req insurance.UpdateRatesRequest) (insurance.Insurance, error) {
	q := GetQuerier(ctx, r.db)

	current, err := r.GetByID(ctx, req.InsuranceID)
	if err != nil {
		return insurance.Insurance{}, err
	}

	intDec := func(v int) *decimal.Decimal {
		d := decimal.NewFromInt(int64(v))
		return &d
	}

	var setClauses []string
	var args []interface{}
	var history []insurance.RateHistory
	i := 1

	if req.RegularRate != nil {
		setClauses = append(setClauses, fmt.Sprintf("regular_rate = $%d", i))
		args = append(args, *req.RegularRate)
		history = append(history, insurance.RateHistory{Field: "regular_rate", OldValue: current.RegularRate, NewValue: req.RegularRate})
		i++
	}
	if req.RegularUnitMinutes != nil {
		setClauses = append(setClauses, fmt.Sprintf("regular_unit_minutes = $%d", i))
		args = append(args, *req.RegularUnitMinutes)
		var old *decimal.Decimal
		if current.RegularUnitMinutes != nil {
			old = intDec(*current.RegularUnitMinutes)
		}
		history = append(history, insurance.RateHistory{Field: "regular_unit_minutes", OldValue: old, NewValue: intDec(*req.RegularUnitMinutes)})
		i++
	}
	if req.BCBARate != nil {
		setClauses = append(setClauses, fmt.Sprintf("bcba_rate = $%d", i))
		args = append(args, *req.BCBARate)
		history = append(history, insurance.RateHistory{Field: "bcba_rate", OldValue: current.BCBARate, NewValue: req.BCBARate})
		i++
	}
	if req.BCBAUnitMinutes != nil {
		setClauses = append(setClauses, fmt.Sprintf("bcba_unit_minutes = $%d", i))
		args = append(args, *req.BCBAUnitMinutes)
		var old *decimal.Decimal
		if current.BCBAUnitMinutes != nil {
			old = intDec(*current.BCBAUnitMinutes)
		}
		history = append(history, insurance.RateHistory{Field: "bcba_unit_minutes", OldValue: old, NewValue: intDec(*req.BCBAUnitMinutes)})
		i++
	}

	if len(setClauses) == 0 {
		return current, nil
	}

	query := fmt.Sprintf(`
		UPDATE insurances
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING `+insuranceColumns,
		strings.Join(setClauses, ", "), i)
	args = append(args, req.InsuranceID)

	updated, err := scanInsurance(q.QueryRow(ctx, query, args...))
	if err != nil {
		return insurance.Insurance{}, fmt.Errorf("failed to update insurance rates: %w", err)
	}

	historyQuery := `
		INSERT INTO insurance_rate_history (insurance_id, field, old_value, new_value, changed_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, h := range history {
		if _, err := q.Exec(ctx, historyQuery, req.InsuranceID, h.Field, h.OldValue, h.NewValue, req.ChangedBy); err != nil {
			return insurance.Insurance{}, fmt.Errorf("failed to append rate history: %w", err)
		}
	}

	return updated, nil
}

func (r *insuranceRepository) GetRateHistory(ctx context.Context, insuranceID string) ([]insurance.RateHistory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, insurance_id, field, old_value, new_value, changed_by, changed_at
		FROM insurance_rate_history
		WHERE insurance_id = $1
		ORDER BY changed_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, insuranceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate history: %w", err)
	}
	defer rows.Close()

	var entries []insurance.RateHistory
	for rows.Next() {
		var h insurance.RateHistory
		if err := rows.Scan(&h.ID, &h.InsuranceID, &h.Field, &h.OldValue, &h.NewValue, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate history: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rate history: %w", err)
	}

	return entries, nil
}
