package postgresql

import (
	"context"
	"fmt"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
)

// invoiceNumberSequence hands out PREFIX-YEAR-NNNN numbers from a
// single-row-per-year counter. The upsert increments and returns under the
// row lock, so two transactions can never observe the same value.
type invoiceNumberSequence struct {
	db     *database.DB
	prefix string
}

func NewInvoiceNumberSequence(db *database.DB, prefix string) invoice.NumberSequence {
	return &invoiceNumberSequence{db: db, prefix: prefix}
}

func (s *invoiceNumberSequence) Next(ctx context.Context, year int) (string, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO invoice_number_sequences (year, value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET value = invoice_number_sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := q.QueryRow(ctx, query, year).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to advance invoice number sequence: %w", err)
	}

	return fmt.Sprintf("%s-%d-%04d", s.prefix, year, value), nil
}
