package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type invoiceRepository struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) invoice.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, number, client_id, kind, period_start, period_end, status,
			   total_amount, paid_amount, adjustments, outstanding,
			   deleted_at, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`

	var inv invoice.Invoice
	err := q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Number, &inv.ClientID, &inv.Kind, &inv.PeriodStart, &inv.PeriodEnd, &inv.Status,
		&inv.TotalAmount, &inv.PaidAmount, &inv.Adjustments, &inv.Outstanding,
		&inv.DeletedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return invoice.Invoice{}, invoice.ErrInvoiceNotFound
		}
		return invoice.Invoice{}, fmt.Errorf("failed to get invoice: %w", err)
	}

	return inv, nil
}

func (r *invoiceRepository) ExistsOverlapping(ctx context.Context, clientID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE client_id = $1
			  AND deleted_at IS NULL
			  AND period_start <= $3
			  AND period_end >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, clientID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping invoice: %w", err)
	}

	return exists, nil
}

func (r *invoiceRepository) LockClientPeriod(ctx context.Context, clientID, weekKey string) error {
	q := GetQuerier(ctx, r.db)

	// Transaction-scoped advisory lock keyed on the (client, week) cell.
	// Released automatically at commit or rollback.
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := q.Exec(ctx, query, clientID+":"+weekKey); err != nil {
		return fmt.Errorf("failed to lock client period: %w", err)
	}

	return nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv invoice.Invoice, entries []invoice.InvoiceEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invoices (
			id, number, client_id, kind, period_start, period_end, status,
			total_amount, paid_amount, adjustments, outstanding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		inv.ID, inv.Number, inv.ClientID, inv.Kind, inv.PeriodStart, inv.PeriodEnd, inv.Status,
		inv.TotalAmount, inv.PaidAmount, inv.Adjustments, inv.Outstanding,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	entryQuery := `
		INSERT INTO invoice_entries (
			id, invoice_id, timesheet_id, provider_id, insurance_id,
			service_date, minutes, units, rate, amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, e := range entries {
		_, err := q.Exec(ctx, entryQuery,
			e.ID, e.InvoiceID, e.TimesheetID, e.ProviderID, e.InsuranceID,
			e.ServiceDate, e.Minutes, e.Units, e.Rate, e.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to create invoice entry: %w", err)
		}
	}

	return nil
}

func (r *invoiceRepository) GetEntries(ctx context.Context, invoiceID string) ([]invoice.InvoiceEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, invoice_id, timesheet_id, provider_id, insurance_id,
			   service_date, minutes, units, rate, amount, created_at
		FROM invoice_entries
		WHERE invoice_id = $1
		ORDER BY service_date, timesheet_id
	`

	rows, err := q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice entries: %w", err)
	}
	defer rows.Close()

	var entries []invoice.InvoiceEntry
	for rows.Next() {
		var e invoice.InvoiceEntry
		if err := rows.Scan(
			&e.ID, &e.InvoiceID, &e.TimesheetID, &e.ProviderID, &e.InsuranceID,
			&e.ServiceDate, &e.Minutes, &e.Units, &e.Rate, &e.Amount, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice entries: %w", err)
	}

	return entries, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id string, status invoice.InvoiceStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrInvoiceNotFound
	}

	return nil
}

func (r *invoiceRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE invoices SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrInvoiceNotFound
	}

	return nil
}

func (r *invoiceRepository) InsertPayment(ctx context.Context, p invoice.Payment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invoice_payments (id, invoice_id, amount, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := q.Exec(ctx, query, p.ID, p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaidAt); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

func (r *invoiceRepository) InsertAdjustment(ctx context.Context, a invoice.InvoiceAdjustment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invoice_adjustments (id, invoice_id, amount, reason)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := q.Exec(ctx, query, a.ID, a.InvoiceID, a.Amount, a.Reason); err != nil {
		return fmt.Errorf("failed to insert adjustment: %w", err)
	}

	return nil
}

func (r *invoiceRepository) UpdateTotals(ctx context.Context, id string, paid, adjustments, outstanding decimal.Decimal, status invoice.InvoiceStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE invoices
		SET paid_amount = $2, adjustments = $3, outstanding = $4, status = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, paid, adjustments, outstanding, status)
	if err != nil {
		return fmt.Errorf("failed to update invoice totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrInvoiceNotFound
	}

	return nil
}
