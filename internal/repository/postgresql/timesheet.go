package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepository{db: db}
}

func (r *timesheetRepository) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, provider_id, client_id, insurance_id, kind, category, status,
			   start_date, invoice_id, invoiced_at, deleted_at, created_at, updated_at
		FROM timesheets
		WHERE id = $1
	`

	var ts timesheet.Timesheet
	err := q.QueryRow(ctx, query, id).Scan(
		&ts.ID, &ts.ProviderID, &ts.ClientID, &ts.InsuranceID, &ts.Kind, &ts.Category, &ts.Status,
		&ts.StartDate, &ts.InvoiceID, &ts.InvoicedAt, &ts.DeletedAt, &ts.CreatedAt, &ts.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}

	entries, err := r.getEntries(ctx, []string{ts.ID}, false)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	ts.Entries = entries[ts.ID]

	return ts, nil
}

func (r *timesheetRepository) GetEntriesForConflictScan(ctx context.Context, providerID, clientID string, from, to time.Time, excludeTimesheetID *string) ([]timesheet.ConflictScanEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.timesheet_id, t.provider_id, t.client_id,
			   e.date, e.start_minutes, e.end_minutes, e.entry_type
		FROM timesheet_entries e
		JOIN timesheets t ON t.id = e.timesheet_id
		WHERE t.deleted_at IS NULL
		  AND t.category <> 'secondary'
		  AND (t.provider_id = $1 OR t.client_id = $2)
		  AND e.date BETWEEN $3 AND $4
	`
	args := []interface{}{providerID, clientID, from, to}

	if excludeTimesheetID != nil {
		query += ` AND t.id <> $5`
		args = append(args, *excludeTimesheetID)
	}
	query += ` ORDER BY e.date, e.start_minutes`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries for conflicts: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.ConflictScanEntry
	for rows.Next() {
		var e timesheet.ConflictScanEntry
		if err := rows.Scan(
			&e.EntryID, &e.TimesheetID, &e.ProviderID, &e.ClientID,
			&e.Date, &e.StartMinutes, &e.EndMinutes, &e.EntryType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conflict entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conflict entries: %w", err)
	}

	return entries, nil
}

func (r *timesheetRepository) GetEligibleTimesheets(ctx context.Context, filter timesheet.EligibilityFilter) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, provider_id, client_id, insurance_id, kind, category, status,
			   start_date, invoice_id, invoiced_at, deleted_at, created_at, updated_at
		FROM timesheets t
		WHERE t.kind = $1
		  AND t.status IN ('approved', 'sent')
		  AND t.deleted_at IS NULL
		  AND t.start_date BETWEEN $2 AND $3
		  AND EXISTS (
			SELECT 1 FROM timesheet_entries e
			WHERE e.timesheet_id = t.id AND e.invoiced = FALSE
		  )
	`
	args := []interface{}{filter.Kind, filter.PeriodStart, filter.PeriodEnd}

	if filter.ClientID != nil {
		query += ` AND t.client_id = $4`
		args = append(args, *filter.ClientID)
	}
	query += ` ORDER BY t.client_id, t.start_date, t.id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible timesheets: %w", err)
	}
	defer rows.Close()

	var sheets []timesheet.Timesheet
	var ids []string
	for rows.Next() {
		var ts timesheet.Timesheet
		if err := rows.Scan(
			&ts.ID, &ts.ProviderID, &ts.ClientID, &ts.InsuranceID, &ts.Kind, &ts.Category, &ts.Status,
			&ts.StartDate, &ts.InvoiceID, &ts.InvoicedAt, &ts.DeletedAt, &ts.CreatedAt, &ts.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		sheets = append(sheets, ts)
		ids = append(ids, ts.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheets: %w", err)
	}
	if len(sheets) == 0 {
		return sheets, nil
	}

	entries, err := r.getEntries(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	for i := range sheets {
		sheets[i].Entries = entries[sheets[i].ID]
	}

	return sheets, nil
}

// getEntries loads entries for a set of timesheets, keyed by timesheet id.
// With onlyNonInvoiced, already-billed entries are filtered out.
func (r *timesheetRepository) getEntries(ctx context.Context, timesheetIDs []string, onlyNonInvoiced bool) (map[string][]timesheet.TimesheetEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timesheet_id, date, start_minutes, end_minutes, duration_minutes,
			   entry_type, invoiced, created_at, updated_at
		FROM timesheet_entries
		WHERE timesheet_id = ANY($1)
	`
	if onlyNonInvoiced {
		query += ` AND invoiced = FALSE`
	}
	query += ` ORDER BY date, start_minutes`

	rows, err := q.Query(ctx, query, timesheetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get timesheet entries: %w", err)
	}
	defer rows.Close()

	byTimesheet := make(map[string][]timesheet.TimesheetEntry)
	for rows.Next() {
		var e timesheet.TimesheetEntry
		if err := rows.Scan(
			&e.ID, &e.TimesheetID, &e.Date, &e.StartMinutes, &e.EndMinutes, &e.DurationMinutes,
			&e.EntryType, &e.Invoiced, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		byTimesheet[e.TimesheetID] = append(byTimesheet[e.TimesheetID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheet entries: %w", err)
	}

	return byTimesheet, nil
}

func (r *timesheetRepository) MarkEntriesInvoiced(ctx context.Context, entryIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheet_entries
		SET invoiced = TRUE, updated_at = NOW()
		WHERE id = ANY($1) AND invoiced = FALSE
	`

	tag, err := q.Exec(ctx, query, entryIDs)
	if err != nil {
		return fmt.Errorf("failed to mark entries invoiced: %w", err)
	}
	// Fewer rows than requested means a concurrent run billed some entry
	// first; the caller rolls the whole invoice back.
	if tag.RowsAffected() != int64(len(entryIDs)) {
		return timesheet.ErrEntryAlreadyInvoiced
	}

	return nil
}

func (r *timesheetRepository) SetInvoiceReference(ctx context.Context, timesheetIDs []string, invoiceID string, invoicedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets
		SET invoice_id = $2, invoiced_at = $3, updated_at = NOW()
		WHERE id = ANY($1) AND invoice_id IS NULL
	`

	if _, err := q.Exec(ctx, query, timesheetIDs, invoiceID, invoicedAt); err != nil {
		return fmt.Errorf("failed to set invoice reference: %w", err)
	}

	return nil
}
