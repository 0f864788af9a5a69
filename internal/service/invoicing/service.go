package invoicing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/brightpath-aba/billing-backend-go/internal/service/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceServiceImpl struct {
	tx            database.TxRunner
	timesheetRepo timesheet.TimesheetRepository
	insuranceRepo insurance.InsuranceRepository
	invoiceRepo   invoice.InvoiceRepository
	sequence      invoice.NumberSequence
	calculator    *billing.Calculator
	auditRec      audit.Recorder
	logger        *slog.Logger
	loc           *time.Location
}

func NewInvoiceService(
	tx database.TxRunner,
	timesheetRepo timesheet.TimesheetRepository,
	insuranceRepo insurance.InsuranceRepository,
	invoiceRepo invoice.InvoiceRepository,
	sequence invoice.NumberSequence,
	calculator *billing.Calculator,
	auditRec audit.Recorder,
	logger *slog.Logger,
	loc *time.Location,
) invoice.InvoiceService {
	return &InvoiceServiceImpl{
		tx:            tx,
		timesheetRepo: timesheetRepo,
		insuranceRepo: insuranceRepo,
		invoiceRepo:   invoiceRepo,
		sequence:      sequence,
		calculator:    calculator,
		auditRec:      auditRec,
		logger:        logger,
		loc:           loc,
	}
}

// invoiceGroup is one (client, week) cell of a generation batch.
type invoiceGroup struct {
	clientID   string
	weekStart  time.Time
	weekEnd    time.Time
	timesheets []timesheet.Timesheet
}

// ========== GENERATION ==========

// Generate builds at most one DRAFT invoice per (client, week) cell for the
// requested period. Groups fail and skip independently; the batch always
// runs to the end.
func (s *InvoiceServiceImpl) Generate(ctx context.Context, req invoice.GenerateRequest) (invoice.GenerateSummary, error) {
	if err := req.Validate(); err != nil {
		return invoice.GenerateSummary{}, err
	}

	weekStart := clock.WeekStart(time.Now(), s.loc)
	if req.PeriodStart != "" {
		anchor, err := time.ParseInLocation("2006-01-02", req.PeriodStart, s.loc)
		if err != nil {
			return invoice.GenerateSummary{}, fmt.Errorf("invalid period_start: %w", err)
		}
		weekStart = clock.WeekStart(anchor, s.loc)
	}
	weekEnd := weekStart.AddDate(0, 0, 6)
	kind := timesheet.Kind(req.Kind)

	// Fetch with a one-day margin on each side; stored start dates are UTC
	// instants and re-normalize into their civil week below.
	eligible, err := s.timesheetRepo.GetEligibleTimesheets(ctx, timesheet.EligibilityFilter{
		Kind:        kind,
		ClientID:    req.ClientID,
		PeriodStart: weekStart.AddDate(0, 0, -1),
		PeriodEnd:   weekEnd.AddDate(0, 0, 2),
	})
	if err != nil {
		return invoice.GenerateSummary{}, fmt.Errorf("failed to load eligible timesheets: %w", err)
	}

	groups := s.groupByClientWeek(eligible, weekStart)

	summary := invoice.GenerateSummary{Groups: []invoice.GroupResult{}}
	for _, group := range groups {
		result := s.generateGroup(ctx, group, kind, req.ActorID)
		switch result.Outcome {
		case "created":
			summary.Created++
		case "skipped":
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Groups = append(summary.Groups, result)
	}

	return summary, nil
}

// groupByClientWeek buckets timesheets by (client, civil week of start
// date), keeps only the requested week, and returns groups in a
// deterministic client order.
func (s *InvoiceServiceImpl) groupByClientWeek(sheets []timesheet.Timesheet, weekStart time.Time) []invoiceGroup {
	wantKey := clock.DayKey(weekStart, s.loc)

	byClient := make(map[string]*invoiceGroup)
	for _, ts := range sheets {
		tsWeek := clock.WeekStart(ts.StartDate, s.loc)
		if clock.DayKey(tsWeek, s.loc) != wantKey {
			continue
		}
		g, ok := byClient[ts.ClientID]
		if !ok {
			g = &invoiceGroup{
				clientID:  ts.ClientID,
				weekStart: weekStart,
				weekEnd:   weekStart.AddDate(0, 0, 6),
			}
			byClient[ts.ClientID] = g
		}
		g.timesheets = append(g.timesheets, ts)
	}

	keys := make([]string, 0, len(byClient))
	for k := range byClient {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]invoiceGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byClient[k])
	}
	return groups
}

func (s *InvoiceServiceImpl) generateGroup(ctx context.Context, group invoiceGroup, kind timesheet.Kind, actorID *string) invoice.GroupResult {
	result := invoice.GroupResult{
		ClientID:  group.clientID,
		WeekStart: clock.DayKey(group.weekStart, s.loc),
	}

	entryCount := 0
	for _, ts := range group.timesheets {
		for _, e := range ts.Entries {
			if !e.Invoiced {
				entryCount++
			}
		}
	}
	if entryCount == 0 {
		result.Outcome = "skipped"
		result.Reason = "nothing eligible"
		return result
	}

	ins, err := s.insuranceRepo.GetByClientID(ctx, group.clientID)
	if err != nil {
		if errors.Is(err, insurance.ErrNoInsuranceAssigned) {
			result.Outcome = "error"
			result.Reason = "client has no insurance assigned"
			return result
		}
		result.Outcome = "error"
		result.Reason = fmt.Sprintf("failed to resolve insurance: %v", err)
		return result
	}

	exists, err := s.invoiceRepo.ExistsOverlapping(ctx, group.clientID, group.weekStart, group.weekEnd)
	if err != nil {
		result.Outcome = "error"
		result.Reason = fmt.Sprintf("failed idempotency check: %v", err)
		return result
	}
	if exists {
		result.Outcome = "skipped"
		result.Reason = "already invoiced"
		return result
	}

	rate, unitMinutes, err := s.calculator.ResolveRate(ins, kind)
	if err != nil {
		result.Outcome = "error"
		result.Reason = fmt.Sprintf("rate resolution failed for insurance %s: %v", ins.ID, err)
		return result
	}

	invoiceID := uuid.NewString()
	lines, entryIDs, timesheetIDs, total := s.buildLines(invoiceID, group, ins.ID, rate, unitMinutes, kind)

	inv := invoice.Invoice{
		ID:          invoiceID,
		ClientID:    group.clientID,
		Kind:        string(kind),
		PeriodStart: group.weekStart,
		PeriodEnd:   group.weekEnd,
		Status:      invoice.StatusDraft,
		TotalAmount: total,
		PaidAmount:  decimal.Zero,
		Adjustments: decimal.Zero,
		Outstanding: total,
	}

	weekKey := clock.DayKey(group.weekStart, s.loc)
	now := time.Now().UTC()

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Serialize the check-then-create sequence per (client, week) so
		// two concurrent runs cannot both pass the idempotency check.
		if err := s.invoiceRepo.LockClientPeriod(ctx, group.clientID, weekKey); err != nil {
			return fmt.Errorf("failed to lock client period: %w", err)
		}
		exists, err := s.invoiceRepo.ExistsOverlapping(ctx, group.clientID, group.weekStart, group.weekEnd)
		if err != nil {
			return fmt.Errorf("failed idempotency re-check: %w", err)
		}
		if exists {
			return invoice.ErrInvoiceExistsForWeek
		}

		number, err := s.sequence.Next(ctx, group.weekStart.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		inv.Number = number

		if err := s.invoiceRepo.Create(ctx, inv, lines); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		if err := s.timesheetRepo.MarkEntriesInvoiced(ctx, entryIDs); err != nil {
			return fmt.Errorf("failed to mark entries invoiced: %w", err)
		}
		if err := s.timesheetRepo.SetInvoiceReference(ctx, timesheetIDs, inv.ID, now); err != nil {
			return fmt.Errorf("failed to set timesheet invoice reference: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, invoice.ErrInvoiceExistsForWeek) {
			result.Outcome = "skipped"
			result.Reason = "already invoiced"
			return result
		}
		s.logger.Error("invoice generation failed",
			slog.String("client_id", group.clientID),
			slog.String("week_start", weekKey),
			slog.String("error", err.Error()))
		result.Outcome = "error"
		result.Reason = err.Error()
		return result
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionCreate,
		EntityType: "invoice",
		EntityID:   inv.ID,
		ActorID:    actorID,
		Metadata: map[string]any{
			"number":       inv.Number,
			"client_id":    inv.ClientID,
			"total_amount": inv.TotalAmount.String(),
			"line_count":   len(lines),
		},
	})

	result.Outcome = "created"
	result.InvoiceID = &inv.ID
	result.Number = &inv.Number
	return result
}

// buildLines prices every non-invoiced entry in the group and collapses
// the results into one line per (timesheet, calendar date), the shape
// shown to end users. Units and amounts are computed per entry first, so
// ceiling rounding applies to each entry, then summed into its line.
func (s *InvoiceServiceImpl) buildLines(invoiceID string, group invoiceGroup, insuranceID string, rate decimal.Decimal, unitMinutes int, kind timesheet.Kind) ([]invoice.InvoiceEntry, []string, []string, decimal.Decimal) {
	type lineKey struct {
		timesheetID string
		dayKey      string
	}

	lineByKey := make(map[lineKey]*invoice.InvoiceEntry)
	var keys []lineKey
	var entryIDs []string
	var timesheetIDs []string
	total := decimal.Zero

	for _, ts := range group.timesheets {
		timesheetIDs = append(timesheetIDs, ts.ID)
		for _, e := range ts.Entries {
			if e.Invoiced {
				continue
			}
			entryIDs = append(entryIDs, e.ID)

			minutes := e.DurationMinutes
			if minutes <= 0 {
				minutes = clock.Duration(e.StartMinutes, e.EndMinutes)
			}
			units, amount := s.calculator.Bill(minutes, e.EntryType, rate, unitMinutes, kind)
			total = total.Add(amount)

			key := lineKey{timesheetID: ts.ID, dayKey: clock.DayKey(e.Date, s.loc)}
			line, ok := lineByKey[key]
			if !ok {
				serviceDate, _ := time.ParseInLocation("2006-01-02", key.dayKey, s.loc)
				line = &invoice.InvoiceEntry{
					ID:          uuid.NewString(),
					InvoiceID:   invoiceID,
					TimesheetID: ts.ID,
					ProviderID:  ts.ProviderID,
					InsuranceID: insuranceID,
					ServiceDate: serviceDate,
					Rate:        rate,
					Amount:      decimal.Zero,
				}
				lineByKey[key] = line
				keys = append(keys, key)
			}
			line.Minutes += minutes
			line.Units += units
			line.Amount = line.Amount.Add(amount)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dayKey != keys[j].dayKey {
			return keys[i].dayKey < keys[j].dayKey
		}
		return keys[i].timesheetID < keys[j].timesheetID
	})

	lines := make([]invoice.InvoiceEntry, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, *lineByKey[k])
	}
	return lines, entryIDs, timesheetIDs, total
}

// ========== READ / STATUS ==========

func (s *InvoiceServiceImpl) Get(ctx context.Context, id string) (invoice.InvoiceResponse, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	return invoice.ToInvoiceResponse(inv), nil
}

func (s *InvoiceServiceImpl) Approve(ctx context.Context, id string, actorID *string) (invoice.InvoiceResponse, error) {
	inv, err := s.transition(ctx, id, invoice.StatusDraft, invoice.StatusReady)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionApprove,
		EntityType: "invoice",
		EntityID:   inv.ID,
		ActorID:    actorID,
		Metadata:   map[string]any{"number": inv.Number},
	})
	return invoice.ToInvoiceResponse(inv), nil
}

func (s *InvoiceServiceImpl) MarkSent(ctx context.Context, id string, actorID *string) (invoice.InvoiceResponse, error) {
	inv, err := s.transition(ctx, id, invoice.StatusReady, invoice.StatusSent)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionSend,
		EntityType: "invoice",
		EntityID:   inv.ID,
		ActorID:    actorID,
		Metadata:   map[string]any{"number": inv.Number},
	})
	return invoice.ToInvoiceResponse(inv), nil
}

func (s *InvoiceServiceImpl) transition(ctx context.Context, id string, from, to invoice.InvoiceStatus) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.DeletedAt != nil {
			return invoice.ErrInvoiceDeleted
		}
		if inv.Status != from {
			return invoice.ErrInvalidStatusChange
		}
		if err := s.invoiceRepo.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		inv.Status = to
		return nil
	})
	return inv, err
}

func (s *InvoiceServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.DeletedAt != nil {
			return invoice.ErrInvoiceDeleted
		}
		if inv.Status != invoice.StatusDraft {
			return invoice.ErrInvoiceNotDraft
		}
		return s.invoiceRepo.SoftDelete(ctx, id)
	})
}

// ========== PAYMENTS / ADJUSTMENTS ==========

// RecordPayment appends a payment and recomputes the invoice balance in
// the same transaction, so no reader ever observes a ledger/total
// mismatch.
func (s *InvoiceServiceImpl) RecordPayment(ctx context.Context, req invoice.RecordPaymentRequest) (invoice.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		parsed, err := time.ParseInLocation("2006-01-02", *req.PaidAt, s.loc)
		if err == nil {
			paidAt = parsed
		}
	}

	var inv invoice.Invoice
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.GetByID(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.DeletedAt != nil {
			return invoice.ErrInvoiceDeleted
		}

		payment := invoice.Payment{
			ID:        uuid.NewString(),
			InvoiceID: inv.ID,
			Amount:    req.Amount,
			Method:    req.Method,
			Reference: req.Reference,
			PaidAt:    paidAt,
		}
		if err := s.invoiceRepo.InsertPayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		inv.PaidAmount = inv.PaidAmount.Add(req.Amount)
		s.recomputeBalance(&inv)
		return s.invoiceRepo.UpdateTotals(ctx, inv.ID, inv.PaidAmount, inv.Adjustments, inv.Outstanding, inv.Status)
	})
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionPayment,
		EntityType: "invoice",
		EntityID:   inv.ID,
		ActorID:    req.ActorID,
		Metadata: map[string]any{
			"amount":      req.Amount.String(),
			"outstanding": inv.Outstanding.String(),
		},
	})

	return invoice.ToInvoiceResponse(inv), nil
}

func (s *InvoiceServiceImpl) RecordAdjustment(ctx context.Context, req invoice.RecordAdjustmentRequest) (invoice.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	var inv invoice.Invoice
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.GetByID(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.DeletedAt != nil {
			return invoice.ErrInvoiceDeleted
		}

		adjustment := invoice.InvoiceAdjustment{
			ID:        uuid.NewString(),
			InvoiceID: inv.ID,
			Amount:    req.Amount,
			Reason:    req.Reason,
		}
		if err := s.invoiceRepo.InsertAdjustment(ctx, adjustment); err != nil {
			return fmt.Errorf("failed to insert adjustment: %w", err)
		}

		inv.Adjustments = inv.Adjustments.Add(req.Amount)
		s.recomputeBalance(&inv)
		return s.invoiceRepo.UpdateTotals(ctx, inv.ID, inv.PaidAmount, inv.Adjustments, inv.Outstanding, inv.Status)
	})
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionAdjustment,
		EntityType: "invoice",
		EntityID:   inv.ID,
		ActorID:    req.ActorID,
		Metadata: map[string]any{
			"amount":      req.Amount.String(),
			"outstanding": inv.Outstanding.String(),
		},
	})

	return invoice.ToInvoiceResponse(inv), nil
}

// recomputeBalance maintains outstanding = total + adjustments - paid and
// derives the payment statuses from it. PAID requires an actual payment: an
// invoice zeroed out purely by adjustments keeps its current status.
func (s *InvoiceServiceImpl) recomputeBalance(inv *invoice.Invoice) {
	inv.Outstanding = inv.TotalAmount.Add(inv.Adjustments).Sub(inv.PaidAmount)
	switch {
	case !inv.Outstanding.IsPositive() && inv.PaidAmount.IsPositive():
		inv.Status = invoice.StatusPaid
	case inv.PaidAmount.IsPositive():
		inv.Status = invoice.StatusPartiallyPaid
	}
}

func (s *InvoiceServiceImpl) recordAudit(ctx context.Context, event audit.Event) {
	event.OccurredAt = time.Now().UTC()
	if err := s.auditRec.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed",
			slog.String("entity_type", event.EntityType),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()))
	}
}
