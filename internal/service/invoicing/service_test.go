package invoicing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/service/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTimesheetRepo struct {
	timesheet.TimesheetRepository

	sheets []timesheet.Timesheet
}

func (f *fakeTimesheetRepo) GetEligibleTimesheets(ctx context.Context, filter timesheet.EligibilityFilter) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, ts := range f.sheets {
		if ts.Kind != filter.Kind || ts.DeletedAt != nil {
			continue
		}
		if ts.Status != timesheet.StatusApproved && ts.Status != timesheet.StatusSent {
			continue
		}
		if filter.ClientID != nil && ts.ClientID != *filter.ClientID {
			continue
		}
		if ts.StartDate.Before(filter.PeriodStart) || ts.StartDate.After(filter.PeriodEnd) {
			continue
		}
		eligible := ts
		eligible.Entries = nil
		for _, e := range ts.Entries {
			if !e.Invoiced {
				eligible.Entries = append(eligible.Entries, e)
			}
		}
		if len(eligible.Entries) == 0 {
			continue
		}
		out = append(out, eligible)
	}
	return out, nil
}

func (f *fakeTimesheetRepo) MarkEntriesInvoiced(ctx context.Context, entryIDs []string) error {
	for _, id := range entryIDs {
		for si := range f.sheets {
			for ei := range f.sheets[si].Entries {
				if f.sheets[si].Entries[ei].ID != id {
					continue
				}
				if f.sheets[si].Entries[ei].Invoiced {
					return timesheet.ErrEntryAlreadyInvoiced
				}
				f.sheets[si].Entries[ei].Invoiced = true
			}
		}
	}
	return nil
}

func (f *fakeTimesheetRepo) SetInvoiceReference(ctx context.Context, timesheetIDs []string, invoiceID string, invoicedAt time.Time) error {
	for _, id := range timesheetIDs {
		for si := range f.sheets {
			if f.sheets[si].ID == id && f.sheets[si].InvoiceID == nil {
				inv, at := invoiceID, invoicedAt
				f.sheets[si].InvoiceID = &inv
				f.sheets[si].InvoicedAt = &at
			}
		}
	}
	return nil
}

type fakeInsuranceRepo struct {
	insurance.InsuranceRepository

	byClient map[string]insurance.Insurance
}

func (f *fakeInsuranceRepo) GetByClientID(ctx context.Context, clientID string) (insurance.Insurance, error) {
	ins, ok := f.byClient[clientID]
	if !ok {
		return insurance.Insurance{}, insurance.ErrNoInsuranceAssigned
	}
	return ins, nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*invoice.Invoice
	entries  map[string][]invoice.InvoiceEntry

	// createFails lists client ids whose Create call fails, to force a
	// mid-transaction error for one group.
	createFails map[string]bool
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: map[string]*invoice.Invoice{},
		entries:  map[string][]invoice.InvoiceEntry{},
	}
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrInvoiceNotFound
	}
	return *inv, nil
}

func (f *fakeInvoiceRepo) ExistsOverlapping(ctx context.Context, clientID string, start, end time.Time) (bool, error) {
	for _, inv := range f.invoices {
		if inv.ClientID != clientID || inv.DeletedAt != nil {
			continue
		}
		if !inv.PeriodStart.After(end) && !start.After(inv.PeriodEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvoiceRepo) LockClientPeriod(ctx context.Context, clientID, weekKey string) error {
	return nil
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, inv invoice.Invoice, entries []invoice.InvoiceEntry) error {
	if f.createFails[inv.ClientID] {
		return errors.New("forced transaction failure")
	}
	stored := inv
	f.invoices[inv.ID] = &stored
	f.entries[inv.ID] = entries
	return nil
}

func (f *fakeInvoiceRepo) GetEntries(ctx context.Context, invoiceID string) ([]invoice.InvoiceEntry, error) {
	return f.entries[invoiceID], nil
}

func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id string, status invoice.InvoiceStatus) error {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.ErrInvoiceNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeInvoiceRepo) SoftDelete(ctx context.Context, id string) error {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.ErrInvoiceNotFound
	}
	now := time.Now().UTC()
	inv.DeletedAt = &now
	return nil
}

func (f *fakeInvoiceRepo) InsertPayment(ctx context.Context, p invoice.Payment) error {
	return nil
}

func (f *fakeInvoiceRepo) InsertAdjustment(ctx context.Context, a invoice.InvoiceAdjustment) error {
	return nil
}

func (f *fakeInvoiceRepo) UpdateTotals(ctx context.Context, id string, paid, adjustments, outstanding decimal.Decimal, status invoice.InvoiceStatus) error {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.ErrInvoiceNotFound
	}
	inv.PaidAmount = paid
	inv.Adjustments = adjustments
	inv.Outstanding = outstanding
	inv.Status = status
	return nil
}

type fakeSequence struct {
	n int
}

func (f *fakeSequence) Next(ctx context.Context, year int) (string, error) {
	f.n++
	return fmt.Sprintf("INV-%d-%04d", year, f.n), nil
}

type fakeAuditRecorder struct {
	events []audit.Event
}

func (f *fakeAuditRecorder) Record(ctx context.Context, event audit.Event) error {
	f.events = append(f.events, event)
	return nil
}

// ========== HELPERS ==========

func nyLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func standardInsurance() insurance.Insurance {
	return insurance.Insurance{
		ID:                 "ins-1",
		Name:               "Acme Health",
		RegularRate:        decPtr("18.50"),
		RegularUnitMinutes: intPtr(15),
		BCBARate:           decPtr("25.00"),
		BCBAUnitMinutes:    intPtr(15),
	}
}

// week of Monday 2026-01-12 in New York
func testWeekDay(t *testing.T, day int, loc *time.Location) time.Time {
	return time.Date(2026, 1, day, 12, 0, 0, 0, loc).UTC()
}

func approvedTimesheet(id, providerID, clientID string, kind timesheet.Kind, startDate time.Time, entries []timesheet.TimesheetEntry) timesheet.Timesheet {
	for i := range entries {
		entries[i].TimesheetID = id
	}
	return timesheet.Timesheet{
		ID:         id,
		ProviderID: providerID,
		ClientID:   clientID,
		Kind:       kind,
		Category:   timesheet.CategoryPrimary,
		Status:     timesheet.StatusApproved,
		StartDate:  startDate,
		Entries:    entries,
	}
}

type testEnv struct {
	svc           invoice.InvoiceService
	timesheetRepo *fakeTimesheetRepo
	invoiceRepo   *fakeInvoiceRepo
	auditRec      *fakeAuditRecorder
}

func newTestEnv(t *testing.T, sheets []timesheet.Timesheet, insurances map[string]insurance.Insurance) testEnv {
	loc := nyLoc(t)
	timesheetRepo := &fakeTimesheetRepo{sheets: sheets}
	invoiceRepo := newFakeInvoiceRepo()
	auditRec := &fakeAuditRecorder{}

	svc := NewInvoiceService(
		&fakeTxRunner{},
		timesheetRepo,
		&fakeInsuranceRepo{byClient: insurances},
		invoiceRepo,
		&fakeSequence{},
		billing.NewCalculator(15),
		auditRec,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		loc,
	)

	return testEnv{svc: svc, timesheetRepo: timesheetRepo, invoiceRepo: invoiceRepo, auditRec: auditRec}
}

// ========== GENERATION ==========

func TestGenerate_CreatesDraftInvoice(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
				{ID: "e-2", Date: testWeekDay(t, 14, loc), StartMinutes: 540, EndMinutes: 556, DurationMinutes: 16, EntryType: timesheet.EntryTypeSession},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Groups, 1)
	require.Equal(t, "created", summary.Groups[0].Outcome)
	require.NotNil(t, summary.Groups[0].InvoiceID)
	assert.Equal(t, "INV-2026-0001", *summary.Groups[0].Number)

	inv, err := env.invoiceRepo.GetByID(context.Background(), *summary.Groups[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusDraft, inv.Status)
	// 60 min -> 4 units, 16 min -> 2 units; 6 units at 18.50 = 111.00
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("111.00")), "got %s", inv.TotalAmount)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.True(t, inv.Outstanding.Equal(inv.TotalAmount))

	// Entries are flagged and the timesheet back-reference is set.
	for _, e := range env.timesheetRepo.sheets[0].Entries {
		assert.True(t, e.Invoiced, "entry %s must be flagged", e.ID)
	}
	require.NotNil(t, env.timesheetRepo.sheets[0].InvoiceID)
	assert.Equal(t, inv.ID, *env.timesheetRepo.sheets[0].InvoiceID)

	// One line per calendar date.
	lines, err := env.invoiceRepo.GetEntries(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(4), lines[0].Units)
	assert.Equal(t, int64(2), lines[1].Units)

	require.Len(t, env.auditRec.events, 1)
	assert.Equal(t, audit.ActionCreate, env.auditRec.events[0].Action)
	assert.Equal(t, "invoice", env.auditRec.events[0].EntityType)
}

func TestGenerate_CollapsesSameDateIntoOneLine(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 556, DurationMinutes: 16, EntryType: timesheet.EntryTypeSession},
				{ID: "e-2", Date: testWeekDay(t, 13, loc), StartMinutes: 600, EndMinutes: 616, DurationMinutes: 16, EntryType: timesheet.EntryTypeSession},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	lines, err := env.invoiceRepo.GetEntries(context.Background(), *summary.Groups[0].InvoiceID)
	require.NoError(t, err)
	require.Len(t, lines, 1, "same-date entries collapse into one line")

	// Ceiling rounding applies per entry: 2 units each, 4 total, never
	// ceil(32/15)=3.
	assert.Equal(t, int64(4), lines[0].Units)
	assert.Equal(t, 32, lines[0].Minutes)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("74.00")), "got %s", lines[0].Amount)
}

func TestGenerate_SupervisionBillsZeroOnRegular(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSupervision},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	inv, err := env.invoiceRepo.GetByID(context.Background(), *summary.Groups[0].InvoiceID)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.IsZero(), "supervision on regular bills zero, got %s", inv.TotalAmount)

	lines, err := env.invoiceRepo.GetEntries(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(4), lines[0].Units, "units are still recorded")
}

func TestGenerate_Rerun_SkipsAlreadyInvoiced(t *testing.T) {
	loc := nyLoc(t)
	late := approvedTimesheet("ts-2", "prov-2", "cli-1", timesheet.KindRegular, testWeekDay(t, 14, loc), []timesheet.TimesheetEntry{
		{ID: "e-9", Date: testWeekDay(t, 14, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
	})
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	req := invoice.GenerateRequest{PeriodStart: "2026-01-12", Kind: "regular"}

	first, err := env.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	// A second timesheet for the same week gets approved after the first
	// run. The re-run still may not create a second invoice for the week.
	env.timesheetRepo.sheets = append(env.timesheetRepo.sheets, late)

	second, err := env.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created, "re-run must create nothing")
	assert.Equal(t, 1, second.Skipped)
	require.Len(t, second.Groups, 1)
	assert.Equal(t, "skipped", second.Groups[0].Outcome)
	assert.Equal(t, "already invoiced", second.Groups[0].Reason)
	assert.Len(t, env.invoiceRepo.invoices, 1)
}

func TestGenerate_SkipsFullyInvoicedGroup(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession, Invoiced: true},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Empty(t, summary.Groups, "fully invoiced timesheets are not eligible at all")
}

func TestGenerate_MissingInsuranceIsNonFatal(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-no-ins", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
			}),
			approvedTimesheet("ts-2", "prov-1", "cli-ok", timesheet.KindRegular, testWeekDay(t, 13, loc), []timesheet.TimesheetEntry{
				{ID: "e-2", Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
			}),
		},
		map[string]insurance.Insurance{"cli-ok": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Failed)

	outcomes := map[string]string{}
	for _, g := range summary.Groups {
		outcomes[g.ClientID] = g.Outcome
	}
	assert.Equal(t, "error", outcomes["cli-no-ins"])
	assert.Equal(t, "created", outcomes["cli-ok"])
}

func TestGenerate_PartialBatchFailure(t *testing.T) {
	loc := nyLoc(t)
	entry := func(id string) []timesheet.TimesheetEntry {
		return []timesheet.TimesheetEntry{
			{ID: id, Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
		}
	}
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), entry("e-1")),
			approvedTimesheet("ts-2", "prov-1", "cli-2", timesheet.KindRegular, testWeekDay(t, 13, loc), entry("e-2")),
			approvedTimesheet("ts-3", "prov-1", "cli-3", timesheet.KindRegular, testWeekDay(t, 13, loc), entry("e-3")),
		},
		map[string]insurance.Insurance{
			"cli-1": standardInsurance(),
			"cli-2": standardInsurance(),
			"cli-3": standardInsurance(),
		},
	)
	env.invoiceRepo.createFails = map[string]bool{"cli-2": true}

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Groups, 3)

	// Groups process in client order: cli-1, cli-2, cli-3.
	assert.Equal(t, "created", summary.Groups[0].Outcome)
	assert.Equal(t, "error", summary.Groups[1].Outcome)
	assert.Contains(t, summary.Groups[1].Reason, "forced transaction failure")
	assert.Equal(t, "created", summary.Groups[2].Outcome)

	assert.Len(t, env.invoiceRepo.invoices, 2, "invoice rows exist for groups 1 and 3 only")
}

func TestGenerate_ScopedToOneClient(t *testing.T) {
	loc := nyLoc(t)
	entry := func(id string) []timesheet.TimesheetEntry {
		return []timesheet.TimesheetEntry{
			{ID: id, Date: testWeekDay(t, 13, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
		}
	}
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			approvedTimesheet("ts-1", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 13, loc), entry("e-1")),
			approvedTimesheet("ts-2", "prov-1", "cli-2", timesheet.KindRegular, testWeekDay(t, 13, loc), entry("e-2")),
		},
		map[string]insurance.Insurance{
			"cli-1": standardInsurance(),
			"cli-2": standardInsurance(),
		},
	)

	clientID := "cli-2"
	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
		ClientID:    &clientID,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)
	assert.Equal(t, "cli-2", summary.Groups[0].ClientID)
}

func TestGenerate_ExcludesOtherWeeks(t *testing.T) {
	loc := nyLoc(t)
	env := newTestEnv(t,
		[]timesheet.Timesheet{
			// Sunday of the previous week; inside the margin window but
			// outside the requested week after normalization.
			approvedTimesheet("ts-prev", "prov-1", "cli-1", timesheet.KindRegular, testWeekDay(t, 11, loc), []timesheet.TimesheetEntry{
				{ID: "e-1", Date: testWeekDay(t, 11, loc), StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, EntryType: timesheet.EntryTypeSession},
			}),
		},
		map[string]insurance.Insurance{"cli-1": standardInsurance()},
	)

	summary, err := env.svc.Generate(context.Background(), invoice.GenerateRequest{
		PeriodStart: "2026-01-12",
		Kind:        "regular",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Empty(t, summary.Groups)
}

// ========== PAYMENTS / ADJUSTMENTS ==========

func seedInvoice(t *testing.T, env testEnv, total string) invoice.Invoice {
	t.Helper()
	amount := decimal.RequireFromString(total)
	inv := invoice.Invoice{
		ID:          "inv-1",
		Number:      "INV-2026-0001",
		ClientID:    "cli-1",
		Kind:        "regular",
		PeriodStart: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
		Status:      invoice.StatusSent,
		TotalAmount: amount,
		PaidAmount:  decimal.Zero,
		Adjustments: decimal.Zero,
		Outstanding: amount,
	}
	stored := inv
	env.invoiceRepo.invoices[inv.ID] = &stored
	return inv
}

func TestRecordPayment_MaintainsOutstandingInvariant(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedInvoice(t, env, "100.00")

	resp, err := env.svc.RecordPayment(context.Background(), invoice.RecordPaymentRequest{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, resp.Outstanding.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, string(invoice.StatusPartiallyPaid), resp.Status)

	resp, err = env.svc.RecordPayment(context.Background(), invoice.RecordPaymentRequest{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString("60.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Outstanding.IsZero())
	assert.Equal(t, string(invoice.StatusPaid), resp.Status)

	require.Len(t, env.auditRec.events, 2)
	assert.Equal(t, audit.ActionPayment, env.auditRec.events[0].Action)
}

func TestRecordPayment_RejectsNonPositive(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedInvoice(t, env, "100.00")

	_, err := env.svc.RecordPayment(context.Background(), invoice.RecordPaymentRequest{
		InvoiceID: "inv-1",
		Amount:    decimal.Zero,
	})
	assert.Error(t, err)
}

func TestRecordAdjustment_RecomputesOutstanding(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedInvoice(t, env, "100.00")

	resp, err := env.svc.RecordAdjustment(context.Background(), invoice.RecordAdjustmentRequest{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString("-25.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Adjustments.Equal(decimal.RequireFromString("-25.00")))
	// outstanding = total + adjustments - paid = 100 - 25 - 0
	assert.True(t, resp.Outstanding.Equal(decimal.RequireFromString("75.00")), "got %s", resp.Outstanding)
}

func TestRecordAdjustment_WriteOffDoesNotMarkPaid(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedInvoice(t, env, "100.00")

	// A full write-off zeroes the balance, but PAID is reserved for
	// invoices with an actual payment against them.
	resp, err := env.svc.RecordAdjustment(context.Background(), invoice.RecordAdjustmentRequest{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString("-100.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Outstanding.IsZero(), "got %s", resp.Outstanding)
	assert.Equal(t, string(invoice.StatusSent), resp.Status)
}

// ========== STATUS TRANSITIONS ==========

func TestApproveAndSendTransitions(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	inv := seedInvoice(t, env, "100.00")
	env.invoiceRepo.invoices[inv.ID].Status = invoice.StatusDraft

	resp, err := env.svc.Approve(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, string(invoice.StatusReady), resp.Status)

	resp, err = env.svc.MarkSent(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, string(invoice.StatusSent), resp.Status)

	// SENT invoices cannot be approved again.
	_, err = env.svc.Approve(context.Background(), inv.ID, nil)
	assert.ErrorIs(t, err, invoice.ErrInvalidStatusChange)
}

func TestDelete_DraftOnly(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	inv := seedInvoice(t, env, "100.00")

	err := env.svc.Delete(context.Background(), inv.ID)
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotDraft)

	env.invoiceRepo.invoices[inv.ID].Status = invoice.StatusDraft
	require.NoError(t, env.svc.Delete(context.Background(), inv.ID))
	assert.NotNil(t, env.invoiceRepo.invoices[inv.ID].DeletedAt)
}
