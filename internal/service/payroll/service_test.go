package payroll

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func overtimeEmployee(rate, otRate string, boundary int) payroll.Employee {
	return payroll.Employee{
		ID:                   "emp-1",
		Name:                 "Dana",
		HourlyRate:           decimal.RequireFromString(rate),
		OvertimeEnabled:      true,
		OvertimeRateHourly:   decPtr(otRate),
		OvertimeStartMinutes: intPtr(boundary),
	}
}

// ========== SPLIT ==========

func TestSplitShift_OvertimeDisabled(t *testing.T) {
	emp := payroll.Employee{HourlyRate: decimal.RequireFromString("20")}

	split := SplitShift(emp, 540, 1020) // 9:00-17:00
	assert.Equal(t, 480, split.RegularMinutes)
	assert.Equal(t, 0, split.OvertimeMinutes)
}

func TestSplitShift_SameDay(t *testing.T) {
	emp := overtimeEmployee("20", "30", 1020) // boundary 17:00

	tests := []struct {
		name     string
		in, out  int
		regular  int
		overtime int
	}{
		{"entirely before boundary", 540, 960, 420, 0},
		{"entirely after boundary", 1020, 1200, 0, 180},
		{"straddles boundary", 960, 1140, 60, 120},
		{"ends exactly at boundary", 540, 1020, 480, 0},
		{"starts exactly at boundary", 1020, 1080, 0, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitShift(emp, tt.in, tt.out)
			assert.Equal(t, tt.regular, split.RegularMinutes, "regular")
			assert.Equal(t, tt.overtime, split.OvertimeMinutes, "overtime")
		})
	}
}

func TestSplitShift_ZeroLengthPunch(t *testing.T) {
	// A duplicate clock event produces in == out. That is an empty shift,
	// not a wrap to the next day.
	emp := overtimeEmployee("20", "30", 1020)

	split := SplitShift(emp, 540, 540)
	assert.Equal(t, 0, split.RegularMinutes)
	assert.Equal(t, 0, split.OvertimeMinutes)
}

func TestSplitShift_OvernightShift(t *testing.T) {
	// 22:00-02:00 with a 23:00 boundary: 22:00-23:00 is regular, everything
	// from 23:00 through 02:00 the next day is overtime.
	emp := overtimeEmployee("20", "30", 1380)

	split := SplitShift(emp, 1320, 120)
	assert.Equal(t, 60, split.RegularMinutes)
	assert.Equal(t, 180, split.OvertimeMinutes)
}

func TestSplitShift_OvernightWithoutOvertime(t *testing.T) {
	emp := payroll.Employee{HourlyRate: decimal.RequireFromString("20")}

	split := SplitShift(emp, 1320, 120)
	assert.Equal(t, 240, split.RegularMinutes)
	assert.Equal(t, 0, split.OvertimeMinutes)
}

// ========== FAKES ==========

type txMarker struct{}

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(context.WithValue(ctx, txMarker{}, true))
}

type fakeImportRepo struct {
	rows []payroll.ImportRow
}

func (f *fakeImportRepo) GetByIDs(ctx context.Context, ids []string) ([]payroll.ImportRow, error) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var out []payroll.ImportRow
	for _, r := range f.rows {
		if idSet[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees []payroll.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (payroll.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return payroll.Employee{}, payroll.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]payroll.Employee, error) {
	var out []payroll.Employee
	for _, e := range f.employees {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

type fakeRunRepo struct {
	created     *payroll.Run
	createdInTx bool
	lines       map[string]payroll.RunLine
}

func (f *fakeRunRepo) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	f.createdInTx = ctx.Value(txMarker{}) != nil
	now := time.Now().UTC()
	run.CreatedAt = now
	f.created = &run
	if f.lines == nil {
		f.lines = map[string]payroll.RunLine{}
	}
	for _, l := range run.Lines {
		f.lines[l.ID] = l
	}
	return run, nil
}

func (f *fakeRunRepo) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	if f.created != nil && f.created.ID == id {
		return *f.created, nil
	}
	return payroll.Run{}, payroll.ErrRunNotFound
}

func (f *fakeRunRepo) GetLineByID(ctx context.Context, lineID string) (payroll.RunLine, error) {
	l, ok := f.lines[lineID]
	if !ok {
		return payroll.RunLine{}, payroll.ErrRunLineNotFound
	}
	return l, nil
}

func (f *fakeRunRepo) ApplyLinePayment(ctx context.Context, lineID string, amount decimal.Decimal) (payroll.RunLine, error) {
	l, ok := f.lines[lineID]
	if !ok {
		return payroll.RunLine{}, payroll.ErrRunLineNotFound
	}
	l.AmountPaid = l.AmountPaid.Add(amount)
	l.AmountOwed = l.AmountOwed.Sub(amount)
	if l.AmountOwed.IsNegative() {
		l.AmountOwed = decimal.Zero
	}
	f.lines[lineID] = l
	return l, nil
}

type fakeAuditRecorder struct {
	events []audit.Event
	err    error
}

func (f *fakeAuditRecorder) Record(ctx context.Context, event audit.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func workDate() time.Time {
	return time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
}

// ========== BUILD RUN ==========

func TestBuildRun_AggregatesPerEmployee(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-1", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 540, OutMinutes: 1020},  // 8h regular
		{ID: "row-2", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 1320, OutMinutes: 120},  // 1h reg + 3h OT
		{ID: "row-3", EmployeeID: strPtr("emp-2"), WorkDate: workDate(), PresummedMinutes: intPtr(90)},      // pre-summed
	}}
	employeeRepo := &fakeEmployeeRepo{employees: []payroll.Employee{
		overtimeEmployee("20", "30", 1380),
		{ID: "emp-2", Name: "Alex", HourlyRate: decimal.RequireFromString("18")},
	}}
	runRepo := &fakeRunRepo{}
	auditRec := &fakeAuditRecorder{}

	svc := NewRunService(&fakeTxRunner{}, runRepo, importRepo, employeeRepo, auditRec, testLogger())

	resp, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1", "row-2", "row-3"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)
	assert.Empty(t, resp.UnlinkedRowIDs)

	// Lines are sorted by employee name: Alex, then Dana.
	alex := resp.Lines[0]
	assert.Equal(t, "emp-2", alex.EmployeeID)
	assert.Equal(t, 90, alex.RegularMinutes)
	assert.Equal(t, 0, alex.OvertimeMinutes)
	assert.True(t, alex.GrossPay.Equal(decimal.RequireFromString("27")), "got %s", alex.GrossPay)

	dana := resp.Lines[1]
	assert.Equal(t, "emp-1", dana.EmployeeID)
	assert.Equal(t, 540, dana.RegularMinutes)
	assert.Equal(t, 180, dana.OvertimeMinutes)
	assert.True(t, dana.RegularPay.Equal(decimal.RequireFromString("180")), "got %s", dana.RegularPay)
	assert.True(t, dana.OvertimePay.Equal(decimal.RequireFromString("90")), "got %s", dana.OvertimePay)
	assert.True(t, dana.GrossPay.Equal(decimal.RequireFromString("270")), "got %s", dana.GrossPay)
	assert.True(t, dana.AmountOwed.Equal(dana.GrossPay))
	assert.True(t, dana.AmountPaid.IsZero())

	require.Len(t, auditRec.events, 1)
	assert.Equal(t, audit.ActionCreate, auditRec.events[0].Action)
	assert.Equal(t, "payroll_run", auditRec.events[0].EntityType)
}

func TestBuildRun_InsertsRunInsideTransaction(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-1", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 540, OutMinutes: 1020},
	}}
	employeeRepo := &fakeEmployeeRepo{employees: []payroll.Employee{
		{ID: "emp-1", Name: "Dana", HourlyRate: decimal.RequireFromString("20")},
	}}
	runRepo := &fakeRunRepo{}
	txRunner := &fakeTxRunner{}
	svc := NewRunService(txRunner, runRepo, importRepo, employeeRepo, &fakeAuditRecorder{}, testLogger())

	_, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, txRunner.calls)
	assert.True(t, runRepo.createdInTx, "run and lines must be written under one transaction")
}

func TestBuildRun_RejectsMalformedPeriod(t *testing.T) {
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, &fakeImportRepo{}, &fakeEmployeeRepo{}, &fakeAuditRecorder{}, testLogger())

	_, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "01/12/2026",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period_start")
}

func TestBuildRun_ReportsUnlinkedRows(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-1", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 540, OutMinutes: 600},
		{ID: "row-orphan", WorkDate: workDate(), InMinutes: 540, OutMinutes: 600},
	}}
	employeeRepo := &fakeEmployeeRepo{employees: []payroll.Employee{
		{ID: "emp-1", Name: "Dana", HourlyRate: decimal.RequireFromString("20")},
	}}
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, importRepo, employeeRepo, &fakeAuditRecorder{}, testLogger())

	resp, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1", "row-orphan"},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Lines, 1)
	assert.Equal(t, []string{"row-orphan"}, resp.UnlinkedRowIDs)
}

func TestBuildRun_FailsWhenNothingLinks(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-orphan", WorkDate: workDate(), InMinutes: 540, OutMinutes: 600},
	}}
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, importRepo, &fakeEmployeeRepo{}, &fakeAuditRecorder{}, testLogger())

	_, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-orphan"},
	})
	assert.ErrorIs(t, err, payroll.ErrNoLinkedTimeData)
}

func TestBuildRun_RateOverride(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-1", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 1380, OutMinutes: 1440}, // 1h OT
	}}
	employeeRepo := &fakeEmployeeRepo{employees: []payroll.Employee{
		overtimeEmployee("20", "30", 1380),
	}}
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, importRepo, employeeRepo, &fakeAuditRecorder{}, testLogger())

	resp, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1"},
		RateOverrides: map[string]decimal.Decimal{
			"emp-1": decimal.RequireFromString("45"),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].OvertimePay.Equal(decimal.RequireFromString("45")), "got %s", resp.Lines[0].OvertimePay)
}

func TestBuildRun_AuditFailureDoesNotFailRun(t *testing.T) {
	importRepo := &fakeImportRepo{rows: []payroll.ImportRow{
		{ID: "row-1", EmployeeID: strPtr("emp-1"), WorkDate: workDate(), InMinutes: 540, OutMinutes: 600},
	}}
	employeeRepo := &fakeEmployeeRepo{employees: []payroll.Employee{
		{ID: "emp-1", Name: "Dana", HourlyRate: decimal.RequireFromString("20")},
	}}
	auditRec := &fakeAuditRecorder{err: errors.New("audit sink down")}
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, importRepo, employeeRepo, auditRec, testLogger())

	_, err := svc.BuildRun(context.Background(), payroll.BuildRunRequest{
		PeriodStart:  "2026-01-12",
		PeriodEnd:    "2026-01-18",
		ImportRowIDs: []string{"row-1"},
	})
	assert.NoError(t, err)
}

// ========== LINE PAYMENTS ==========

func TestRecordLinePayment_FloorsOwedAtZero(t *testing.T) {
	runRepo := &fakeRunRepo{lines: map[string]payroll.RunLine{
		"line-1": {
			ID:         "line-1",
			GrossPay:   decimal.RequireFromString("100"),
			AmountPaid: decimal.Zero,
			AmountOwed: decimal.RequireFromString("100"),
		},
	}}
	svc := NewRunService(&fakeTxRunner{}, runRepo, &fakeImportRepo{}, &fakeEmployeeRepo{}, &fakeAuditRecorder{}, testLogger())

	line, err := svc.RecordLinePayment(context.Background(), payroll.LinePaymentRequest{
		LineID: "line-1",
		Amount: decimal.RequireFromString("60"),
	})
	require.NoError(t, err)
	assert.True(t, line.AmountPaid.Equal(decimal.RequireFromString("60")))
	assert.True(t, line.AmountOwed.Equal(decimal.RequireFromString("40")))

	line, err = svc.RecordLinePayment(context.Background(), payroll.LinePaymentRequest{
		LineID: "line-1",
		Amount: decimal.RequireFromString("60"),
	})
	require.NoError(t, err)
	assert.True(t, line.AmountPaid.Equal(decimal.RequireFromString("120")))
	assert.True(t, line.AmountOwed.IsZero(), "owed floors at zero, got %s", line.AmountOwed)
}

func TestRecordLinePayment_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewRunService(&fakeTxRunner{}, &fakeRunRepo{}, &fakeImportRepo{}, &fakeEmployeeRepo{}, &fakeAuditRecorder{}, testLogger())

	_, err := svc.RecordLinePayment(context.Background(), payroll.LinePaymentRequest{
		LineID: "line-1",
		Amount: decimal.Zero,
	})
	assert.Error(t, err)
}
