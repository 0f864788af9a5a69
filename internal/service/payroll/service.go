package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/payroll"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

type RunServiceImpl struct {
	tx           database.TxRunner
	runRepo      payroll.RunRepository
	importRepo   payroll.ImportRowRepository
	employeeRepo payroll.EmployeeRepository
	auditRec     audit.Recorder
	logger       *slog.Logger
}

func NewRunService(
	tx database.TxRunner,
	runRepo payroll.RunRepository,
	importRepo payroll.ImportRowRepository,
	employeeRepo payroll.EmployeeRepository,
	auditRec audit.Recorder,
	logger *slog.Logger,
) payroll.RunService {
	return &RunServiceImpl{
		tx:           tx,
		runRepo:      runRepo,
		importRepo:   importRepo,
		employeeRepo: employeeRepo,
		auditRec:     auditRec,
		logger:       logger,
	}
}

// SplitShift divides a worked interval into regular and overtime minutes
// against the employee's overtime boundary. The boundary is anchored to the
// shift's work date; on an overnight shift every minute past midnight is
// already past that boundary, so the second segment is wholly overtime
// whenever the boundary falls on day one.
func SplitShift(emp payroll.Employee, in, out int) payroll.Split {
	if in == clock.NoTime || out == clock.NoTime {
		return payroll.Split{}
	}
	// A punch pair with identical times is a zero-length shift, not an
	// overnight one. Duplicate clock events produce these.
	if out == in {
		return payroll.Split{}
	}

	// Overnight: out-time belongs to the next civil day.
	if out < in {
		out += clock.MinutesPerDay
	}
	total := out - in

	if !emp.OvertimeEnabled || emp.OvertimeStartMinutes == nil {
		return payroll.Split{RegularMinutes: total}
	}

	boundary := *emp.OvertimeStartMinutes

	regular := 0
	if in < boundary {
		regular = min(out, boundary) - in
	}

	overtime := 0
	if out > boundary {
		overtime = out - max(in, boundary)
	}

	return payroll.Split{RegularMinutes: regular, OvertimeMinutes: overtime}
}

// splitRow handles the two row shapes: clock pairs are split at the
// boundary; pre-summed totals cannot be placed against one and count as
// regular time.
func splitRow(emp payroll.Employee, row payroll.ImportRow) payroll.Split {
	if row.PresummedMinutes != nil {
		return payroll.Split{RegularMinutes: *row.PresummedMinutes}
	}
	return SplitShift(emp, row.InMinutes, row.OutMinutes)
}

func (s *RunServiceImpl) BuildRun(ctx context.Context, req payroll.BuildRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	rows, err := s.importRepo.GetByIDs(ctx, req.ImportRowIDs)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to load import rows: %w", err)
	}
	if len(rows) == 0 {
		return payroll.RunResponse{}, payroll.ErrNoImportRows
	}

	var unlinked []string
	rowsByEmployee := make(map[string][]payroll.ImportRow)
	for _, row := range rows {
		if row.EmployeeID == nil {
			unlinked = append(unlinked, row.ID)
			continue
		}
		rowsByEmployee[*row.EmployeeID] = append(rowsByEmployee[*row.EmployeeID], row)
	}
	if len(rowsByEmployee) == 0 {
		return payroll.RunResponse{}, payroll.ErrNoLinkedTimeData
	}

	employeeIDs := make([]string, 0, len(rowsByEmployee))
	for id := range rowsByEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	employees, err := s.employeeRepo.GetByIDs(ctx, employeeIDs)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}
	employeeByID := make(map[string]payroll.Employee, len(employees))
	for _, emp := range employees {
		employeeByID[emp.ID] = emp
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to parse period start: %w", err)
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to parse period end: %w", err)
	}

	run := payroll.Run{
		ID:          uuid.NewString(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Notes:       req.Notes,
	}

	for employeeID, empRows := range rowsByEmployee {
		emp, ok := employeeByID[employeeID]
		if !ok {
			return payroll.RunResponse{}, fmt.Errorf("import row references employee %s: %w", employeeID, payroll.ErrEmployeeNotFound)
		}

		var regularMinutes, overtimeMinutes int
		for _, row := range empRows {
			split := splitRow(emp, row)
			regularMinutes += split.RegularMinutes
			overtimeMinutes += split.OvertimeMinutes
		}

		overtimeRate := emp.HourlyRate
		if emp.OvertimeRateHourly != nil {
			overtimeRate = *emp.OvertimeRateHourly
		}
		if override, ok := req.RateOverrides[employeeID]; ok {
			overtimeRate = override
		}

		regularPay := emp.HourlyRate.Mul(decimal.NewFromInt(int64(regularMinutes))).Div(sixty)
		overtimePay := overtimeRate.Mul(decimal.NewFromInt(int64(overtimeMinutes))).Div(sixty)
		grossPay := regularPay.Add(overtimePay)

		run.Lines = append(run.Lines, payroll.RunLine{
			ID:              uuid.NewString(),
			RunID:           run.ID,
			EmployeeID:      emp.ID,
			EmployeeName:    emp.Name,
			TotalMinutes:    regularMinutes + overtimeMinutes,
			RegularMinutes:  regularMinutes,
			OvertimeMinutes: overtimeMinutes,
			HourlyRate:      emp.HourlyRate,
			OvertimeRate:    overtimeRate,
			RegularPay:      regularPay,
			OvertimePay:     overtimePay,
			GrossPay:        grossPay,
			AmountPaid:      decimal.Zero,
			AmountOwed:      grossPay,
		})
	}

	// Deterministic line order regardless of map iteration.
	sort.Slice(run.Lines, func(i, j int) bool {
		if run.Lines[i].EmployeeName != run.Lines[j].EmployeeName {
			return run.Lines[i].EmployeeName < run.Lines[j].EmployeeName
		}
		return run.Lines[i].EmployeeID < run.Lines[j].EmployeeID
	})
	sort.Strings(unlinked)

	var created payroll.Run
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		created, txErr = s.runRepo.CreateRun(ctx, run)
		return txErr
	})
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionCreate,
		EntityType: "payroll_run",
		EntityID:   created.ID,
		ActorID:    req.ActorID,
		Metadata: map[string]any{
			"line_count":     len(created.Lines),
			"unlinked_count": len(unlinked),
		},
	})

	return payroll.ToRunResponse(created, unlinked), nil
}

func (s *RunServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	run, err := s.runRepo.GetRunByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.ToRunResponse(run, nil), nil
}

func (s *RunServiceImpl) RecordLinePayment(ctx context.Context, req payroll.LinePaymentRequest) (payroll.RunLineResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunLineResponse{}, err
	}

	line, err := s.runRepo.ApplyLinePayment(ctx, req.LineID, req.Amount)
	if err != nil {
		return payroll.RunLineResponse{}, err
	}

	s.recordAudit(ctx, audit.Event{
		Action:     audit.ActionPayment,
		EntityType: "payroll_run_line",
		EntityID:   line.ID,
		ActorID:    req.ActorID,
		Metadata:   map[string]any{"amount": req.Amount.String()},
	})

	resp := payroll.ToRunResponse(payroll.Run{Lines: []payroll.RunLine{line}}, nil)
	return resp.Lines[0], nil
}

// recordAudit is fire-and-forget: an audit failure never fails the
// operation that produced the event.
func (s *RunServiceImpl) recordAudit(ctx context.Context, event audit.Event) {
	event.OccurredAt = time.Now().UTC()
	if err := s.auditRec.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed",
			slog.String("entity_type", event.EntityType),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()))
	}
}
