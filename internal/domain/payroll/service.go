package payroll

import "context"

// RunService builds payroll runs from imported time data and records
// per-line payments.
type RunService interface {
	BuildRun(ctx context.Context, req BuildRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	RecordLinePayment(ctx context.Context, req LinePaymentRequest) (RunLineResponse, error)
}
