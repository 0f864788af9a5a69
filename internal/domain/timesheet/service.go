package timesheet

import "context"

// OverlapService validates candidate entries against each other and against
// the persisted schedule. Read-only.
type OverlapService interface {
	CheckEntries(ctx context.Context, req CheckOverlapRequest) (CheckOverlapResponse, error)
}
