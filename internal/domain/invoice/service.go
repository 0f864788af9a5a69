package invoice

import "context"

// InvoiceService owns the generation batch and every later mutation of an
// invoice. Generation never advances an invoice past DRAFT on its own.
type InvoiceService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateSummary, error)
	Get(ctx context.Context, id string) (InvoiceResponse, error)
	Approve(ctx context.Context, id string, actorID *string) (InvoiceResponse, error)
	MarkSent(ctx context.Context, id string, actorID *string) (InvoiceResponse, error)
	Delete(ctx context.Context, id string) error
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (InvoiceResponse, error)
	RecordAdjustment(ctx context.Context, req RecordAdjustmentRequest) (InvoiceResponse, error)
}

// BillingService prices a set of entries without persisting anything.
type BillingService interface {
	Preview(ctx context.Context, req BillPreviewRequest) (BillPreviewResponse, error)
}
