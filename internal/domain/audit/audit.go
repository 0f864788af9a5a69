package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionApprove    Action = "approve"
	ActionSend       Action = "send"
	ActionPayment    Action = "payment"
	ActionAdjustment Action = "adjustment"
	ActionDelete     Action = "delete"
)

// Event - one structured audit record. Emitted after financial mutations
// commit; emission failures must never fail the operation that produced
// the event.
type Event struct {
	Action     Action
	EntityType string
	EntityID   string
	ActorID    *string
	Metadata   map[string]any
	OccurredAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, event Event) error
}
