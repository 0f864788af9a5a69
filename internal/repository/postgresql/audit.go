package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/audit"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
)

type auditRecorder struct {
	db *database.DB
}

func NewAuditRecorder(db *database.DB) audit.Recorder {
	return &auditRecorder{db: db}
}

func (r *auditRecorder) Record(ctx context.Context, event audit.Event) error {
	q := GetQuerier(ctx, r.db)

	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (action, entity_type, entity_id, actor_id, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := q.Exec(ctx, query, event.Action, event.EntityType, event.EntityID, event.ActorID, metadata, event.OccurredAt); err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}
