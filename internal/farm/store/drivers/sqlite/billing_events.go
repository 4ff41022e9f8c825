package sqlite

import (
	"context"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
)

type billingEventsRepo struct {
	db dbtx
}

func (r *billingEventsRepo) RecordPlanChange(ctx context.Context, ev domain.PlanChange) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_events (id, user_id, plan, status, source, received_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.UserID, string(ev.Plan), string(ev.Status), ev.Source, toMillis(ev.ReceivedAt),
	)
	return mapConstraint(err)
}
