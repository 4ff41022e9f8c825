// Package billing ingests plan-change notifications from the billing
// collaborator, over the HTTP webhook or a JetStream subject, and feeds
// them to the plan/role bridge.
package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
)

// EventTypePlanChanged is the only event type acted on; others are ignored.
const EventTypePlanChanged = "plan.changed"

var ErrMalformedEvent = errors.New("billing: malformed event")

// Event is the wire form of a billing notification.
type Event struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
	Status string `json:"status,omitempty"`
}

// Decode parses and minimally validates an event. Plan and status values
// are checked by the bridge.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return Event{}, fmt.Errorf("%w: id and type are required", ErrMalformedEvent)
	}
	return ev, nil
}

// PlanChange converts ev for the bridge.
func (ev Event) PlanChange(source string, at time.Time) domain.PlanChange {
	return domain.PlanChange{
		EventID:    ev.ID,
		UserID:     ev.UserID,
		Plan:       domain.PlanTier(ev.Plan),
		Status:     domain.SubscriptionStatus(ev.Status),
		Source:     source,
		ReceivedAt: at,
	}
}
