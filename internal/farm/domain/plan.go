package domain

import "time"

// PlanChange is a billing collaborator's notification that a user's plan
// or subscription status changed. EventID makes redelivery idempotent.
type PlanChange struct {
	EventID    string
	UserID     string
	Plan       PlanTier
	Status     SubscriptionStatus
	Source     string // "webhook", "nats", "self_service"
	ReceivedAt time.Time
}
