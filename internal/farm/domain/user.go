package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidEmail = errors.New("domain: invalid email")

type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = "none"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionNone, SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled:
		return true
	}
	return false
}

// User is a registered account and its current farm membership.
type User struct {
	ID                 string
	Email              string // lowercased, unique
	DisplayName        string
	FarmID             string // empty when the user has no current farm
	IsFarmOwner        bool
	Role               Role // role on FarmID
	SelectedPlan       PlanTier
	SubscriptionStatus SubscriptionStatus
	Settings           string // opaque JSON owned by the presentation layer
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeEmail trims and lowercases a bare address, rejecting display
// names and anything net/mail cannot parse.
func NormalizeEmail(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", ErrInvalidEmail
	}
	return s, nil
}

// Principal is an already-authenticated caller.
type Principal struct {
	UserID        string
	Email         string
	EmailVerified bool
}
