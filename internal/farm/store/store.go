package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by conditional updates whose precondition no
	// longer holds, e.g. an invitation that is no longer pending.
	ErrStale = errors.New("store: stale precondition")
)

// Store is the Directory Store. Sub-repositories are exposed as methods so
// a Tx can hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Farms() Farms
	Invitations() Invitations
	BillingEvents() BillingEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise. Repos used inside fn must come from tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by lowercased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsersByIDs returns the users that exist among ids, in no particular order.
	ListUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error)

	// CreateUser fails with ErrAlreadyExists on a duplicate id or email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateMembership sets farm_id, is_farm_owner and role together.
	UpdateMembership(ctx context.Context, userID, farmID string, isOwner bool, role domain.Role, at time.Time) error

	// UpdatePlan sets selected_plan, subscription_status and role together.
	UpdatePlan(ctx context.Context, userID string, plan domain.PlanTier, status domain.SubscriptionStatus, role domain.Role, at time.Time) error
}

type Farms interface {
	// GetFarmByID returns the farm with its staff list.
	GetFarmByID(ctx context.Context, id string) (domain.Farm, error)

	// ListFarmsOwnedBy returns farms whose owner_id is userID, oldest first.
	ListFarmsOwnedBy(ctx context.Context, userID string) ([]domain.Farm, error)

	CreateFarm(ctx context.Context, f domain.Farm) error
	UpdateFarmDetails(ctx context.Context, id, name string, location *string, at time.Time) error

	// AddStaff inserts or replaces the entry for e.UserID on farmID.
	AddStaff(ctx context.Context, farmID string, e domain.StaffEntry) error

	// RemoveStaff returns ErrNotFound when userID is not staff on farmID.
	RemoveStaff(ctx context.Context, farmID, userID string, at time.Time) error

	// RemoveStaffEverywhere drops every staff entry for userID and returns
	// the farms they were removed from.
	RemoveStaffEverywhere(ctx context.Context, userID string, at time.Time) ([]string, error)
}

type Invitations interface {
	// CreateInvitation fails with ErrAlreadyExists when a pending invitation
	// for the same farm and email exists, or the token hash collides.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetPendingInvitation returns the pending invitation for the pair,
	// expired or not.
	GetPendingInvitation(ctx context.Context, farmID, email string) (domain.Invitation, error)

	// ListActiveByFarm and ListActiveByEmail return pending invitations
	// expiring after now, newest first.
	ListActiveByFarm(ctx context.Context, farmID string, now time.Time) ([]domain.Invitation, error)
	ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]domain.Invitation, error)

	// Transition moves a pending invitation to a terminal status. It
	// returns ErrStale when the invitation is no longer pending.
	Transition(ctx context.Context, id string, to domain.InvitationStatus, at time.Time) error

	// ResolveInvitee sets invited_user_id on pending invitations addressed
	// to email that have not been resolved yet.
	ResolveInvitee(ctx context.Context, email, userID string) error

	// ExpirePending flips pending invitations expiring at or before now to
	// expired and returns how many changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type BillingEvents interface {
	// RecordPlanChange fails with ErrAlreadyExists when the event id was seen before.
	RecordPlanChange(ctx context.Context, ev domain.PlanChange) error
}
