package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/cryptox"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

// DefaultInvitationTTL applies when InvitationService.TTL is unset.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService runs the invitation state machine: create, accept,
// redeem, decline, revoke and the expiry sweep.
type InvitationService struct {
	Store    store.Store
	Identity *IdentityService
	Metrics  *metrics.Metrics

	// TTL is how long a new invitation stays acceptable.
	TTL time.Duration

	Now func() time.Time
}

// Created is the result of Invite. Token is the only copy of the opaque
// invitation token; only its fingerprint is stored.
// Created is a new invitation plus its opaque token, which is not stored
// and cannot be recovered later.
type Created struct {
	Invitation domain.Invitation
	Token      string
}

// Accepted is the caller's new membership after Accept.
type Accepted struct {
	InvitationID string
	FarmID       string
	Role         domain.StaffRole
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultInvitationTTL
}

// Invite creates a pending invitation for email to join farmID as role.
func (s *InvitationService) Invite(
	ctx context.Context,
	p domain.Principal,
	farmID, email, role string,
) (Created, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	invitedEmail, err := domain.NormalizeEmail(email)
	if err != nil {
		return Created{}, ErrInvalidEmail
	}
	invitedRole, err := domain.ParseStaffRole(role)
	if err != nil {
		return Created{}, ErrInvalidRole
	}

	if _, err := s.Identity.Authorize(ctx, p.UserID, farmID, domain.CapInviteStaff); err != nil {
		s.Metrics.Rejected("invite", Kind(err))
		return Created{}, err
	}

	// Pre-check outside the transaction; re-checked inside before insert.
	existing, err := s.Store.Invitations().GetPendingInvitation(ctx, farmID, invitedEmail)
	switch {
	case err == nil && existing.IsActive(now):
		log.Warn("invitation already pending",
			slog.String("farm_id", farmID),
			slog.String("invitation_id", existing.ID),
		)
		s.Metrics.Rejected("invite", Kind(ErrAlreadyInvited))
		return Created{}, ErrAlreadyInvited
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Error("failed to check pending invitations", slog.Any("error", err))
		return Created{}, storeErr(err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return Created{}, err
	}

	inv := domain.Invitation{
		ID:            idx.NewAt(now).String(),
		InviterFarmID: farmID,
		InviterUserID: p.UserID,
		InvitedEmail:  invitedEmail,
		InvitedRole:   invitedRole,
		Status:        domain.InvitationPending,
		TokenHash:     cryptox.FingerprintToken(token),
		ExpiresAt:     now.Add(s.ttl()),
		CreatedAt:     now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.Identity.authorize(ctx, tx, p.UserID, farmID, domain.CapInviteStaff); err != nil {
			return err
		}

		invitee, err := tx.Users().GetUserByEmail(ctx, invitedEmail)
		switch {
		case err == nil:
			if invitee.FarmID == farmID {
				return ErrAlreadyMember
			}
			inv.InvitedUserID = invitee.ID
		case !errors.Is(err, store.ErrNotFound):
			return storeErr(err)
		}

		pending, err := tx.Invitations().GetPendingInvitation(ctx, farmID, invitedEmail)
		switch {
		case err == nil && pending.IsActive(now):
			return ErrAlreadyInvited
		case err == nil:
			// Expired but still labelled pending; retire it to free the slot.
			if err := tx.Invitations().Transition(ctx, pending.ID, domain.InvitationExpired, now); err != nil {
				return storeErr(err)
			}
		case !errors.Is(err, store.ErrNotFound):
			return storeErr(err)
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyInvited
			}
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		log.Warn("invite rejected", slog.String("farm_id", farmID), slog.Any("error", err))
		s.Metrics.Rejected("invite", Kind(err))
		return Created{}, err
	}

	s.Metrics.InvitationTransition(string(domain.InvitationPending))
	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("farm_id", farmID),
		slog.String("role", string(invitedRole)),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return Created{Invitation: inv, Token: token}, nil
}

// Accept moves the caller onto the inviting farm as staff.
func (s *InvitationService) Accept(ctx context.Context, p domain.Principal, invitationID string) (Accepted, error) {
	return s.accept(ctx, p, func(tx store.Tx) (domain.Invitation, error) {
		return tx.Invitations().GetInvitationByID(ctx, invitationID)
	})
}

// Redeem accepts the invitation identified by its opaque token.
func (s *InvitationService) Redeem(ctx context.Context, p domain.Principal, token string) (Accepted, error) {
	if token == "" {
		return Accepted{}, ErrInvitationNotFound
	}
	hash := cryptox.FingerprintToken(token)
	return s.accept(ctx, p, func(tx store.Tx) (domain.Invitation, error) {
		return tx.Invitations().GetInvitationByTokenHash(ctx, hash)
	})
}

func (s *InvitationService) accept(
	ctx context.Context,
	p domain.Principal,
	lookup func(tx store.Tx) (domain.Invitation, error),
) (Accepted, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	if p.UserID == "" {
		return Accepted{}, ErrMissingPrincipal
	}

	var (
		out      Accepted
		farmGone bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := lookup(tx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return storeErr(err)
		}
		if err := checkActionable(inv, p, now); err != nil {
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeErr(err)
		}

		target, err := tx.Farms().GetFarmByID(ctx, inv.InviterFarmID)
		if errors.Is(err, store.ErrNotFound) {
			// Commit the terminal status so the dead invitation stops showing up.
			if err := tx.Invitations().Transition(ctx, inv.ID, domain.InvitationErrFarmNotFound, now); err != nil {
				return storeErr(err)
			}
			farmGone = true
			return nil
		}
		if err != nil {
			return storeErr(err)
		}
		if target.OwnerID == user.ID {
			return ErrAlreadyMember
		}
		// A farm whose owner now works elsewhere takes no new staff, so
		// invitations it issued earlier cannot leave it staffed and unowned.
		owner, err := tx.Users().GetUserByID(ctx, target.OwnerID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrOwnerAway
		case err != nil:
			return storeErr(err)
		case !owner.IsFarmOwner || owner.FarmID != target.ID:
			return ErrOwnerAway
		}

		// Claim first: a racing accept sees a non-pending row and fails.
		if err := tx.Invitations().Transition(ctx, inv.ID, domain.InvitationAccepted, now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return ErrInvitationNotPending
			}
			return storeErr(err)
		}

		// The caller's own farm is left in place. It must not be left
		// with staff and no owner on it.
		if user.IsFarmOwner && user.FarmID != "" && user.FarmID != target.ID {
			current, err := tx.Farms().GetFarmByID(ctx, user.FarmID)
			switch {
			case err == nil && current.OwnerID == user.ID && len(current.Staff) > 0:
				return ErrOwnerHasStaff
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return storeErr(err)
			}
		}

		if _, err := tx.Farms().RemoveStaffEverywhere(ctx, user.ID, now); err != nil {
			return storeErr(err)
		}
		if err := tx.Farms().AddStaff(ctx, target.ID, domain.StaffEntry{
			UserID:  user.ID,
			Role:    inv.InvitedRole,
			AddedAt: now,
		}); err != nil {
			return storeErr(err)
		}
		if err := tx.Users().UpdateMembership(ctx, user.ID, target.ID, false, domain.StaffRoleOf(inv.InvitedRole), now); err != nil {
			return storeErr(err)
		}

		out = Accepted{InvitationID: inv.ID, FarmID: target.ID, Role: inv.InvitedRole}
		return nil
	})
	if err == nil && farmGone {
		err = ErrInviterFarmGone
		s.Metrics.InvitationTransition(string(domain.InvitationErrFarmNotFound))
	}
	if err != nil {
		log.Warn("accept rejected", slog.String("user_id", p.UserID), slog.Any("error", err))
		s.Metrics.Rejected("accept", Kind(err))
		return Accepted{}, err
	}

	s.Metrics.InvitationTransition(string(domain.InvitationAccepted))
	log.Info("invitation accepted",
		slog.String("invitation_id", out.InvitationID),
		slog.String("user_id", p.UserID),
		slog.String("farm_id", out.FarmID),
		slog.String("role", string(out.Role)),
	)
	return out, nil
}

// checkActionable applies the invitee-side preconditions shared by accept
// and decline. An invitation at or past its expiry is rejected even if it
// is still labelled pending.
func checkActionable(inv domain.Invitation, p domain.Principal, now time.Time) error {
	if inv.Status != domain.InvitationPending {
		return ErrInvitationNotPending
	}
	if inv.IsExpired(now) {
		return ErrInvitationExpired
	}
	if !inv.AddressedTo(p) {
		if inv.InvitedUserID == "" && !p.EmailVerified {
			return ErrEmailNotVerified
		}
		return ErrNotInvitee
	}
	return nil
}

// Decline marks the caller's invitation declined. Nothing else changes.
func (s *InvitationService) Decline(ctx context.Context, p domain.Principal, invitationID string) error {
	now := clock(s.Now)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := getInvitation(ctx, tx, invitationID)
		if err != nil {
			return err
		}
		if err := checkActionable(inv, p, now); err != nil {
			return err
		}
		return transition(ctx, tx, inv.ID, domain.InvitationDeclined, now)
	})
	return s.finish(ctx, "decline", invitationID, domain.InvitationDeclined, err)
}

// Revoke withdraws a pending invitation from the caller's farm.
func (s *InvitationService) Revoke(ctx context.Context, p domain.Principal, invitationID string) error {
	now := clock(s.Now)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := getInvitation(ctx, tx, invitationID)
		if err != nil {
			return err
		}
		if _, err := s.Identity.authorize(ctx, tx, p.UserID, inv.InviterFarmID, domain.CapRevokeInvitation); err != nil {
			return err
		}
		if inv.Status != domain.InvitationPending {
			return ErrInvitationNotPending
		}
		if inv.IsExpired(now) {
			return ErrInvitationExpired
		}
		return transition(ctx, tx, inv.ID, domain.InvitationRevoked, now)
	})
	return s.finish(ctx, "revoke", invitationID, domain.InvitationRevoked, err)
}

func (s *InvitationService) finish(ctx context.Context, op, invitationID string, to domain.InvitationStatus, err error) error {
	log := slogx.FromContext(ctx)
	if err != nil {
		log.Warn(op+" rejected", slog.String("invitation_id", invitationID), slog.Any("error", err))
		s.Metrics.Rejected(op, Kind(err))
		return err
	}
	s.Metrics.InvitationTransition(string(to))
	log.Info("invitation "+string(to), slog.String("invitation_id", invitationID))
	return nil
}

func getInvitation(ctx context.Context, st store.Store, id string) (domain.Invitation, error) {
	inv, err := st.Invitations().GetInvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, storeErr(err)
	}
	return inv, nil
}

func transition(ctx context.Context, tx store.Tx, id string, to domain.InvitationStatus, now time.Time) error {
	err := tx.Invitations().Transition(ctx, id, to, now)
	switch {
	case errors.Is(err, store.ErrStale):
		return ErrInvitationNotPending
	case errors.Is(err, store.ErrNotFound):
		return ErrInvitationNotFound
	case err != nil:
		return storeErr(err)
	}
	return nil
}

// ListForFarm returns the farm's active invitations. Requires inviteStaff.
func (s *InvitationService) ListForFarm(ctx context.Context, p domain.Principal, farmID string) ([]domain.Invitation, error) {
	if _, err := s.Identity.Authorize(ctx, p.UserID, farmID, domain.CapInviteStaff); err != nil {
		return nil, err
	}
	invs, err := s.Store.Invitations().ListActiveByFarm(ctx, farmID, clock(s.Now))
	if err != nil {
		return nil, storeErr(err)
	}
	return invs, nil
}

// ListMine returns active invitations addressed to the caller's verified email.
func (s *InvitationService) ListMine(ctx context.Context, p domain.Principal) ([]domain.Invitation, error) {
	if p.UserID == "" {
		return nil, ErrMissingPrincipal
	}
	if !p.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	email, err := domain.NormalizeEmail(p.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	invs, err := s.Store.Invitations().ListActiveByEmail(ctx, email, clock(s.Now))
	if err != nil {
		return nil, storeErr(err)
	}
	return invs, nil
}

// SweepExpired flips expired pending invitations to expired. Listings and
// actions already treat them as expired, so this is hygiene only.
func (s *InvitationService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.Invitations().ExpirePending(ctx, clock(s.Now))
	if err != nil {
		return 0, storeErr(err)
	}
	s.Metrics.Swept(n)
	return n, nil
}
