package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

// AccountService registers users together with their personal farm.
type AccountService struct {
	Store    store.Store
	Identity *IdentityService

	Now func() time.Time
}

// Register creates the caller's user record and personal farm in one
// transaction. Registering twice returns the existing account unchanged.
// Callers without a verified email are rejected.
func (s *AccountService) Register(
	ctx context.Context,
	p domain.Principal,
	displayName, farmName string,
) (domain.AccountView, error) {
	log := slogx.FromContext(ctx)

	if p.UserID == "" {
		return domain.AccountView{}, ErrMissingPrincipal
	}
	// The stored email binds pending invitations to this user, so it must
	// be one the identity provider has verified.
	if !p.EmailVerified {
		return domain.AccountView{}, ErrEmailNotVerified
	}
	email, err := domain.NormalizeEmail(p.Email)
	if err != nil {
		return domain.AccountView{}, ErrInvalidEmail
	}

	view, err := s.Identity.Resolve(ctx, p.UserID)
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.AccountView{}, err
	}

	displayName = strings.TrimSpace(displayName)
	farmName = strings.TrimSpace(farmName)
	if farmName == "" {
		farmName = domain.DefaultFarmName(displayName)
	}

	now := clock(s.Now)
	farmID := idx.NewAt(now).String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:                 p.UserID,
			Email:              email,
			DisplayName:        displayName,
			FarmID:             farmID,
			IsFarmOwner:        true,
			Role:               domain.OwnerRole(domain.PlanFree),
			SelectedPlan:       domain.PlanFree,
			SubscriptionStatus: domain.SubscriptionNone,
			CreatedAt:          now,
			UpdatedAt:          now,
		}); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return errDuplicateUser
			}
			return storeErr(err)
		}

		if err := tx.Farms().CreateFarm(ctx, domain.Farm{
			ID:        farmID,
			Name:      farmName,
			OwnerID:   p.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return storeErr(err)
		}

		// Invitations sent before the user existed now point at them.
		if err := tx.Invitations().ResolveInvitee(ctx, email, p.UserID); err != nil {
			return storeErr(err)
		}
		return nil
	})
	if errors.Is(err, errDuplicateUser) {
		// Lost a registration race to ourselves, or the email belongs to someone else.
		if view, rerr := s.Identity.Resolve(ctx, p.UserID); rerr == nil {
			return view, nil
		}
		return domain.AccountView{}, ErrEmailTaken
	}
	if err != nil {
		log.Error("registration failed", slog.String("user_id", p.UserID), slog.Any("error", err))
		return domain.AccountView{}, err
	}

	log.Info("user registered", slog.String("user_id", p.UserID), slog.String("farm_id", farmID))
	return s.Identity.Resolve(ctx, p.UserID)
}

var errDuplicateUser = errors.New("duplicate user")
