package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

// PlanService is the bridge between billing and roles: for an owner the
// plan tier is the role, so both are written in the same transaction.
type PlanService struct {
	Store    store.Store
	Identity *IdentityService
	Metrics  *metrics.Metrics

	Now func() time.Time
}

// ApplyPlanChange records ev and updates the user's plan. It returns
// applied=false without error when ev.EventID was already applied.
func (s *PlanService) ApplyPlanChange(ctx context.Context, ev domain.PlanChange) (bool, error) {
	log := slogx.FromContext(ctx)

	if ev.EventID == "" || ev.UserID == "" {
		return false, ErrInvalidEvent
	}
	if _, err := domain.ParsePlanTier(string(ev.Plan)); err != nil {
		return false, ErrInvalidPlan
	}
	if ev.Status == "" {
		ev.Status = domain.SubscriptionActive
	}
	if !ev.Status.Valid() {
		return false, ErrInvalidStatus
	}

	now := clock(s.Now)
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = now
	}

	duplicate := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BillingEvents().RecordPlanChange(ctx, ev); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				duplicate = true
				return nil
			}
			return storeErr(err)
		}

		user, err := tx.Users().GetUserByID(ctx, ev.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeErr(err)
		}

		role := user.Role
		if user.IsFarmOwner {
			role = domain.OwnerRole(ev.Plan)
		}
		if err := tx.Users().UpdatePlan(ctx, user.ID, ev.Plan, ev.Status, role, now); err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		log.Warn("plan change rejected",
			slog.String("event_id", ev.EventID),
			slog.String("user_id", ev.UserID),
			slog.Any("error", err),
		)
		s.Metrics.PlanChange(ev.Source, "rejected")
		return false, err
	}
	if duplicate {
		log.Debug("plan change already applied", slog.String("event_id", ev.EventID))
		s.Metrics.PlanChange(ev.Source, "duplicate")
		return false, nil
	}

	s.Metrics.PlanChange(ev.Source, "applied")
	log.Info("plan changed",
		slog.String("event_id", ev.EventID),
		slog.String("user_id", ev.UserID),
		slog.String("plan", string(ev.Plan)),
		slog.String("status", string(ev.Status)),
	)
	return true, nil
}

// DowngradeToFree is the self-service path to the free plan. Requires
// manageBilling.
func (s *PlanService) DowngradeToFree(ctx context.Context, p domain.Principal) (domain.AccountView, error) {
	if _, err := s.Identity.Authorize(ctx, p.UserID, "", domain.CapManageBilling); err != nil {
		return domain.AccountView{}, err
	}

	now := clock(s.Now)
	if _, err := s.ApplyPlanChange(ctx, domain.PlanChange{
		EventID:    "self-" + idx.NewAt(now).String(),
		UserID:     p.UserID,
		Plan:       domain.PlanFree,
		Status:     domain.SubscriptionCanceled,
		Source:     "self_service",
		ReceivedAt: now,
	}); err != nil {
		return domain.AccountView{}, err
	}
	return s.Identity.Resolve(ctx, p.UserID)
}
