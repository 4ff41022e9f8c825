package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

// MembershipService edits farm membership and farm details on behalf of an
// authorized caller.
type MembershipService struct {
	Store    store.Store
	Identity *IdentityService
	Metrics  *metrics.Metrics

	Now func() time.Time
}

// Removed reports where a removed staff member landed.
// Removed reports where a removed staff member landed.
type Removed struct {
	UserID      string
	FarmID      string
	CreatedFarm bool
}

// RemoveStaff drops staffUserID from farmID and moves them back onto a farm
// they own, creating a personal farm if they have none.
func (s *MembershipService) RemoveStaff(
	ctx context.Context,
	p domain.Principal,
	farmID, staffUserID string,
) (Removed, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var out Removed
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		view, err := s.Identity.authorize(ctx, tx, p.UserID, farmID, domain.CapRemoveStaff)
		if err != nil {
			return err
		}
		farm := view.Farm

		if staffUserID == farm.OwnerID {
			return ErrCannotRemoveOwner
		}
		if _, ok := farm.StaffRoleOf(staffUserID); !ok {
			return ErrNotStaff
		}

		if err := tx.Farms().RemoveStaff(ctx, farm.ID, staffUserID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotStaff
			}
			return storeErr(err)
		}

		member, err := tx.Users().GetUserByID(ctx, staffUserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &Error{ErrIntegrityViolation, "staff entry references a missing user"}
			}
			return storeErr(err)
		}
		if member.FarmID != farm.ID {
			log.Warn("removed staff member pointed at a different farm",
				slog.String("anomaly", anomalyNotListed),
				slog.String("user_id", member.ID),
				slog.String("user_farm_id", member.FarmID),
			)
		}

		fallback, created, err := fallbackFarm(ctx, tx, member, now)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateMembership(ctx, member.ID, fallback.ID, true, domain.OwnerRole(member.SelectedPlan), now); err != nil {
			return storeErr(err)
		}

		out = Removed{UserID: member.ID, FarmID: fallback.ID, CreatedFarm: created}
		return nil
	})
	if err != nil {
		log.Warn("remove staff rejected",
			slog.String("farm_id", farmID),
			slog.String("staff_user_id", staffUserID),
			slog.Any("error", err),
		)
		s.Metrics.Rejected("remove_staff", Kind(err))
		return Removed{}, err
	}

	s.Metrics.StaffRemoved()
	log.Info("staff removed",
		slog.String("farm_id", farmID),
		slog.String("staff_user_id", staffUserID),
		slog.String("fallback_farm_id", out.FarmID),
		slog.Bool("created_farm", out.CreatedFarm),
	)
	return out, nil
}

// fallbackFarm returns the oldest farm u owns, or creates a personal one.
func fallbackFarm(ctx context.Context, tx store.Tx, u domain.User, now time.Time) (domain.Farm, bool, error) {
	owned, err := tx.Farms().ListFarmsOwnedBy(ctx, u.ID)
	if err != nil {
		return domain.Farm{}, false, storeErr(err)
	}
	if len(owned) > 0 {
		return owned[0], false, nil
	}

	farm := domain.Farm{
		ID:        idx.NewAt(now).String(),
		Name:      domain.DefaultFarmName(u.DisplayName),
		OwnerID:   u.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Farms().CreateFarm(ctx, farm); err != nil {
		return domain.Farm{}, false, storeErr(err)
	}
	return farm, true, nil
}

// UpdateFarm changes the farm's name and location. Owner only.
func (s *MembershipService) UpdateFarm(
	ctx context.Context,
	p domain.Principal,
	farmID, name string,
	location *string,
) (domain.Farm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Farm{}, ErrInvalidFarmName
	}
	if location != nil {
		trimmed := strings.TrimSpace(*location)
		location = &trimmed
		if trimmed == "" {
			location = nil
		}
	}

	now := clock(s.Now)
	var farm domain.Farm
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.Identity.authorize(ctx, tx, p.UserID, farmID, domain.CapChangeFarmDetails); err != nil {
			return err
		}
		if err := tx.Farms().UpdateFarmDetails(ctx, farmID, name, location, now); err != nil {
			return storeErr(err)
		}
		updated, err := tx.Farms().GetFarmByID(ctx, farmID)
		if err != nil {
			return storeErr(err)
		}
		farm = updated
		return nil
	})
	if err != nil {
		s.Metrics.Rejected("update_farm", Kind(err))
		return domain.Farm{}, err
	}

	slogx.FromContext(ctx).Info("farm updated", slog.String("farm_id", farmID))
	return farm, nil
}
