package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

const (
	anomalyFarmMissing      = "farm_missing"
	anomalyNotListed        = "not_listed_on_farm"
	anomalyStaffUserMissing = "staff_user_missing"
)

// IdentityService resolves a user into an AccountView and gates
// capabilities on it. It never writes.
type IdentityService struct {
	Store   store.Store
	Metrics *metrics.Metrics
}

// Resolve projects userID into an AccountView, re-deriving the role from
// the farm record. Integrity problems degrade the view and are logged;
// store failures are returned.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (domain.AccountView, error) {
	return s.resolve(ctx, s.Store, userID)
}

func (s *IdentityService) resolve(ctx context.Context, st store.Store, userID string) (domain.AccountView, error) {
	log := slogx.FromContext(ctx)

	user, err := st.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AccountView{}, ErrUserNotFound
		}
		log.Error("failed to load user", slog.String("user_id", userID), slog.Any("error", err))
		return domain.AccountView{}, storeErr(err)
	}

	view := domain.AccountView{User: user}
	if user.FarmID == "" {
		return view, nil
	}

	farm, err := st.Farms().GetFarmByID(ctx, user.FarmID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.anomaly(ctx, &view, anomalyFarmMissing, slog.String("farm_id", user.FarmID))
			return view, nil
		}
		log.Error("failed to load farm", slog.String("farm_id", user.FarmID), slog.Any("error", err))
		return domain.AccountView{}, storeErr(err)
	}
	view.Farm = &farm

	if farm.OwnerID == user.ID {
		view.Role = domain.OwnerRole(user.SelectedPlan)
		view.Staff, err = s.expandStaff(ctx, st, &view)
		if err != nil {
			return domain.AccountView{}, err
		}
		return view, nil
	}

	role, ok := farm.StaffRoleOf(user.ID)
	if !ok {
		s.anomaly(ctx, &view, anomalyNotListed, slog.String("farm_id", farm.ID))
		return view, nil
	}
	view.Role = domain.StaffRoleOf(role)
	return view, nil
}

// expandStaff looks up display fields for each staff entry. Read only.
func (s *IdentityService) expandStaff(ctx context.Context, st store.Store, view *domain.AccountView) ([]domain.StaffMember, error) {
	if len(view.Farm.Staff) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(view.Farm.Staff))
	for _, e := range view.Farm.Staff {
		ids = append(ids, e.UserID)
	}

	users, err := st.Users().ListUsersByIDs(ctx, ids)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to expand staff", slog.String("farm_id", view.Farm.ID), slog.Any("error", err))
		return nil, storeErr(err)
	}
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	members := make([]domain.StaffMember, 0, len(view.Farm.Staff))
	for _, e := range view.Farm.Staff {
		m := domain.StaffMember{UserID: e.UserID, Role: e.Role}
		if u, ok := byID[e.UserID]; ok {
			m.Email = u.Email
			m.DisplayName = u.DisplayName
		} else {
			s.anomaly(ctx, view, anomalyStaffUserMissing, slog.String("staff_user_id", e.UserID))
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *IdentityService) anomaly(ctx context.Context, view *domain.AccountView, name string, attrs ...any) {
	view.Anomaly = name
	s.Metrics.Anomaly(name)

	args := append([]any{
		slog.String("anomaly", name),
		slog.String("user_id", view.User.ID),
	}, attrs...)
	slogx.FromContext(ctx).Warn("integrity violation degraded during identity resolution", args...)
}

// Authorize resolves userID against st and requires capability c on
// farmID. An empty farmID checks c against whatever farm the user is on.
func (s *IdentityService) Authorize(ctx context.Context, userID, farmID string, c domain.Capability) (domain.AccountView, error) {
	return s.authorize(ctx, s.Store, userID, farmID, c)
}

func (s *IdentityService) authorize(
	ctx context.Context,
	st store.Store,
	userID, farmID string,
	c domain.Capability,
) (domain.AccountView, error) {
	if userID == "" {
		return domain.AccountView{}, ErrMissingPrincipal
	}

	view, err := s.resolve(ctx, st, userID)
	if err != nil {
		return domain.AccountView{}, err
	}

	if farmID != "" && (view.Farm == nil || view.Farm.ID != farmID) {
		return view, ErrNotOnFarm
	}
	if !domain.Can(view, c) {
		slogx.FromContext(ctx).Warn("capability denied",
			slog.String("user_id", userID),
			slog.String("capability", string(c)),
			slog.String("role", view.Role.String()),
		)
		return view, denied(view.Role, c)
	}
	return view, nil
}
