package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type userRow struct {
	ID                 string         `db:"id"`
	Email              string         `db:"email"`
	DisplayName        string         `db:"display_name"`
	FarmID             sql.NullString `db:"farm_id"`
	IsFarmOwner        bool           `db:"is_farm_owner"`
	Role               string         `db:"role"`
	SelectedPlan       string         `db:"selected_plan"`
	SubscriptionStatus string         `db:"subscription_status"`
	Settings           string         `db:"settings"`
	CreatedAt          int64          `db:"created_at"`
	UpdatedAt          int64          `db:"updated_at"`
}

const userColumns = `id, email, display_name, farm_id, is_farm_owner, role,
	selected_plan, subscription_status, settings, created_at, updated_at`

func mapUser(row userRow) (domain.User, error) {
	role, err := domain.ParseRole(row.Role)
	if err != nil {
		return domain.User{}, fmt.Errorf("sqlite: user %s: %w", row.ID, err)
	}
	plan, err := domain.ParsePlanTier(row.SelectedPlan)
	if err != nil {
		return domain.User{}, fmt.Errorf("sqlite: user %s: %w", row.ID, err)
	}

	return domain.User{
		ID:                 row.ID,
		Email:              row.Email,
		DisplayName:        row.DisplayName,
		FarmID:             mapNullString(row.FarmID),
		IsFarmOwner:        row.IsFarmOwner,
		Role:               role,
		SelectedPlan:       plan,
		SubscriptionStatus: domain.SubscriptionStatus(row.SubscriptionStatus),
		Settings:           row.Settings,
		CreatedAt:          fromMillis(row.CreatedAt),
		UpdatedAt:          fromMillis(row.UpdatedAt),
	}, nil
}

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := sqlscan.Get(ctx, r.db, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := sqlscan.Get(ctx, r.db, &row, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row)
}

func (r *usersRepo) ListUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := mapUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	settings := u.Settings
	if settings == "" {
		settings = "{}"
	}
	status := u.SubscriptionStatus
	if status == "" {
		status = domain.SubscriptionNone
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.DisplayName,
		mapStringNull(u.FarmID),
		u.IsFarmOwner,
		u.Role.String(),
		string(u.SelectedPlan),
		string(status),
		settings,
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateMembership(
	ctx context.Context,
	userID, farmID string,
	isOwner bool,
	role domain.Role,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET farm_id = ?, is_farm_owner = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		mapStringNull(farmID), isOwner, role.String(), toMillis(at), userID,
	)
	return requireOneRow(res, err)
}

func (r *usersRepo) UpdatePlan(
	ctx context.Context,
	userID string,
	plan domain.PlanTier,
	status domain.SubscriptionStatus,
	role domain.Role,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET selected_plan = ?, subscription_status = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		string(plan), string(status), role.String(), toMillis(at), userID,
	)
	return requireOneRow(res, err)
}
