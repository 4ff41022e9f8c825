package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type invitationRow struct {
	ID            string         `db:"id"`
	InviterFarmID string         `db:"inviter_farm_id"`
	InviterUserID string         `db:"inviter_user_id"`
	InvitedEmail  string         `db:"invited_email"`
	InvitedUserID sql.NullString `db:"invited_user_id"`
	InvitedRole   string         `db:"invited_role"`
	Status        string         `db:"status"`
	TokenHash     string         `db:"token_hash"`
	ExpiresAt     int64          `db:"expires_at"`
	CreatedAt     int64          `db:"created_at"`
	ResolvedAt    sql.NullInt64  `db:"resolved_at"`
}

const invitationColumns = `id, inviter_farm_id, inviter_user_id, invited_email, invited_user_id,
	invited_role, status, token_hash, expires_at, created_at, resolved_at`

func mapInvitation(row invitationRow) domain.Invitation {
	return domain.Invitation{
		ID:            row.ID,
		InviterFarmID: row.InviterFarmID,
		InviterUserID: row.InviterUserID,
		InvitedEmail:  row.InvitedEmail,
		InvitedUserID: mapNullString(row.InvitedUserID),
		InvitedRole:   domain.StaffRole(row.InvitedRole),
		Status:        domain.InvitationStatus(row.Status),
		TokenHash:     row.TokenHash,
		ExpiresAt:     fromMillis(row.ExpiresAt),
		CreatedAt:     fromMillis(row.CreatedAt),
		ResolvedAt:    mapNullMillisPtr(row.ResolvedAt),
	}
}

func mapInvitations(rows []invitationRow) []domain.Invitation {
	out := make([]domain.Invitation, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapInvitation(row))
	}
	return out
}

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.InviterFarmID,
		inv.InviterUserID,
		inv.InvitedEmail,
		mapStringNull(inv.InvitedUserID),
		string(inv.InvitedRole),
		string(inv.Status),
		inv.TokenHash,
		toMillis(inv.ExpiresAt),
		toMillis(inv.CreatedAt),
		mapOptionalMillis(inv.ResolvedAt),
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) get(ctx context.Context, where string, args ...any) (domain.Invitation, error) {
	var row invitationRow
	err := sqlscan.Get(ctx, r.db, &row, `SELECT `+invitationColumns+` FROM invitations WHERE `+where, args...)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return mapInvitation(row), nil
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	return r.get(ctx, `token_hash = ?`, hash)
}

func (r *invitationsRepo) GetPendingInvitation(ctx context.Context, farmID, email string) (domain.Invitation, error) {
	return r.get(ctx, `inviter_farm_id = ? AND invited_email = ? AND status = 'pending'`, farmID, email)
}

func (r *invitationsRepo) ListActiveByFarm(ctx context.Context, farmID string, now time.Time) ([]domain.Invitation, error) {
	var rows []invitationRow
	err := sqlscan.Select(ctx, r.db, &rows, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE inviter_farm_id = ? AND status = 'pending' AND expires_at > ?
		ORDER BY created_at DESC, id DESC`, farmID, toMillis(now))
	if err != nil {
		return nil, err
	}
	return mapInvitations(rows), nil
}

func (r *invitationsRepo) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]domain.Invitation, error) {
	var rows []invitationRow
	err := sqlscan.Select(ctx, r.db, &rows, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE invited_email = ? AND status = 'pending' AND expires_at > ?
		ORDER BY created_at DESC, id DESC`, email, toMillis(now))
	if err != nil {
		return nil, err
	}
	return mapInvitations(rows), nil
}

func (r *invitationsRepo) Transition(
	ctx context.Context,
	id string,
	to domain.InvitationStatus,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(to), toMillis(at), id,
	)
	err = requireOneRow(res, err)
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// Zero rows: either the id is unknown or someone else got there first.
	if _, err := r.GetInvitationByID(ctx, id); err != nil {
		return err
	}
	return store.ErrStale
}

func (r *invitationsRepo) ResolveInvitee(ctx context.Context, email, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET invited_user_id = ?
		WHERE invited_email = ? AND status = 'pending' AND invited_user_id IS NULL`,
		userID, email,
	)
	return err
}

func (r *invitationsRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = 'expired', resolved_at = ?
		WHERE status = 'pending' AND expires_at <= ?`,
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
