package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type farmRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	OwnerID   string         `db:"owner_id"`
	Location  sql.NullString `db:"location"`
	CreatedAt int64          `db:"created_at"`
	UpdatedAt int64          `db:"updated_at"`
}

type staffRow struct {
	UserID  string `db:"user_id"`
	Role    string `db:"role"`
	AddedAt int64  `db:"added_at"`
}

func mapFarm(row farmRow, staff []staffRow) domain.Farm {
	f := domain.Farm{
		ID:        row.ID,
		Name:      row.Name,
		OwnerID:   row.OwnerID,
		Location:  mapNullStringPtr(row.Location),
		CreatedAt: fromMillis(row.CreatedAt),
		UpdatedAt: fromMillis(row.UpdatedAt),
	}
	for _, s := range staff {
		f.Staff = append(f.Staff, domain.StaffEntry{
			UserID:  s.UserID,
			Role:    domain.StaffRole(s.Role), // CHECK constraint guarantees validity
			AddedAt: fromMillis(s.AddedAt),
		})
	}
	return f
}

type farmsRepo struct {
	db dbtx
}

func (r *farmsRepo) GetFarmByID(ctx context.Context, id string) (domain.Farm, error) {
	var row farmRow
	err := sqlscan.Get(ctx, r.db, &row, `
		SELECT id, name, owner_id, location, created_at, updated_at
		FROM farms WHERE id = ?`, id)
	if err != nil {
		return domain.Farm{}, mapNotFound(err)
	}
	return r.withStaff(ctx, row)
}

func (r *farmsRepo) ListFarmsOwnedBy(ctx context.Context, userID string) ([]domain.Farm, error) {
	var rows []farmRow
	err := sqlscan.Select(ctx, r.db, &rows, `
		SELECT id, name, owner_id, location, created_at, updated_at
		FROM farms WHERE owner_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}

	farms := make([]domain.Farm, 0, len(rows))
	for _, row := range rows {
		f, err := r.withStaff(ctx, row)
		if err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	return farms, nil
}

func (r *farmsRepo) withStaff(ctx context.Context, row farmRow) (domain.Farm, error) {
	var staff []staffRow
	err := sqlscan.Select(ctx, r.db, &staff, `
		SELECT user_id, role, added_at
		FROM farm_staff WHERE farm_id = ?
		ORDER BY added_at, user_id`, row.ID)
	if err != nil {
		return domain.Farm{}, err
	}
	return mapFarm(row, staff), nil
}

func (r *farmsRepo) CreateFarm(ctx context.Context, f domain.Farm) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farms (id, name, owner_id, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.OwnerID, mapOptionalString(f.Location),
		toMillis(f.CreatedAt), toMillis(f.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *farmsRepo) UpdateFarmDetails(
	ctx context.Context,
	id, name string,
	location *string,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE farms SET name = ?, location = ?, updated_at = ?
		WHERE id = ?`,
		name, mapOptionalString(location), toMillis(at), id,
	)
	return requireOneRow(res, err)
}

func (r *farmsRepo) AddStaff(ctx context.Context, farmID string, e domain.StaffEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farm_staff (farm_id, user_id, role, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (farm_id, user_id) DO UPDATE SET role = excluded.role`,
		farmID, e.UserID, string(e.Role), toMillis(e.AddedAt),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.touch(ctx, farmID, e.AddedAt)
}

func (r *farmsRepo) RemoveStaff(ctx context.Context, farmID, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM farm_staff WHERE farm_id = ? AND user_id = ?`,
		farmID, userID,
	)
	if err := requireOneRow(res, err); err != nil {
		return err
	}
	return r.touch(ctx, farmID, at)
}

func (r *farmsRepo) RemoveStaffEverywhere(ctx context.Context, userID string, at time.Time) ([]string, error) {
	var farmIDs []string
	err := sqlscan.Select(ctx, r.db, &farmIDs, `
		DELETE FROM farm_staff WHERE user_id = ?
		RETURNING farm_id`, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range farmIDs {
		if err := r.touch(ctx, id, at); err != nil {
			return nil, err
		}
	}
	return farmIDs, nil
}

func (r *farmsRepo) touch(ctx context.Context, farmID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE farms SET updated_at = ? WHERE id = ?`, toMillis(at), farmID)
	return err
}

// requireOneRow maps a zero-row update or delete to store.ErrNotFound.
func requireOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
