package user

import (
	"context"
	"errors"
	"medbot/internal/core/domain/user"
	"medbot/internal/db"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const userColumns = `id, timezone, created_at`

type PgxUserRepository struct {
	db db.DBTX
}

func NewPgxRepository(conn db.DBTX) *PgxUserRepository {
	if conn == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUserRepository{db: conn}
}

func (r *PgxUserRepository) GetByID(ctx context.Context, id user.ID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, int64(id))
	return scanUser(row)
}

func (r *PgxUserRepository) Ensure(ctx context.Context, input user.EnsureInput) (user.User, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (id, created_at) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING `+userColumns,
		int64(input.ID),
		input.CreatedAt,
	)
	return scanUser(row)
}

func (r *PgxUserRepository) SetTimezone(ctx context.Context, id user.ID, timezone string) (user.User, error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user" SET timezone = $2 WHERE id = $1 RETURNING `+userColumns,
		int64(id),
		timezone,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		id       int64
		timezone pgtype.Text
	)
	err = row.Scan(&id, &timezone, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	u.ID = user.ID(id)
	u.Timezone = db.DecodeText(timezone)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
