package db

import (
	"context"
	"errors"
	"fmt"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/localtime"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ApplyMigrations brings the schema at connString up to date with the
// migrations found at sourceURL (e.g. "file://migrations").
func ApplyMigrations(sourceURL string, connString string) error {
	m, err := migrate.New(sourceURL, connString)
	if err != nil {
		return fmt.Errorf("could not connect to DB for applying migrations: %w", err)
	}
	defer m.Close()
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply DB migrations: %w", err)
	}
	return nil
}

func EncodeDate(d c.Optional[localtime.Date]) pgtype.Date {
	if !d.IsPresent {
		return pgtype.Date{Status: pgtype.Null}
	}
	return pgtype.Date{Time: d.Value.Time(), Status: pgtype.Present}
}

func DecodeDate(d pgtype.Date) c.Optional[localtime.Date] {
	if d.Status != pgtype.Present {
		return c.None[localtime.Date]()
	}
	return c.Some(localtime.DateOf(d.Time))
}

func EncodeTime(t c.Optional[time.Time]) pgtype.Timestamptz {
	if !t.IsPresent {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: t.Value, Status: pgtype.Present}
}

func DecodeTime(t pgtype.Timestamptz) c.Optional[time.Time] {
	if t.Status != pgtype.Present {
		return c.None[time.Time]()
	}
	return c.Some(t.Time.UTC())
}

func EncodeText(s c.Optional[string]) pgtype.Text {
	if !s.IsPresent {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: s.Value, Status: pgtype.Present}
}

func DecodeText(s pgtype.Text) c.Optional[string] {
	if s.Status != pgtype.Present {
		return c.None[string]()
	}
	return c.Some(s.String)
}
