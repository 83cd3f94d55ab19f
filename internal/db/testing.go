package db

import (
	"context"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
)

func CreateTestPool() *pgxpool.Pool {
	connString := os.Getenv("TEST_POSTGRESQL_URL")
	if connString == "" {
		panic("TEST_POSTGRESQL_URL must be set.")
	}
	migrationsPath := os.Getenv("TEST_MIGRATIONS_PATH")
	if migrationsPath == "" {
		panic("TEST_MIGRATIONS_PATH must be set.")
	}
	if err := ApplyMigrations("file://"+migrationsPath, connString); err != nil {
		panic(err)
	}

	pool, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		panic("Could not connect to the database.")
	}
	return pool
}

// SkipWithoutDB reports whether DB-backed tests should be skipped.
func SkipWithoutDB() bool {
	return os.Getenv("TEST_POSTGRESQL_URL") == "" || os.Getenv("TEST_MIGRATIONS_PATH") == ""
}

func TruncateTables(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), `TRUNCATE "user" CASCADE`)
	if err != nil {
		panic("Could not truncate DB tables.")
	}
}
