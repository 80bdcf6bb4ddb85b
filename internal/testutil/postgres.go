package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/infrastructure/database/migrations"
)

var errMissingDSN = errors.New("missing TEST_DATABASE_URL")

var (
	poolOnce sync.Once
	pool     *pgxpool.Pool
	poolErr  error
)

// Pool returns a migrated test database, or skips the test when
// TEST_DATABASE_URL is not set.
func Pool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	poolOnce.Do(func() {
		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			poolErr = errMissingDSN
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sqlDB, err := migrations.Open(dsn)
		if err != nil {
			poolErr = err
			return
		}
		defer sqlDB.Close()

		if err := migrations.Up(ctx, sqlDB); err != nil {
			poolErr = err
			return
		}

		pool, poolErr = pgxpool.New(ctx, dsn)
	})

	if errors.Is(poolErr, errMissingDSN) {
		tb.Skip("set TEST_DATABASE_URL to run postgres integration tests")
	}
	if poolErr != nil {
		tb.Fatalf("failed to init test db: %v", poolErr)
	}

	Truncate(tb, pool)
	return pool
}

// Truncate empties every table
func Truncate(tb testing.TB, p *pgxpool.Pool) {
	tb.Helper()
	if _, err := p.Exec(context.Background(), `TRUNCATE books, authors, users RESTART IDENTITY CASCADE`); err != nil {
		tb.Fatalf("truncate: %v", err)
	}
}
