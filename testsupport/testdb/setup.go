package testdb

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/mpapenbr/yutrace/testsupport/tcpostgres"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
)

// InitTestDb returns a migrated pool with empty tables. The pool is shared by
// all tests of a package.
func InitTestDb() *pgxpool.Pool {
	poolOnce.Do(func() {
		if os.Getenv("TESTDB_URL") != "" {
			pool = tcpg.SetupExternalTestDb()
		} else {
			pool = tcpg.SetupTestDb()
		}
	})
	if err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(), "delete from session_snapshot")
		return err
	}); err != nil {
		log.Fatalf("initTestDb: %v\n", err)
	}
	return pool
}
