//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/yutrace/pkg/db/migrate"
	database "github.com/mpapenbr/yutrace/pkg/db/postgres"
)

// create a pg connection pool for the yutrace testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("yutrace-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())
	return setupPool(dbURL)
}

// SetupExternalTestDb uses the database given by TESTDB_URL instead of a container.
func SetupExternalTestDb() *pgxpool.Pool {
	return setupPool(os.Getenv("TESTDB_URL"))
}

func setupPool(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(context.Background(), dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearSnapshotTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from session_snapshot")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearSnapshotTable(pool)
}
