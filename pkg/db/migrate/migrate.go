package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/mpapenbr/yutrace/log"
)

//go:embed migrations
var migrations embed.FS

// MigrateDb applies the embedded migrations.
func MigrateDb(dbURI string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, pgxURL(dbURI))
	if err != nil {
		return err
	}
	return up(m)
}

// MigrateFromSource applies migrations from a golang-migrate source url,
// e.g. file:///migrations
func MigrateFromSource(sourceURL, dbURI string) error {
	m, err := migrate.New(sourceURL, pgxURL(dbURI))
	if err != nil {
		return err
	}
	return up(m)
}

func up(m *migrate.Migrate) error {
	defer m.Close()
	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No Migration required")
		return nil
	}
	if err != nil {
		return err
	}
	if v, dirty, verr := m.Version(); verr == nil {
		log.Info("Migration done", log.Uint("version", v), log.Bool("dirty", dirty))
	}
	return nil
}

func pgxURL(dbURI string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURI, prefix)
		}
	}
	return dbURI
}
