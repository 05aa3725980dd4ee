package migrate

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/cmd/util"
	"github.com/mpapenbr/yutrace/pkg/config"
	"github.com/mpapenbr/yutrace/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migrationSourceUrl",
		"m",
		"",
		"url to migration files (default: migrations embedded in the binary)")

	return cmd
}

func startMigration() error {
	util.SetupLogger()
	if err := util.WaitForDB(); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}
	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		return migrate.MigrateDb(prepareURLForDB(config.DB))
	}
	log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
	return migrate.MigrateFromSource(config.MigrationSourceURL, prepareURLForDB(config.DB))
}
