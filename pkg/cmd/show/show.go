package show

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/cmd/util"
	"github.com/mpapenbr/yutrace/pkg/config"
	"github.com/mpapenbr/yutrace/pkg/race/engine"
	snapshotrepos "github.com/mpapenbr/yutrace/pkg/repository/snapshot"
)

var listOnly bool

func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "shows ranking and recent ledger of a stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return showSession(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&config.SessionName,
		"session",
		"default",
		"name of the stored session")
	cmd.Flags().IntVar(&config.RecentLimit,
		"recent",
		10,
		"number of ledger entries to print")
	cmd.Flags().BoolVar(&listOnly,
		"list",
		false,
		"only list the names of stored sessions")
	cmd.Flags().StringVar(&config.RulesFile,
		"rules",
		"",
		"yaml file with game rules the session was played with")
	return cmd
}

func showSession(ctx context.Context, out io.Writer) error {
	util.SetupLogger()
	telemetry := util.SetupTelemetry(ctx)
	if telemetry != nil {
		defer telemetry.Shutdown()
	}
	pool, err := util.OpenDB(ctx, telemetry != nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	if listOnly {
		names, err := snapshotrepos.ListNames(ctx, pool)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	}

	stored, err := snapshotrepos.LoadByName(ctx, pool, config.SessionName)
	if err != nil {
		return err
	}
	rules, err := config.LoadRules(config.RulesFile)
	if err != nil {
		return err
	}
	e, err := engine.New(engine.WithRules(rules))
	if err != nil {
		return err
	}
	if err := e.Restore(stored.Snapshot); err != nil {
		return err
	}
	log.Debug("session loaded",
		log.String("id", stored.ID.String()),
		log.Time("updated", stored.UpdatedAt))

	fmt.Fprintf(out, "session %s (saved %s)\n\n",
		stored.Name, stored.UpdatedAt.Format("2006-01-02 15:04:05"))
	if err := util.PrintRanking(out, e.Ranking()); err != nil {
		return err
	}
	recent, err := e.RecentLog(config.RecentLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return util.PrintLog(out, recent)
}
