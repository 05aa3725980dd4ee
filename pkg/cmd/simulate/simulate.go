package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/cmd/util"
	"github.com/mpapenbr/yutrace/pkg/config"
	natspub "github.com/mpapenbr/yutrace/pkg/notify/nats"
	"github.com/mpapenbr/yutrace/pkg/race/draw"
	"github.com/mpapenbr/yutrace/pkg/race/engine"
	"github.com/mpapenbr/yutrace/pkg/race/simulation"
	snapshotrepos "github.com/mpapenbr/yutrace/pkg/repository/snapshot"
)

var (
	save           bool
	activityChance int
)

func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "plays a seeded session automatically and prints the ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVarP(&config.Teams,
		"team",
		"t",
		[]string{"Red", "Blue", "Green"},
		"team names (repeat or comma separated)")
	cmd.Flags().Int64Var(&config.Seed,
		"seed",
		0,
		"seed for throws and activities (0: time based)")
	cmd.Flags().IntVar(&config.Rounds,
		"rounds",
		20,
		"maximum number of rounds")
	cmd.Flags().IntVar(&activityChance,
		"activity-chance",
		50,
		"percent of team rounds with an activity")
	cmd.Flags().StringVar(&config.RulesFile,
		"rules",
		"",
		"yaml file with game rules")
	cmd.Flags().StringVar(&config.SessionName,
		"session",
		"default",
		"session name used for storage and NATS subjects")
	cmd.Flags().BoolVar(&save,
		"save",
		false,
		"store the final snapshot in the database")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"publish ledger entries to this NATS server")
	cmd.Flags().IntVar(&config.RecentLimit,
		"recent",
		10,
		"number of ledger entries to print")
	return cmd
}

//nolint:funlen,cyclop // by design
func runSimulation(ctx context.Context, out io.Writer) error {
	util.SetupLogger()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	telemetry := util.SetupTelemetry(ctx)
	if telemetry != nil {
		defer telemetry.Shutdown()
	}

	rules, err := config.LoadRules(config.RulesFile)
	if err != nil {
		return err
	}
	opts := []engine.Option{
		engine.WithRules(rules),
		engine.WithSource(draw.NewSeeded(config.Seed)),
	}

	var publisher *natspub.Publisher
	if config.NatsURL != "" {
		conn, err := natspub.Connect(config.NatsURL, log.Default().Named("nats"))
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer conn.Close()
		pubOpts := []natspub.Option{natspub.WithContext(ctx)}
		if kv, err := natspub.SetupKV(ctx, conn); err == nil {
			pubOpts = append(pubOpts, natspub.WithKeyValue(kv))
		} else {
			log.Warn("jetstream not available, standings are not stored", log.ErrorField(err))
		}
		if publisher, err = natspub.NewPublisher(conn, config.SessionName, pubOpts...); err != nil {
			return err
		}
		opts = append(opts, engine.WithListener(publisher.Listener()))
	}

	e, err := engine.New(opts...)
	if err != nil {
		return err
	}
	for _, name := range config.Teams {
		if _, err := e.AddTeam(name); err != nil {
			return err
		}
	}

	activitySeed := config.Seed
	if activitySeed != 0 {
		activitySeed++
	}
	simOpts := []simulation.Option{
		simulation.WithRounds(config.Rounds),
		simulation.WithActivityChance(activityChance),
	}
	if publisher != nil {
		simOpts = append(simOpts, simulation.WithAfterRound(func(round int) {
			if err := publisher.PublishRanking(e.Ranking()); err != nil {
				log.Warn("could not store standings", log.Int("round", round), log.ErrorField(err))
			}
		}))
	}
	sim, err := simulation.New(e, draw.NewSeeded(activitySeed), simOpts...)
	if err != nil {
		return err
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("simulation done",
		log.Int("rounds", res.Rounds),
		log.Int("turns", res.Turns))

	if save {
		if err := saveSnapshot(ctx, e, telemetry != nil); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "session %s after %d rounds\n\n", config.SessionName, res.Rounds)
	if err := util.PrintRanking(out, res.Ranking); err != nil {
		return err
	}
	recent, err := e.RecentLog(config.RecentLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return util.PrintLog(out, recent)
}

func saveSnapshot(ctx context.Context, e *engine.Engine, withOtel bool) error {
	pool, err := util.OpenDB(ctx, withOtel)
	if err != nil {
		return err
	}
	defer pool.Close()
	id, err := snapshotrepos.Save(ctx, pool, config.SessionName, e.Snapshot())
	if err != nil {
		return err
	}
	log.Info("snapshot saved",
		log.String("session", config.SessionName),
		log.String("id", id.String()))
	return nil
}
