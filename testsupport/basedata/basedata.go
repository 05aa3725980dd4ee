package basedata

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/race/draw"
	"github.com/mpapenbr/yutrace/pkg/race/engine"
	"github.com/mpapenbr/yutrace/pkg/race/scorebook"
	snapshotrepos "github.com/mpapenbr/yutrace/pkg/repository/snapshot"
)

func TestTime() time.Time {
	return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
}

// SampleEngine returns an engine with two teams and a few recorded actions.
// The result only depends on seed.
func SampleEngine(seed int64) *engine.Engine {
	now := TestTime()
	ids := 0
	e, err := engine.New(
		engine.WithSource(draw.NewSeeded(seed)),
		engine.WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
		engine.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("team-%d", ids)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	red, _ := e.AddTeam("Red")
	blue, _ := e.AddTeam("Blue")
	if _, err := e.RecordActivity(red, scorebook.Activity{
		Title: "relay", Base: 10, Difficulty: model.Medium, Participants: 4,
	}); err != nil {
		log.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		team := red
		if i%2 == 1 {
			team = blue
		}
		if _, err := e.TakeTurn(team, e.DrawThrow(), false); err != nil {
			log.Fatal(err)
		}
	}
	return e
}

func SampleSnapshot() *model.Snapshot {
	return SampleEngine(1).Snapshot()
}

// CreateSampleSnapshot stores SampleSnapshot under name.
func CreateSampleSnapshot(pool *pgxpool.Pool, name string) *model.Snapshot {
	snap := SampleSnapshot()
	err := pgx.BeginFunc(context.Background(), pool, func(tx pgx.Tx) error {
		_, err := snapshotrepos.Save(context.Background(), tx, name, snap)
		return err
	})
	if err != nil {
		log.Fatalf("CreateSampleSnapshot: %v\n", err)
	}
	return snap
}
