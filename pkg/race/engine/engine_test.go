//nolint:funlen,dupl // ok for tests
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/race/scorebook"
)

var start = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func testOptions() []Option {
	now := start
	ids := 0
	return []Option{
		WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("team-%d", ids)
		}),
		WithSource(rand.New(rand.NewSource(1))),
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(append(testOptions(), opts...)...)
	require.NoError(t, err)
	return e
}

func addTeams(t *testing.T, e *Engine, names ...string) []string {
	t.Helper()
	ret := make([]string, 0, len(names))
	for _, n := range names {
		id, err := e.AddTeam(n)
		require.NoError(t, err)
		ret = append(ret, id)
	}
	return ret
}

// place moves a team to the given cell via snapshot/restore.
func place(t *testing.T, e *Engine, teamID string, pos int) {
	t.Helper()
	snap := e.Snapshot()
	for i := range snap.Teams {
		if snap.Teams[i].ID == teamID {
			snap.Teams[i].Position = pos
		}
	}
	require.NoError(t, e.Restore(snap))
}

func TestAddTeam(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.AddTeam("  Red  ")
	require.NoError(t, err)
	assert.Equal(t, "team-1", id)

	team, err := e.Team(id)
	require.NoError(t, err)
	assert.Equal(t, model.Team{ID: "team-1", Name: "Red"}, team)

	_, err = e.AddTeam("Red")
	assert.ErrorIs(t, err, model.ErrDuplicateTeam)
	_, err = e.AddTeam("   ")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	entries := e.Log()
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryTeam, entries[0].Kind)
	assert.Equal(t, "team registered: Red", entries[0].Text)
}

func TestAddTeamRejectsDuplicateID(t *testing.T) {
	e := newTestEngine(t, WithIDGenerator(func() string { return "same" }))
	addTeams(t, e, "Red")
	_, err := e.AddTeam("Blue")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Len(t, e.Teams(), 1)
}

func TestRecordActivity(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")

	rec, err := e.RecordActivity(ids[0], scorebook.Activity{
		Title: "quiz", Base: 10, Difficulty: model.Hard, Participants: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, rec.Delta)
	assert.Equal(t, 1, rec.ThrowsGained)
	assert.Equal(t, 2, rec.Seq)

	team, _ := e.Team(ids[0])
	assert.Equal(t, 60, team.Score)
	assert.Equal(t, 1, team.BonusThrows)
	assert.Equal(t, 1, team.Missions)

	recent, err := e.RecentLog(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.EntryActivity, recent[0].Kind)
	assert.Equal(t, rec, recent[0].Activity)
	assert.Equal(t,
		"Red [quiz]: activity +60 (difficulty hard, participants 4), bonus throws +1",
		recent[0].Text)
}

func TestRecordActivityRejectedLeavesState(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")
	before := e.Snapshot()

	_, err := e.RecordActivity("nope", scorebook.Activity{Difficulty: model.Easy})
	assert.ErrorIs(t, err, model.ErrTeamNotFound)
	_, err = e.RecordActivity(ids[0], scorebook.Activity{Difficulty: model.Easy, Participants: -2})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	assert.Empty(t, cmp.Diff(before, e.Snapshot()))
}

func TestBonusThrowsInvariant(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red", "Blue")
	rng := rand.New(rand.NewSource(42))
	diffs := []model.Difficulty{model.Easy, model.Medium, model.Hard}
	for i := 0; i < 200; i++ {
		id := ids[rng.Intn(len(ids))]
		_, err := e.RecordActivity(id, scorebook.Activity{
			Base:         rng.Intn(60),
			Difficulty:   diffs[rng.Intn(len(diffs))],
			Participants: rng.Intn(8),
		})
		require.NoError(t, err)
		for _, team := range e.Teams() {
			require.Equal(t, team.Score/40, team.BonusThrows)
		}
	}
}

func TestTakeTurnCheckpointRetreat(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		outcome     model.Outcome
		wantLanded  int
		wantTo      int
		wantCapture *model.Capture
	}{
		{"20 back to 10", 15, model.Mo, 20, 10, &model.Capture{From: 20, To: 10}},
		{"30 back to 20", 26, model.Yut, 30, 20, &model.Capture{From: 30, To: 20}},
		{"40 back to 30", 37, model.Geol, 40, 30, &model.Capture{From: 40, To: 30}},
		{"10 stays", 8, model.Gae, 10, 10, nil},
		{"backdo at start", 0, model.BackDo, 0, 0, nil},
		{"plain", 11, model.Do, 12, 12, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			ids := addTeams(t, e, "Red")
			place(t, e, ids[0], tt.start)

			res, err := e.TakeTurn(ids[0], tt.outcome, false)
			require.NoError(t, err)
			assert.Equal(t, tt.start, res.From)
			assert.Equal(t, tt.wantLanded, res.Landed)
			assert.Equal(t, tt.wantTo, res.To)
			assert.Equal(t, tt.wantCapture, res.Capture)
			assert.False(t, res.Finished)

			team, _ := e.Team(ids[0])
			assert.Equal(t, tt.wantTo, team.Position)
		})
	}
}

func TestTakeTurnErrors(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")
	before := e.Snapshot()

	_, err := e.TakeTurn("nope", model.Do, false)
	assert.ErrorIs(t, err, model.ErrTeamNotFound)
	_, err = e.TakeTurn(ids[0], model.OutcomeUnspecified, false)
	assert.ErrorIs(t, err, model.ErrNoThrowAvailable)
	_, err = e.TakeTurn(ids[0], model.Outcome(99), false)
	assert.ErrorIs(t, err, model.ErrNoThrowAvailable)
	_, err = e.TakeTurn(ids[0], model.Do, true)
	assert.ErrorIs(t, err, model.ErrNoBonusThrows)

	assert.Empty(t, cmp.Diff(before, e.Snapshot()))
}

func TestTakeTurnBonus(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")
	_, err := e.RecordActivity(ids[0], scorebook.Activity{Base: 60, Difficulty: model.Hard})
	require.NoError(t, err)
	team, _ := e.Team(ids[0])
	require.Equal(t, 2, team.BonusThrows)

	res, err := e.TakeTurn(ids[0], model.Gae, true)
	require.NoError(t, err)
	assert.True(t, res.UsedBonus)

	// baseline turns do not touch the bonus pool
	_, err = e.TakeTurn(ids[0], model.Gae, false)
	require.NoError(t, err)

	team, _ = e.Team(ids[0])
	assert.Equal(t, 1, team.BonusThrows)
	assert.Equal(t, 2, team.ThrowsGranted)
	assert.Equal(t, 4, team.Position)
}

func TestTakeTurnExtraThrow(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")
	res, err := e.TakeTurn(ids[0], model.Yut, false)
	require.NoError(t, err)
	assert.True(t, res.ExtraThrow)

	res, err = e.TakeTurn(ids[0], model.Geol, false)
	require.NoError(t, err)
	assert.False(t, res.ExtraThrow)
}

func TestTakeTurnFinish(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red", "Blue")
	place(t, e, ids[0], 48)
	place(t, e, ids[1], 46)

	res, err := e.TakeTurn(ids[0], model.Mo, false)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, 49, res.To)
	assert.False(t, res.ExtraThrow)
	assert.Equal(t, 50, res.PointsAwarded)
	assert.Equal(t, 1, res.ThrowsGained)
	assert.Equal(t, model.TurnFinished, res.State())

	red, _ := e.Team(ids[0])
	assert.True(t, red.Finished)
	assert.Equal(t, 1, red.FinishRank)
	assert.Equal(t, 50, red.Score)
	assert.Equal(t, 1, red.BonusThrows)
	assert.False(t, red.FinishedAt.IsZero())

	_, err = e.TakeTurn(ids[0], model.Do, false)
	assert.ErrorIs(t, err, model.ErrTeamFinished)

	_, err = e.TakeTurn(ids[1], model.Yut, false)
	require.NoError(t, err)
	blue, _ := e.Team(ids[1])
	assert.Equal(t, 2, blue.FinishRank)
}

func TestCollisionCapture(t *testing.T) {
	rules := model.DefaultRules()
	rules.CaptureRule = model.CaptureCollision
	e := newTestEngine(t, WithRules(rules))
	ids := addTeams(t, e, "Red", "Blue", "Green")
	place(t, e, ids[0], 23)
	place(t, e, ids[1], 25)
	place(t, e, ids[2], 25)

	res, err := e.TakeTurn(ids[0], model.Gae, false)
	require.NoError(t, err)
	assert.Nil(t, res.Capture)
	assert.Equal(t, []model.Capture{
		{TeamID: ids[1], From: 25, To: 20},
		{TeamID: ids[2], From: 25, To: 20},
	}, res.Captured)
	assert.Equal(t, 60, res.PointsAwarded)
	assert.Equal(t, 1, res.ThrowsGained)

	red, _ := e.Team(ids[0])
	blue, _ := e.Team(ids[1])
	assert.Equal(t, 25, red.Position)
	assert.Equal(t, 60, red.Score)
	assert.Equal(t, 20, blue.Position)

	// landing on a checkpoint is not a retreat in collision mode
	res, err = e.TakeTurn(ids[1], model.Gae, false)
	require.NoError(t, err)
	assert.Equal(t, 22, res.To)
	place(t, e, ids[2], 8)
	res, err = e.TakeTurn(ids[2], model.Gae, false)
	require.NoError(t, err)
	assert.Equal(t, 10, res.To)
	assert.Nil(t, res.Capture)
}

func TestCollisionIgnoresStart(t *testing.T) {
	rules := model.DefaultRules()
	rules.CaptureRule = model.CaptureCollision
	e := newTestEngine(t, WithRules(rules))
	ids := addTeams(t, e, "Red", "Blue")
	place(t, e, ids[0], 0)

	res, err := e.TakeTurn(ids[0], model.BackDo, false)
	require.NoError(t, err)
	assert.Empty(t, res.Captured)
}

func TestRanking(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Delta", "Alpha", "Bravo", "Charlie")
	place(t, e, ids[0], 47) // Delta finishes first
	_, err := e.TakeTurn(ids[0], model.Gae, false)
	require.NoError(t, err)

	place(t, e, ids[1], 12)
	place(t, e, ids[2], 12)
	place(t, e, ids[3], 30)
	_, err = e.RecordActivity(ids[2], scorebook.Activity{Base: 5, Difficulty: model.Easy})
	require.NoError(t, err)

	ranking := e.Ranking()
	names := make([]string, 0, len(ranking))
	for _, s := range ranking {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Delta", "Charlie", "Bravo", "Alpha"}, names)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.True(t, ranking[0].Finished)
	assert.Equal(t, 4, ranking[3].Rank)
}

func TestRankingTieBreakByName(t *testing.T) {
	e := newTestEngine(t)
	addTeams(t, e, "Zulu", "Echo")
	ranking := e.Ranking()
	assert.Equal(t, "Echo", ranking[0].Name)
	assert.Equal(t, "Zulu", ranking[1].Name)
}

func TestReset(t *testing.T) {
	e := newTestEngine(t)
	ids := addTeams(t, e, "Red")
	_, err := e.RecordActivity(ids[0], scorebook.Activity{Base: 10, Difficulty: model.Easy})
	require.NoError(t, err)

	e.Reset()
	assert.Empty(t, e.Ranking())
	recent, err := e.RecentLog(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	_, err = e.Team(ids[0])
	assert.ErrorIs(t, err, model.ErrTeamNotFound)

	_, err = e.AddTeam("Red")
	require.NoError(t, err)
}

func TestRecentLogNegative(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.RecentLog(-1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func playSome(t *testing.T, e *Engine) []string {
	t.Helper()
	ids := addTeams(t, e, "Red", "Blue")
	_, err := e.RecordActivity(ids[0], scorebook.Activity{Base: 30, Difficulty: model.Hard, Participants: 3})
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err := e.TakeTurn(ids[i%2], e.DrawThrow(), false)
		require.NoError(t, err)
	}
	_, err = e.TakeTurn(ids[0], model.Geol, true)
	require.NoError(t, err)
	return ids
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	playSome(t, e)
	snap := e.Snapshot()
	want, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded model.Snapshot
	require.NoError(t, json.Unmarshal(want, &decoded))

	restored := newTestEngine(t)
	require.NoError(t, restored.Restore(&decoded))
	got, err := json.Marshal(restored.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, string(want), string(got))
	assert.Equal(t, e.Ranking(), restored.Ranking())
}

func TestSnapshotIsDetached(t *testing.T) {
	e := newTestEngine(t)
	playSome(t, e)
	before := e.Log()
	snap := e.Snapshot()
	snap.Teams[0].Score = 9999
	for i := range snap.Ledger {
		if snap.Ledger[i].Turn != nil {
			snap.Ledger[i].Turn.To = -1
		}
	}
	assert.Empty(t, cmp.Diff(before, e.Log()))
	team, _ := e.Team(snap.Teams[0].ID)
	assert.NotEqual(t, 9999, team.Score)
}

func TestRestoreRejects(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *model.Snapshot)
		wantErr error
	}{
		{"major version", func(s *model.Snapshot) { s.Version = "v2.0.0" }, model.ErrIncompatibleSnapshot},
		{"no version", func(s *model.Snapshot) { s.Version = "" }, model.ErrIncompatibleSnapshot},
		{"duplicate name", func(s *model.Snapshot) { s.Teams[1].Name = s.Teams[0].Name }, model.ErrInvalidArgument},
		{"off track", func(s *model.Snapshot) { s.Teams[0].Position = 50 }, model.ErrInvalidArgument},
		{"throws mismatch", func(s *model.Snapshot) { s.Teams[0].ThrowsGranted += 3 }, model.ErrInvalidArgument},
		{"ledger order", func(s *model.Snapshot) { s.NextSeq = 1 }, model.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			playSome(t, e)
			before := e.Snapshot()

			snap := e.Snapshot()
			tt.modify(snap)
			assert.ErrorIs(t, e.Restore(snap), tt.wantErr)
			assert.Empty(t, cmp.Diff(before, e.Snapshot()))
		})
	}
	e := newTestEngine(t)
	assert.ErrorIs(t, e.Restore(nil), model.ErrInvalidArgument)
}

func TestRestoreAcceptsMinorVersion(t *testing.T) {
	e := newTestEngine(t)
	playSome(t, e)
	snap := e.Snapshot()
	snap.Version = "v1.3.0"
	require.NoError(t, e.Restore(snap))
}

func TestListener(t *testing.T) {
	var got []model.Entry
	e := newTestEngine(t, WithListener(func(entry model.Entry) { got = append(got, entry) }))
	ids := addTeams(t, e, "Red")
	_, err := e.TakeTurn(ids[0], model.Do, false)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, model.EntryTeam, got[0].Kind)
	assert.Equal(t, model.EntryTurn, got[1].Kind)
	assert.Equal(t, 2, got[1].Seq)
	assert.Equal(t, "Red: do (+1) 0 -> 1", got[1].Text)
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	e := newTestEngine(t, WithMeterProvider(mp))
	ids := addTeams(t, e, "Red")
	place(t, e, ids[0], 15)
	_, err := e.TakeTurn(ids[0], model.Mo, false)
	require.NoError(t, err)
	_, err = e.TakeTurn(ids[0], model.Do, false)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["yutrace.engine.turns"])
	assert.Equal(t, int64(1), sums["yutrace.engine.captures"])
}

func TestNewRejectsInvalidRules(t *testing.T) {
	rules := model.DefaultRules()
	rules.ScorePerThrow = 0
	_, err := New(WithRules(rules))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
