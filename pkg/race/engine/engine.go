// Package engine runs a yut race session: teams, activities, turns,
// ranking and the session ledger.
//
// An Engine is not safe for concurrent use; hosts must serialize calls.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/race/draw"
	"github.com/mpapenbr/yutrace/pkg/race/ledger"
	"github.com/mpapenbr/yutrace/pkg/race/scorebook"
	"github.com/mpapenbr/yutrace/pkg/race/track"
)

type (
	Engine struct {
		rules         *model.Rules
		src           draw.Source
		draw          *draw.Draw
		track         *track.Track
		scores        *scorebook.ScoreBook
		ledger        *ledger.Ledger
		teams         roster
		order         []string // team ids in registration order
		clock         func() time.Time
		newID         func() string
		listeners     []Listener
		meterProvider metric.MeterProvider
		metrics       *metrics
		log           *log.Logger
	}
	// Listener is called with every entry appended to the ledger.
	Listener func(e model.Entry)
	Option   func(*Engine)

	roster map[string]*model.Team
)

func (r roster) Lookup(teamID string) (*model.Team, bool) {
	t, ok := r[teamID]
	return t, ok
}

func WithRules(rules *model.Rules) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithSource sets the entropy used by DrawThrow.
func WithSource(src draw.Source) Option {
	return func(e *Engine) {
		e.src = src
	}
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, l)
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meterProvider = mp
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func New(opts ...Option) (*Engine, error) {
	ret := &Engine{
		rules:         model.DefaultRules(),
		ledger:        ledger.New(),
		teams:         make(roster),
		order:         make([]string, 0),
		clock:         time.Now,
		newID:         newUUID,
		meterProvider: otel.GetMeterProvider(),
		log:           log.Default().Named("race.engine"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if err := ret.rules.Validate(); err != nil {
		return nil, err
	}
	if ret.src == nil {
		ret.src = draw.NewSeeded(0)
	}
	weights, err := ret.rules.Weights()
	if err != nil {
		return nil, err
	}
	if ret.draw, err = draw.New(ret.src, draw.WithWeights(weights)); err != nil {
		return nil, err
	}
	if ret.track, err = track.New(track.FromRules(ret.rules)...); err != nil {
		return nil, err
	}
	ret.scores = scorebook.New(ret.teams, ret.rules)
	ret.metrics = newMetrics(ret.meterProvider, ret.log)
	return ret, nil
}

func (e *Engine) Rules() model.Rules {
	return *e.rules
}

// AddTeam registers a team under a unique, trimmed name and returns its id.
func (e *Engine) AddTeam(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: team name must not be empty", model.ErrInvalidArgument)
	}
	if lo.ContainsBy(e.order, func(id string) bool { return e.teams[id].Name == name }) {
		return "", fmt.Errorf("%w: %s", model.ErrDuplicateTeam, name)
	}
	id := e.newID()
	if _, exists := e.teams[id]; exists || id == "" {
		return "", fmt.Errorf("%w: id generator returned unusable id %q",
			model.ErrInvalidArgument, id)
	}
	team := &model.Team{ID: id, Name: name}
	e.teams[id] = team
	e.order = append(e.order, id)
	e.record(model.Entry{
		At:     e.clock(),
		Kind:   model.EntryTeam,
		TeamID: id,
		Text:   teamText(team),
	})
	e.log.Debug("team added", log.String("id", id), log.String("name", name))
	return id, nil
}

// Team returns a copy of the team state.
func (e *Engine) Team(teamID string) (model.Team, error) {
	t, ok := e.teams[teamID]
	if !ok {
		return model.Team{}, fmt.Errorf("%w: %s", model.ErrTeamNotFound, teamID)
	}
	return *t, nil
}

// Teams returns copies of all teams in registration order.
func (e *Engine) Teams() []model.Team {
	return lo.Map(e.order, func(id string, _ int) model.Team { return *e.teams[id] })
}

// RecordActivity scores an activity for a team and books it to the ledger.
func (e *Engine) RecordActivity(
	teamID string,
	a scorebook.Activity,
) (*model.ActivityRecord, error) {
	rec, err := e.scores.Prepare(teamID, a)
	if err != nil {
		return nil, err
	}
	rec.Seq = e.ledger.NextSeq()
	rec.At = e.clock()
	if err := e.scores.Apply(rec); err != nil {
		return nil, err
	}
	team := e.teams[teamID]
	e.record(model.Entry{
		At:       rec.At,
		Kind:     model.EntryActivity,
		TeamID:   teamID,
		Text:     activityText(team, rec),
		Activity: rec,
	})
	e.metrics.activity(rec)
	e.log.Debug("activity recorded",
		log.String("team", team.Name),
		log.Int("delta", rec.Delta),
		log.Int("score", team.Score),
		log.Int("throwsGained", rec.ThrowsGained))
	ret := *rec
	return &ret, nil
}

// DrawThrow draws an outcome from the configured source. It does not change
// any session state.
func (e *Engine) DrawThrow() model.Outcome {
	return e.draw.Throw()
}

// TakeTurn moves a team by the given outcome.
// With useBonus the turn consumes one of the team's bonus throws.
func (e *Engine) TakeTurn(
	teamID string,
	outcome model.Outcome,
	useBonus bool,
) (*model.TurnResult, error) {
	team, ok := e.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrTeamNotFound, teamID)
	}
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: no outcome supplied for %s", model.ErrNoThrowAvailable, team.Name)
	}
	if team.Finished {
		return nil, fmt.Errorf("%w: %s", model.ErrTeamFinished, team.Name)
	}
	if useBonus && team.BonusThrows <= 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrNoBonusThrows, team.Name)
	}

	move := e.track.Advance(team.Position, outcome.Distance())
	res := &model.TurnResult{
		Seq:        e.ledger.NextSeq(),
		At:         e.clock(),
		TeamID:     teamID,
		Outcome:    outcome,
		UsedBonus:  useBonus,
		From:       move.From,
		Landed:     move.Landed,
		To:         move.To,
		Capture:    move.Capture,
		Finished:   move.Finished,
		ExtraThrow: outcome.GrantsExtraThrow() && !move.Finished,
	}
	if useBonus {
		team.BonusThrows--
	}
	team.Position = move.To
	switch {
	case move.Finished:
		e.finish(team, res)
	case e.rules.CaptureRule == model.CaptureCollision:
		e.captureOpponents(team, res)
	}

	e.record(model.Entry{
		At:     res.At,
		Kind:   model.EntryTurn,
		TeamID: teamID,
		Text:   e.turnText(team, res),
		Turn:   res,
	})
	e.metrics.turn(res)
	e.log.Debug("turn taken",
		log.String("team", team.Name),
		log.String("outcome", outcome.String()),
		log.Int("from", res.From),
		log.Int("to", res.To),
		log.Bool("bonus", useBonus),
		log.String("state", string(res.State())))

	ret := model.Entry{Turn: res}.Clone()
	return ret.Turn, nil
}

func (e *Engine) finish(team *model.Team, res *model.TurnResult) {
	team.Finished = true
	team.FinishRank = lo.CountBy(e.order, func(id string) bool {
		return e.teams[id].Finished
	})
	team.FinishedAt = res.At
	res.PointsAwarded += e.rules.FinishBonusPoints
	res.ThrowsGained += e.scores.Award(team, e.rules.FinishBonusPoints)
	e.log.Info("team finished",
		log.String("team", team.Name),
		log.Int("rank", team.FinishRank))
}

// captureOpponents sends unfinished opponents sharing the actor's cell back
// to the checkpoint at or below that cell. The start cell is never contested.
func (e *Engine) captureOpponents(actor *model.Team, res *model.TurnResult) {
	if actor.Position <= 0 {
		return
	}
	for _, id := range e.order {
		other := e.teams[id]
		if id == actor.ID || other.Finished || other.Position != actor.Position {
			continue
		}
		to := e.track.RetreatCell(other.Position)
		res.Captured = append(res.Captured, model.Capture{
			TeamID: id,
			From:   other.Position,
			To:     to,
		})
		other.Position = to
	}
	if len(res.Captured) == 0 {
		return
	}
	points := e.rules.CaptureBonusPoints * len(res.Captured)
	res.PointsAwarded += points
	res.ThrowsGained += e.scores.Award(actor, points)
}

// RecentLog returns up to n ledger entries, most recent first.
func (e *Engine) RecentLog(n int) ([]model.Entry, error) {
	return e.ledger.Recent(n)
}

// Log returns the whole ledger in append order.
func (e *Engine) Log() []model.Entry {
	return e.ledger.All()
}

// Reset clears all teams and the ledger.
func (e *Engine) Reset() {
	e.teams = make(roster)
	e.order = make([]string, 0)
	e.scores = scorebook.New(e.teams, e.rules)
	e.ledger.Reset()
	e.log.Info("session reset")
}

func (e *Engine) record(entry model.Entry) {
	stored, err := e.ledger.Append(entry)
	if err != nil {
		// only explicit sequence numbers can be rejected
		e.log.Error("could not append ledger entry", log.ErrorField(err))
		return
	}
	for _, l := range e.listeners {
		l(stored)
	}
}
