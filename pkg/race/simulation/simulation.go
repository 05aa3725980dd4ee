// Package simulation plays a session automatically: every round each team may
// complete an activity, takes its regular turn and spends its bonus throws.
package simulation

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/race/draw"
	"github.com/mpapenbr/yutrace/pkg/race/engine"
	"github.com/mpapenbr/yutrace/pkg/race/scorebook"
)

var defaultTitles = []string{
	"relay", "quiz", "tug of war", "treasure hunt", "sack race", "puzzle",
}

type (
	Simulation struct {
		engine *engine.Engine
		src    draw.Source
		rounds int
		// percent of team rounds with an activity
		activityChance  int
		maxParticipants int
		titles          []string
		afterRound      func(round int)
		l               *log.Logger
	}
	Option func(*Simulation)

	Result struct {
		Rounds  int
		Turns   int
		Ranking []model.Standing
	}
)

func WithRounds(n int) Option {
	return func(s *Simulation) {
		s.rounds = n
	}
}

// WithActivityChance sets the percentage (0..100) of team rounds with an activity.
func WithActivityChance(percent int) Option {
	return func(s *Simulation) {
		s.activityChance = percent
	}
}

func WithMaxParticipants(n int) Option {
	return func(s *Simulation) {
		s.maxParticipants = n
	}
}

func WithTitles(titles ...string) Option {
	return func(s *Simulation) {
		s.titles = titles
	}
}

// WithAfterRound registers a callback invoked after each completed round.
func WithAfterRound(cb func(round int)) Option {
	return func(s *Simulation) {
		s.afterRound = cb
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) {
		s.l = l
	}
}

// New creates a simulation on e. src drives the activity generator, the
// engine's own source drives the throws.
func New(e *engine.Engine, src draw.Source, opts ...Option) (*Simulation, error) {
	ret := &Simulation{
		engine:          e,
		src:             src,
		rounds:          20,
		activityChance:  50,
		maxParticipants: 6,
		titles:          defaultTitles,
		l:               log.Default().Named("race.simulation"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch {
	case e == nil || src == nil:
		return nil, fmt.Errorf("%w: engine and source required", model.ErrInvalidArgument)
	case ret.rounds <= 0:
		return nil, fmt.Errorf("%w: rounds must be positive", model.ErrInvalidArgument)
	case ret.activityChance < 0 || ret.activityChance > 100:
		return nil, fmt.Errorf("%w: activity chance %d outside 0..100",
			model.ErrInvalidArgument, ret.activityChance)
	case ret.maxParticipants <= 0:
		return nil, fmt.Errorf("%w: max participants must be positive", model.ErrInvalidArgument)
	case len(ret.titles) == 0:
		return nil, fmt.Errorf("%w: no activity titles", model.ErrInvalidArgument)
	}
	return ret, nil
}

// Run plays until all teams finished or the configured rounds are done.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if len(s.engine.Teams()) == 0 {
		return nil, fmt.Errorf("%w: no teams registered", model.ErrInvalidArgument)
	}
	ret := &Result{}
	for round := 1; round <= s.rounds && !s.allFinished(); round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, team := range s.engine.Teams() {
			turns, err := s.playTeam(team)
			if err != nil {
				return nil, err
			}
			ret.Turns += turns
		}
		ret.Rounds = round
		s.l.Debug("round done", log.Int("round", round), log.Int("turns", ret.Turns))
		if s.afterRound != nil {
			s.afterRound(round)
		}
	}
	ret.Ranking = s.engine.Ranking()
	return ret, nil
}

func (s *Simulation) allFinished() bool {
	return lo.EveryBy(s.engine.Teams(), func(t model.Team) bool { return t.Finished })
}

func (s *Simulation) playTeam(team model.Team) (int, error) {
	if team.Finished {
		return 0, nil
	}
	if s.src.Intn(100) < s.activityChance {
		if _, err := s.engine.RecordActivity(team.ID, s.nextActivity()); err != nil {
			return 0, err
		}
	}
	turns, err := s.throwUntilSettled(team.ID, false)
	if err != nil {
		return turns, err
	}
	for {
		current, err := s.engine.Team(team.ID)
		if err != nil {
			return turns, err
		}
		if current.Finished || current.BonusThrows == 0 {
			return turns, nil
		}
		n, err := s.throwUntilSettled(team.ID, true)
		turns += n
		if err != nil {
			return turns, err
		}
	}
}

// throwUntilSettled takes one turn plus the extra throws granted by yut and mo.
func (s *Simulation) throwUntilSettled(teamID string, useBonus bool) (int, error) {
	turns := 0
	for {
		res, err := s.engine.TakeTurn(teamID, s.engine.DrawThrow(), useBonus)
		if err != nil {
			return turns, err
		}
		turns++
		if !res.ExtraThrow {
			return turns, nil
		}
		// extra throws never consume a bonus throw
		useBonus = false
	}
}

func (s *Simulation) nextActivity() scorebook.Activity {
	difficulties := []model.Difficulty{model.Easy, model.Medium, model.Hard}
	return scorebook.Activity{
		Title:        s.titles[s.src.Intn(len(s.titles))],
		Base:         s.engine.Rules().BasePoints,
		Difficulty:   difficulties[s.src.Intn(len(difficulties))],
		Participants: 1 + s.src.Intn(s.maxParticipants),
	}
}
