// Package scorebook turns team activities into score and bonus throws.
package scorebook

import (
	"fmt"

	"github.com/mpapenbr/yutrace/pkg/model"
)

type (
	// Roster resolves team ids to the mutable team state.
	Roster interface {
		Lookup(teamID string) (*model.Team, bool)
	}

	// Activity describes a completed team activity.
	Activity struct {
		Title        string
		Base         int
		Difficulty   model.Difficulty
		Participants int
	}

	ScoreBook struct {
		roster Roster
		rules  *model.Rules
	}
)

func New(roster Roster, rules *model.Rules) *ScoreBook {
	return &ScoreBook{roster: roster, rules: rules}
}

// ThrowsFor is the number of bonus throws earned in total by score.
func (s *ScoreBook) ThrowsFor(score int) int {
	return score / s.rules.ScorePerThrow
}

// Prepare validates the activity and computes its record without changing any state.
// Seq and At are left to the caller.
func (s *ScoreBook) Prepare(teamID string, a Activity) (*model.ActivityRecord, error) {
	team, ok := s.roster.Lookup(teamID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrTeamNotFound, teamID)
	}
	if a.Base < 0 {
		return nil, fmt.Errorf("%w: base points must not be negative", model.ErrInvalidArgument)
	}
	if a.Participants < 0 {
		return nil, fmt.Errorf("%w: participant count must not be negative",
			model.ErrInvalidArgument)
	}
	diffPoints, ok := s.rules.DifficultyPoints[a.Difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", model.ErrInvalidArgument, a.Difficulty)
	}
	bonus := 0
	if a.Participants >= s.rules.ParticipantBonusThreshold {
		bonus = s.rules.ParticipantBonusPoints
	}
	delta := a.Base + diffPoints + bonus
	after := team.Score + delta
	return &model.ActivityRecord{
		TeamID:           team.ID,
		Title:            a.Title,
		Base:             a.Base,
		Difficulty:       a.Difficulty,
		DifficultyPoints: diffPoints,
		Participants:     a.Participants,
		ParticipantBonus: bonus,
		Delta:            delta,
		ScoreAfter:       after,
		ThrowsGained:     s.ThrowsFor(after) - s.ThrowsFor(team.Score),
	}, nil
}

// Apply books a prepared record onto its team.
func (s *ScoreBook) Apply(rec *model.ActivityRecord) error {
	team, ok := s.roster.Lookup(rec.TeamID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrTeamNotFound, rec.TeamID)
	}
	s.addScore(team, rec.Delta)
	team.Missions++
	return nil
}

// RecordActivity validates, computes and books an activity.
func (s *ScoreBook) RecordActivity(teamID string, a Activity) (*model.ActivityRecord, error) {
	rec, err := s.Prepare(teamID, a)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Award adds points earned outside an activity, e.g. for finishing, and
// returns the bonus throws gained by crossing score milestones.
func (s *ScoreBook) Award(team *model.Team, points int) int {
	if points <= 0 {
		return 0
	}
	return s.addScore(team, points)
}

// addScore is the only place that changes score, so ThrowsGranted always
// equals ThrowsFor(Score).
func (s *ScoreBook) addScore(team *model.Team, points int) int {
	gained := s.ThrowsFor(team.Score+points) - s.ThrowsFor(team.Score)
	team.Score += points
	team.ThrowsGranted += gained
	team.BonusThrows += gained
	return gained
}
