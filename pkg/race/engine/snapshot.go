package engine

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/model"
	"github.com/mpapenbr/yutrace/pkg/race/ledger"
	"github.com/mpapenbr/yutrace/pkg/race/scorebook"
)

// Snapshot returns a deep copy of the complete session state.
func (e *Engine) Snapshot() *model.Snapshot {
	return &model.Snapshot{
		Version: model.SnapshotVersion,
		Teams:   e.Teams(),
		Ledger:  e.ledger.All(),
		NextSeq: e.ledger.NextSeq(),
	}
}

// Restore replaces the session state with snap. On error nothing is changed.
func (e *Engine) Restore(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", model.ErrInvalidArgument)
	}
	if !semver.IsValid(snap.Version) ||
		semver.Major(snap.Version) != semver.Major(model.SnapshotVersion) {
		return fmt.Errorf("%w: version %q, want %s",
			model.ErrIncompatibleSnapshot, snap.Version, semver.Major(model.SnapshotVersion))
	}
	teams, order, err := e.validateTeams(snap.Teams)
	if err != nil {
		return err
	}
	l := ledger.New()
	if err := l.Restore(snap.Ledger, snap.NextSeq); err != nil {
		return err
	}

	e.teams = teams
	e.order = order
	e.scores = scorebook.New(e.teams, e.rules)
	e.ledger = l
	e.log.Info("session restored",
		log.Int("teams", len(order)),
		log.Int("entries", l.Len()))
	return nil
}

//nolint:cyclop // plain list of checks
func (e *Engine) validateTeams(in []model.Team) (roster, []string, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: snapshot: %s",
			model.ErrInvalidArgument, fmt.Sprintf(format, args...))
	}
	teams := make(roster, len(in))
	order := make([]string, 0, len(in))
	names := make(map[string]bool, len(in))
	ranks := make(map[int]bool)
	for i := range in {
		t := in[i]
		switch {
		case t.ID == "" || t.Name == "":
			return nil, nil, invalid("team %d without id or name", i)
		case teams[t.ID] != nil:
			return nil, nil, invalid("duplicate team id %s", t.ID)
		case names[t.Name]:
			return nil, nil, invalid("duplicate team name %s", t.Name)
		case t.Score < 0 || t.Missions < 0 || t.BonusThrows < 0:
			return nil, nil, invalid("team %s has negative counters", t.Name)
		case t.ThrowsGranted != e.scores.ThrowsFor(t.Score):
			return nil, nil, invalid("team %s: %d throws granted for score %d",
				t.Name, t.ThrowsGranted, t.Score)
		case t.BonusThrows > t.ThrowsGranted:
			return nil, nil, invalid("team %s has more bonus throws than granted", t.Name)
		case t.Position < 0 || t.Position > e.track.FinishCell():
			return nil, nil, invalid("team %s position %d off track", t.Name, t.Position)
		case t.Finished && (t.Position != e.track.FinishCell() || t.FinishRank <= 0):
			return nil, nil, invalid("team %s finished inconsistently", t.Name)
		case t.Finished && ranks[t.FinishRank]:
			return nil, nil, invalid("finish rank %d used twice", t.FinishRank)
		}
		if t.Finished {
			ranks[t.FinishRank] = true
		}
		names[t.Name] = true
		teams[t.ID] = &t
		order = append(order, t.ID)
	}
	return teams, order, nil
}
