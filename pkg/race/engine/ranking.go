package engine

import (
	"cmp"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/mpapenbr/yutrace/pkg/model"
)

// Ranking derives the current standings: finished teams in finishing order,
// then by track position, score, missions and name.
func (e *Engine) Ranking() []model.Standing {
	teams := e.Teams()
	slices.SortStableFunc(teams, compareTeams)
	return lo.Map(teams, func(t model.Team, i int) model.Standing {
		return model.Standing{
			Rank:        i + 1,
			TeamID:      t.ID,
			Name:        t.Name,
			Finished:    t.Finished,
			FinishRank:  t.FinishRank,
			Position:    t.Position,
			Score:       t.Score,
			Missions:    t.Missions,
			BonusThrows: t.BonusThrows,
		}
	})
}

func compareTeams(a, b model.Team) int {
	if a.Finished != b.Finished {
		if a.Finished {
			return -1
		}
		return 1
	}
	if a.Finished {
		return cmp.Compare(a.FinishRank, b.FinishRank)
	}
	if c := cmp.Compare(b.Position, a.Position); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Missions, a.Missions); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}
