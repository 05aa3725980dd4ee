package engine

import (
	"fmt"
	"strings"

	"github.com/mpapenbr/yutrace/pkg/model"
)

// ledger summaries, one line each

func teamText(t *model.Team) string {
	return "team registered: " + t.Name
}

func activityText(t *model.Team, rec *model.ActivityRecord) string {
	var b strings.Builder
	b.WriteString(t.Name)
	if title := strings.TrimSpace(rec.Title); title != "" {
		fmt.Fprintf(&b, " [%s]", title)
	}
	fmt.Fprintf(&b, ": activity +%d (difficulty %s, participants %d)",
		rec.Delta, rec.Difficulty, rec.Participants)
	if rec.ThrowsGained > 0 {
		fmt.Fprintf(&b, ", bonus throws +%d", rec.ThrowsGained)
	}
	return b.String()
}

func (e *Engine) turnText(t *model.Team, res *model.TurnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%+d) %d -> %d", t.Name, res.Outcome, res.Outcome.Distance(),
		res.From, res.Landed)
	if res.UsedBonus {
		b.WriteString(", bonus throw")
	}
	if res.Capture != nil {
		fmt.Fprintf(&b, ", checkpoint %d sends back to %d", res.Capture.From, res.Capture.To)
	}
	for _, c := range res.Captured {
		name := c.TeamID
		if other, ok := e.teams[c.TeamID]; ok {
			name = other.Name
		}
		fmt.Fprintf(&b, ", captures %s back to %d", name, c.To)
	}
	if res.Finished {
		fmt.Fprintf(&b, ", finished #%d", t.FinishRank)
	}
	if res.PointsAwarded > 0 {
		fmt.Fprintf(&b, ", +%d points", res.PointsAwarded)
	}
	if res.ThrowsGained > 0 {
		fmt.Fprintf(&b, ", bonus throws +%d", res.ThrowsGained)
	}
	if res.ExtraThrow {
		b.WriteString(", throws again")
	}
	return b.String()
}
