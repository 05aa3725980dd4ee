package model

import "time"

type EntryKind string

const (
	EntryTeam     EntryKind = "team"
	EntryActivity EntryKind = "activity"
	EntryTurn     EntryKind = "turn"
)

// Entry is one ledger record. Exactly one of Activity and Turn is set for
// activity and turn entries.
type Entry struct {
	Seq      int             `json:"seq"`
	At       time.Time       `json:"at"`
	Kind     EntryKind       `json:"kind"`
	TeamID   string          `json:"teamId"`
	Text     string          `json:"text"`
	Activity *ActivityRecord `json:"activity,omitempty"`
	Turn     *TurnResult     `json:"turn,omitempty"`
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	if e.Activity != nil {
		a := *e.Activity
		e.Activity = &a
	}
	if e.Turn != nil {
		t := *e.Turn
		if t.Capture != nil {
			c := *t.Capture
			t.Capture = &c
		}
		if t.Captured != nil {
			t.Captured = append([]Capture(nil), t.Captured...)
		}
		e.Turn = &t
	}
	return e
}
