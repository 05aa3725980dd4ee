package model

import "time"

type Capture struct {
	TeamID string `json:"teamId,omitempty"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// Move is the track's resolution of a single displacement.
type Move struct {
	From     int
	Landed   int // cell reached before a checkpoint retreat
	To       int
	Finished bool
	Capture  *Capture
}

type TurnResult struct {
	Seq           int       `json:"seq"`
	At            time.Time `json:"at"`
	TeamID        string    `json:"teamId"`
	Outcome       Outcome   `json:"outcome"`
	UsedBonus     bool      `json:"usedBonus"`
	From          int       `json:"from"`
	Landed        int       `json:"landed"`
	To            int       `json:"to"`
	Capture       *Capture  `json:"capture,omitempty"`
	Captured      []Capture `json:"captured,omitempty"`
	Finished      bool      `json:"finished"`
	ExtraThrow    bool      `json:"extraThrow"`
	PointsAwarded int       `json:"pointsAwarded"`
	ThrowsGained  int       `json:"throwsGained"`
}

// TurnState is the terminal state a token reached in a turn.
type TurnState string

const (
	TurnIdle     TurnState = "idle"
	TurnMoving   TurnState = "moving"
	TurnCaptured TurnState = "captured"
	TurnSettled  TurnState = "settled"
	TurnFinished TurnState = "finished"
)

func (r *TurnResult) State() TurnState {
	switch {
	case r.Finished:
		return TurnFinished
	case r.Capture != nil:
		return TurnCaptured
	default:
		return TurnSettled
	}
}
