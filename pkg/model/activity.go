package model

import "time"

// ActivityRecord is the immutable result of scoring one team activity.
type ActivityRecord struct {
	Seq              int        `json:"seq"`
	At               time.Time  `json:"at"`
	TeamID           string     `json:"teamId"`
	Title            string     `json:"title,omitempty"`
	Base             int        `json:"base"`
	Difficulty       Difficulty `json:"difficulty"`
	DifficultyPoints int        `json:"difficultyPoints"`
	Participants     int        `json:"participants"`
	ParticipantBonus int        `json:"participantBonus"`
	Delta            int        `json:"delta"`
	ScoreAfter       int        `json:"scoreAfter"`
	ThrowsGained     int        `json:"throwsGained"`
}
