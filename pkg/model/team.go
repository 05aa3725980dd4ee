package model

import (
	"fmt"
	"time"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, s)
}

//nolint:tagliatelle // snapshot compatibility
type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
	Missions      int       `json:"missions"`
	BonusThrows   int       `json:"bonusThrows"`
	ThrowsGranted int       `json:"throwsGranted"` // cumulative throws granted by score
	Position      int       `json:"position"`
	Finished      bool      `json:"finished"`
	FinishRank    int       `json:"finishRank,omitempty"` // 1-based
	FinishedAt    time.Time `json:"finishedAt"`
}

// Standing is one row of the derived ranking.
type Standing struct {
	Rank        int    `json:"rank"`
	TeamID      string `json:"teamId"`
	Name        string `json:"name"`
	Finished    bool   `json:"finished"`
	FinishRank  int    `json:"finishRank,omitempty"`
	Position    int    `json:"position"`
	Score       int    `json:"score"`
	Missions    int    `json:"missions"`
	BonusThrows int    `json:"bonusThrows"`
}
