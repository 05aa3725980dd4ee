package model

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type CaptureRule string

const (
	// CaptureCheckpoint retreats a token that lands exactly on a checkpoint
	// to the previous checkpoint.
	CaptureCheckpoint CaptureRule = "checkpoint"
	// CaptureCollision sends opponents sharing the landing cell back to
	// the checkpoint at or below their position.
	CaptureCollision CaptureRule = "collision"
)

//nolint:lll // readability
type Rules struct {
	BasePoints                int                `yaml:"basePoints" json:"basePoints"`
	DifficultyPoints          map[Difficulty]int `yaml:"difficultyPoints" json:"difficultyPoints"`
	ParticipantBonusPoints    int                `yaml:"participantBonusPoints" json:"participantBonusPoints"`
	ParticipantBonusThreshold int                `yaml:"participantBonusThreshold" json:"participantBonusThreshold"`
	ScorePerThrow             int                `yaml:"scorePerThrow" json:"scorePerThrow"`
	FinishBonusPoints         int                `yaml:"finishBonusPoints" json:"finishBonusPoints"`
	CaptureRule               CaptureRule        `yaml:"captureRule" json:"captureRule"`
	CaptureBonusPoints        int                `yaml:"captureBonusPoints" json:"captureBonusPoints"`
	FinishCell                int                `yaml:"finishCell" json:"finishCell"`
	Checkpoints               []int              `yaml:"checkpoints" json:"checkpoints"`
	ThrowWeights              map[string]int     `yaml:"throwWeights" json:"throwWeights"`
}

func DefaultRules() *Rules {
	return &Rules{
		BasePoints: 10,
		DifficultyPoints: map[Difficulty]int{
			Easy:   10,
			Medium: 20,
			Hard:   30,
		},
		ParticipantBonusPoints:    20,
		ParticipantBonusThreshold: 3,
		ScorePerThrow:             40,
		FinishBonusPoints:         50,
		CaptureRule:               CaptureCheckpoint,
		CaptureBonusPoints:        30,
		FinishCell:                49,
		Checkpoints:               []int{10, 20, 30, 40},
		ThrowWeights: map[string]int{
			"do":     34,
			"gae":    26,
			"geol":   17,
			"yut":    11,
			"mo":     8,
			"backdo": 4,
		},
	}
}

// Weights resolves ThrowWeights to outcomes.
func (r *Rules) Weights() (map[Outcome]int, error) {
	ret := make(map[Outcome]int, len(r.ThrowWeights))
	for name, w := range r.ThrowWeights {
		o, err := ParseOutcome(name)
		if err != nil {
			return nil, err
		}
		ret[o] = w
	}
	return ret, nil
}

//nolint:cyclop // plain list of checks
func (r *Rules) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: rules: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
	}
	if r.BasePoints < 0 || r.ParticipantBonusPoints < 0 ||
		r.FinishBonusPoints < 0 || r.CaptureBonusPoints < 0 {
		return invalid("points must not be negative")
	}
	if r.ParticipantBonusThreshold < 0 {
		return invalid("participant bonus threshold must not be negative")
	}
	if r.ScorePerThrow <= 0 {
		return invalid("scorePerThrow must be positive, got %d", r.ScorePerThrow)
	}
	for d, p := range r.DifficultyPoints {
		if _, err := ParseDifficulty(string(d)); err != nil {
			return err
		}
		if p < 0 {
			return invalid("difficulty %s has negative points", d)
		}
	}
	switch r.CaptureRule {
	case CaptureCheckpoint, CaptureCollision:
	default:
		return invalid("unknown capture rule %q", r.CaptureRule)
	}
	if r.FinishCell <= 0 {
		return invalid("finishCell must be positive, got %d", r.FinishCell)
	}
	if !slices.IsSorted(r.Checkpoints) {
		return invalid("checkpoints must be sorted ascending")
	}
	for i, c := range r.Checkpoints {
		if c <= 0 || c >= r.FinishCell {
			return invalid("checkpoint %d outside (0,%d)", c, r.FinishCell)
		}
		if i > 0 && r.Checkpoints[i-1] == c {
			return invalid("duplicate checkpoint %d", c)
		}
	}
	weights, err := r.Weights()
	if err != nil {
		return err
	}
	total := 0
	for o, w := range weights {
		if w < 0 {
			return invalid("negative weight for %s", o)
		}
		total += w
	}
	if total <= 0 {
		return invalid("throw weights must sum to a positive total")
	}
	return nil
}
