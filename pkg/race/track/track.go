package track

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/mpapenbr/yutrace/pkg/model"
)

type (
	Track struct {
		finishCell  int
		checkpoints []int
		retreat     bool
	}
	Option func(*Track)
)

func WithFinishCell(cell int) Option {
	return func(t *Track) {
		t.finishCell = cell
	}
}

func WithCheckpoints(cells ...int) Option {
	return func(t *Track) {
		t.checkpoints = slices.Clone(cells)
	}
}

// WithCheckpointRetreat controls whether landing exactly on a checkpoint
// sends the token back to the previous checkpoint.
func WithCheckpointRetreat(enabled bool) Option {
	return func(t *Track) {
		t.retreat = enabled
	}
}

// FromRules builds the options matching the given rules.
func FromRules(r *model.Rules) []Option {
	return []Option{
		WithFinishCell(r.FinishCell),
		WithCheckpoints(r.Checkpoints...),
		WithCheckpointRetreat(r.CaptureRule == model.CaptureCheckpoint),
	}
}

func New(opts ...Option) (*Track, error) {
	ret := &Track{
		finishCell:  49,
		checkpoints: []int{10, 20, 30, 40},
		retreat:     true,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.finishCell <= 0 {
		return nil, fmt.Errorf("%w: finish cell must be positive", model.ErrInvalidArgument)
	}
	slices.Sort(ret.checkpoints)
	ret.checkpoints = slices.Compact(ret.checkpoints)
	for _, c := range ret.checkpoints {
		if c <= 0 || c >= ret.finishCell {
			return nil, fmt.Errorf("%w: checkpoint %d outside (0,%d)",
				model.ErrInvalidArgument, c, ret.finishCell)
		}
	}
	return ret, nil
}

func (t *Track) FinishCell() int {
	return t.finishCell
}

func (t *Track) Checkpoints() []int {
	return slices.Clone(t.checkpoints)
}

func (t *Track) IsCheckpoint(cell int) bool {
	_, found := slices.BinarySearch(t.checkpoints, cell)
	return found
}

// Advance moves a token from position by distance.
// The result never goes below 0. Reaching the finish cell clamps to it and
// marks the move finished; overshoot is ignored.
func (t *Track) Advance(position, distance int) model.Move {
	raw := max(position+distance, 0)
	move := model.Move{From: position, Landed: raw, To: raw}
	if raw >= t.finishCell {
		move.Landed = t.finishCell
		move.To = t.finishCell
		move.Finished = true
		return move
	}
	if !t.retreat {
		return move
	}
	if to, ok := t.previousCheckpoint(raw); ok {
		move.To = to
		move.Capture = &model.Capture{From: raw, To: to}
	}
	return move
}

// RetreatCell is the highest checkpoint at or below position, 0 if none.
func (t *Track) RetreatCell(position int) int {
	ret := 0
	for _, c := range t.checkpoints {
		if c > position {
			break
		}
		ret = c
	}
	return ret
}

// previousCheckpoint returns the checkpoint below cell if cell is a checkpoint
// that has one. The lowest checkpoint has nowhere to retreat to.
func (t *Track) previousCheckpoint(cell int) (int, bool) {
	idx, found := slices.BinarySearch(t.checkpoints, cell)
	if !found || idx == 0 {
		return 0, false
	}
	return t.checkpoints[idx-1], true
}
