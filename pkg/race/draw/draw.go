// Package draw produces weighted yut throw outcomes from an injected entropy source.
package draw

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/yutrace/pkg/model"
)

// Source is the entropy consumed by Throw. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0,n).
	Intn(n int) int
}

// NewSeeded returns a deterministic source. A seed of 0 uses the current time.
func NewSeeded(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // game randomness, not security relevant
	return rand.New(rand.NewSource(seed))
}

type (
	Draw struct {
		src     Source
		weights map[model.Outcome]int
		total   int
	}
	Option func(*Draw)

	// Odds describes one row of the draw table.
	Odds struct {
		Outcome     model.Outcome
		Weight      int
		Probability decimal.Decimal
	}
)

func WithWeights(weights map[model.Outcome]int) Option {
	return func(d *Draw) {
		d.weights = weights
	}
}

func New(src Source, opts ...Option) (*Draw, error) {
	defaults, err := model.DefaultRules().Weights()
	if err != nil {
		return nil, err
	}
	ret := &Draw{src: src, weights: defaults}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		return nil, fmt.Errorf("%w: draw requires a source", model.ErrInvalidArgument)
	}
	for o, w := range ret.weights {
		if !o.Valid() {
			return nil, fmt.Errorf("%w: unknown outcome %d", model.ErrInvalidArgument, int(o))
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %s", model.ErrInvalidArgument, o)
		}
		ret.total += w
	}
	if ret.total <= 0 {
		return nil, fmt.Errorf("%w: weights must sum to a positive total",
			model.ErrInvalidArgument)
	}
	return ret, nil
}

// Throw draws one outcome. Each call consumes exactly one value from the source.
func (d *Draw) Throw() model.Outcome {
	r := d.src.Intn(d.total)
	acc := 0
	for _, o := range model.Outcomes {
		acc += d.weights[o]
		if r < acc {
			return o
		}
	}
	// unreachable as long as r < total
	return model.Do
}

func (d *Draw) Weight(o model.Outcome) int {
	return d.weights[o]
}

func (d *Draw) Total() int {
	return d.total
}

func (d *Draw) Probability(o model.Outcome) decimal.Decimal {
	return decimal.NewFromInt(int64(d.weights[o])).
		DivRound(decimal.NewFromInt(int64(d.total)), 4)
}

// Table returns the odds of every drawable outcome in draw order.
func (d *Draw) Table() []Odds {
	ret := make([]Odds, 0, len(model.Outcomes))
	for _, o := range model.Outcomes {
		ret = append(ret, Odds{Outcome: o, Weight: d.weights[o], Probability: d.Probability(o)})
	}
	return ret
}
