// Package ledger keeps the append-only history of a race session.
package ledger

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mpapenbr/yutrace/pkg/model"
)

type Ledger struct {
	entries []model.Entry
	nextSeq int
}

func New() *Ledger {
	return &Ledger{entries: make([]model.Entry, 0), nextSeq: 1}
}

// NextSeq is the sequence number the next appended entry receives.
func (l *Ledger) NextSeq() int {
	return l.nextSeq
}

// Append stores a copy of e and returns it with its sequence number.
// A zero Seq is assigned from the ledger; explicit values must not go backwards.
func (l *Ledger) Append(e model.Entry) (model.Entry, error) {
	if e.Seq == 0 {
		e.Seq = l.nextSeq
	}
	if e.Seq < l.nextSeq {
		return model.Entry{}, fmt.Errorf("%w: sequence %d already used",
			model.ErrInvalidArgument, e.Seq)
	}
	stored := e.Clone()
	l.entries = append(l.entries, stored)
	l.nextSeq = e.Seq + 1
	return stored.Clone(), nil
}

// Recent returns up to n entries, most recent first.
func (l *Ledger) Recent(n int) ([]model.Entry, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must not be negative, got %d", model.ErrInvalidArgument, n)
	}
	n = min(n, len(l.entries))
	ret := make([]model.Entry, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		ret = append(ret, l.entries[i].Clone())
	}
	return ret, nil
}

// All returns every entry in append order.
func (l *Ledger) All() []model.Entry {
	return lo.Map(l.entries, func(e model.Entry, _ int) model.Entry { return e.Clone() })
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) Reset() {
	l.entries = make([]model.Entry, 0)
	l.nextSeq = 1
}

// Restore replaces the content with entries. nextSeq must be greater than
// every stored sequence number.
func (l *Ledger) Restore(entries []model.Entry, nextSeq int) error {
	last := 0
	for _, e := range entries {
		if e.Seq <= last {
			return fmt.Errorf("%w: ledger sequence not increasing at %d",
				model.ErrInvalidArgument, e.Seq)
		}
		last = e.Seq
	}
	if nextSeq <= last {
		return fmt.Errorf("%w: next sequence %d not after %d",
			model.ErrInvalidArgument, nextSeq, last)
	}
	l.entries = lo.Map(entries, func(e model.Entry, _ int) model.Entry { return e.Clone() })
	l.nextSeq = nextSeq
	return nil
}
