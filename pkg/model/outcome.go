package model

import (
	"fmt"
	"strings"
)

// Outcome is the result of a single yut throw.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	BackDo
	Do
	Gae
	Geol
	Yut
	Mo
)

// Outcomes lists all drawable outcomes in draw-table order.
var Outcomes = []Outcome{Do, Gae, Geol, Yut, Mo, BackDo}

var outcomeNames = map[Outcome]string{
	BackDo: "backdo",
	Do:     "do",
	Gae:    "gae",
	Geol:   "geol",
	Yut:    "yut",
	Mo:     "mo",
}

func (o Outcome) Valid() bool {
	_, ok := outcomeNames[o]
	return ok
}

// Distance is the number of cells the token moves. BackDo moves backwards.
func (o Outcome) Distance() int {
	switch o {
	case BackDo:
		return -1
	case Do:
		return 1
	case Gae:
		return 2
	case Geol:
		return 3
	case Yut:
		return 4
	case Mo:
		return 5
	case OutcomeUnspecified:
		return 0
	}
	return 0
}

// GrantsExtraThrow reports whether the throwing team may throw again (Yut and Mo).
func (o Outcome) GrantsExtraThrow() bool {
	return o == Yut || o == Mo
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	if o == OutcomeUnspecified {
		return "unspecified"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func ParseOutcome(s string) (Outcome, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for o, name := range outcomeNames {
		if name == key {
			return o, nil
		}
	}
	return OutcomeUnspecified, fmt.Errorf("%w: unknown outcome %q", ErrInvalidArgument, s)
}

func (o Outcome) MarshalText() ([]byte, error) {
	if o == OutcomeUnspecified {
		return []byte(""), nil
	}
	if !o.Valid() {
		return nil, fmt.Errorf("%w: outcome %d", ErrInvalidArgument, int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*o = OutcomeUnspecified
		return nil
	}
	parsed, err := ParseOutcome(string(data))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
