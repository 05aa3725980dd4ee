package model

import "errors"

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrDuplicateTeam        = errors.New("duplicate team")
	ErrNoThrowAvailable     = errors.New("no throw available")
	ErrNoBonusThrows        = errors.New("no bonus throws left")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrTeamFinished         = errors.New("team already finished")
	ErrIncompatibleSnapshot = errors.New("incompatible snapshot")
)
