package domain

import "errors"

// Domain errors
var (
	ErrInvalidPlayerCount        = errors.New("a game needs between 2 and 6 players")
	ErrDuplicatePlayer           = errors.New("duplicate player id")
	ErrPlayerNotFound            = errors.New("player not found")
	ErrInvalidOptions            = errors.New("invalid game options")
	ErrEmptyFakeAnswer           = errors.New("fake answer cannot be empty")
	ErrCardNotOffered            = errors.New("card was not offered this round")
	ErrReorderOutOfBounds        = errors.New("reorder index out of bounds")
	ErrIncompleteDoubleDown      = errors.New("double downs are incomplete")
	ErrSnakeCannotDoubleDown     = errors.New("the snake cannot double down")
	ErrInvalidDoubleDownPosition = errors.New("double down position must be between 0 and 4")
	ErrInvalidPhaseTransition    = errors.New("invalid action for current phase")
	ErrRevealFinished            = errors.New("all slots already revealed")
	ErrDeckTooSmall              = errors.New("deck needs at least 3 cards")
	ErrInvalidCard               = errors.New("invalid card")
	ErrTableNotFound             = errors.New("table not found")
)
