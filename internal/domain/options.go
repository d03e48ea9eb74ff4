package domain

import "fmt"

// GameMode selects how a game ends
type GameMode string

const (
	// ModeScoreThreshold ends the game as soon as any player reaches WinningScore
	ModeScoreThreshold GameMode = "SCORE_THRESHOLD"

	// ModeFixedRotation ends the game after every player has been the Snake exactly once
	ModeFixedRotation GameMode = "FIXED_ROTATION"
)

// DoubleDownMode selects the completion policy for locking double downs
type DoubleDownMode string

const (
	// DoubleDownShared needs at least one pick from the group
	DoubleDownShared DoubleDownMode = "SHARED"

	// DoubleDownPerPlayer needs a pick from every non-Snake player
	DoubleDownPerPlayer DoubleDownMode = "PER_PLAYER"
)

const (
	MinPlayers          = 2
	MaxPlayers          = 6
	DefaultWinningScore = 10
)

// Options holds the per-game settings chosen at startGame
type Options struct {
	Mode         GameMode       `json:"mode"`
	WinningScore int            `json:"winningScore"`
	DoubleDown   DoubleDownMode `json:"doubleDownMode"`
}

// DefaultOptions returns the default game options
func DefaultOptions() Options {
	return Options{
		Mode:         ModeScoreThreshold,
		WinningScore: DefaultWinningScore,
		DoubleDown:   DoubleDownShared,
	}
}

// Validate checks the options are usable
func (o Options) Validate() error {
	switch o.Mode {
	case ModeScoreThreshold:
		if o.WinningScore <= 0 {
			return fmt.Errorf("%w: winning score must be positive", ErrInvalidOptions)
		}
	case ModeFixedRotation:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}

	switch o.DoubleDown {
	case DoubleDownShared, DoubleDownPerPlayer:
	default:
		return fmt.Errorf("%w: unknown double down mode %q", ErrInvalidOptions, o.DoubleDown)
	}

	return nil
}
