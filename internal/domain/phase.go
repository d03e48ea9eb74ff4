package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseSetup     Phase = "SETUP"      // Roster not yet locked in
	PhaseSnakeTurn Phase = "SNAKE_TURN" // Snake picks a card and writes the fake answer
	PhaseRanking   Phase = "RANKING"    // Group orders the six answers, then doubles down
	PhaseReveal    Phase = "REVEAL"     // Slots are revealed one at a time
	PhaseScoring   Phase = "SCORING"    // Round points are shown
	PhaseGameOver  Phase = "GAME_OVER"  // Final standings
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseSetup:     {PhaseSnakeTurn},
		PhaseSnakeTurn: {PhaseRanking},
		PhaseRanking:   {PhaseReveal},
		PhaseReveal:    {PhaseScoring},
		PhaseScoring:   {PhaseSnakeTurn, PhaseGameOver}, // Next round or end of game
		PhaseGameOver:  {},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the game has ended
func (p Phase) IsTerminal() bool {
	return p == PhaseGameOver
}
