package domain

// CollectorStage is the ranking collector's internal state
type CollectorStage string

const (
	StageRanking    CollectorStage = "RANKING"
	StageDoubleDown CollectorStage = "DOUBLE_DOWN"
	StageLocked     CollectorStage = "LOCKED"
)

// MaxDoubleDownPosition is the last rank a double down may target (rank 5)
const MaxDoubleDownPosition = RealAnswerCount - 1

// RankingCollector accumulates the group's agreed order of the six answers and,
// once that is locked, each guesser's double-down pick.
type RankingCollector struct {
	stage       CollectorStage
	order       Ranking
	guessers    []string
	doubleDowns map[string]int
	mode        DoubleDownMode
	timedOut    bool
}

// NewRankingCollector starts a collector from an independent reshuffle of the
// presentation order, so the group never starts from the order they were shown.
func NewRankingCollector(presentation []string, guessers []string, mode DoubleDownMode, rng RNG) *RankingCollector {
	order := Ranking(presentation).Clone()
	shuffle(order, rng)

	return &RankingCollector{
		stage:       StageRanking,
		order:       order,
		guessers:    append([]string(nil), guessers...),
		doubleDowns: make(map[string]int),
		mode:        mode,
	}
}

// Stage returns the collector's current stage
func (c *RankingCollector) Stage() CollectorStage {
	return c.stage
}

// Order returns a copy of the working order
func (c *RankingCollector) Order() Ranking {
	return c.order.Clone()
}

// TimedOut reports whether the collector was force-locked by the host clock
func (c *RankingCollector) TimedOut() bool {
	return c.timedOut
}

// Move reorders the working list
func (c *RankingCollector) Move(from, to int) error {
	if c.stage != StageRanking {
		return ErrInvalidPhaseTransition
	}

	next, err := c.order.ApplyMove(from, to)
	if err != nil {
		return err
	}
	c.order = next

	return nil
}

// LockRanking freezes the working order and opens double downs
func (c *RankingCollector) LockRanking() error {
	if c.stage != StageRanking {
		return ErrInvalidPhaseTransition
	}
	c.stage = StageDoubleDown
	return nil
}

// SelectDoubleDown records a guesser's pick. A nil position clears it, and picking the
// position already selected also clears it.
func (c *RankingCollector) SelectDoubleDown(playerID string, position *int) error {
	if c.stage != StageDoubleDown {
		return ErrInvalidPhaseTransition
	}
	if !c.isGuesser(playerID) {
		return ErrSnakeCannotDoubleDown
	}

	if position == nil {
		delete(c.doubleDowns, playerID)
		return nil
	}

	if *position < 0 || *position > MaxDoubleDownPosition {
		return ErrInvalidDoubleDownPosition
	}

	if current, ok := c.doubleDowns[playerID]; ok && current == *position {
		delete(c.doubleDowns, playerID)
		return nil
	}
	c.doubleDowns[playerID] = *position

	return nil
}

// DoubleDowns returns a copy of the current picks
func (c *RankingCollector) DoubleDowns() map[string]int {
	picks := make(map[string]int, len(c.doubleDowns))
	for id, pos := range c.doubleDowns {
		picks[id] = pos
	}
	return picks
}

// CanLockDoubleDowns reports whether the completion policy is satisfied
func (c *RankingCollector) CanLockDoubleDowns() bool {
	switch c.mode {
	case DoubleDownPerPlayer:
		for _, id := range c.guessers {
			if _, ok := c.doubleDowns[id]; !ok {
				return false
			}
		}
		return true
	default:
		return len(c.doubleDowns) > 0
	}
}

// LockDoubleDowns finalizes the collector if the completion policy allows it.
// On failure the collector stays open so the group can fix their picks.
func (c *RankingCollector) LockDoubleDowns() error {
	if c.stage != StageDoubleDown {
		return ErrInvalidPhaseTransition
	}
	if !c.CanLockDoubleDowns() {
		return ErrIncompleteDoubleDown
	}
	c.stage = StageLocked
	return nil
}

// ForceLock ends collection with whatever order is set and no double downs
func (c *RankingCollector) ForceLock() {
	c.doubleDowns = make(map[string]int)
	c.stage = StageLocked
	c.timedOut = true
}

func (c *RankingCollector) isGuesser(playerID string) bool {
	for _, id := range c.guessers {
		if id == playerID {
			return true
		}
	}
	return false
}
