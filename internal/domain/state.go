package domain

// phaseState is the payload owned by the current phase. Exactly one is live at a time.
type phaseState interface {
	phase() Phase
}

type setupState struct{}

type snakeTurnState struct {
	offered []Card
}

type rankingState struct {
	round     *RoundContext
	collector *RankingCollector
}

type revealState struct {
	round     *RoundContext
	sequencer *RevealSequencer
}

type scoringState struct {
	round  *RoundContext
	result RoundScore
}

type gameOverState struct {
	standings []Standing
}

func (setupState) phase() Phase     { return PhaseSetup }
func (snakeTurnState) phase() Phase { return PhaseSnakeTurn }
func (rankingState) phase() Phase   { return PhaseRanking }
func (revealState) phase() Phase    { return PhaseReveal }
func (scoringState) phase() Phase   { return PhaseScoring }
func (gameOverState) phase() Phase  { return PhaseGameOver }

// Standing is a player's final place
type Standing struct {
	Place    int        `json:"place"`
	Player   PlayerInfo `json:"player"`
	IsWinner bool       `json:"isWinner"`
}

// SnakeTurnView is broadcast while the Snake picks a card. Answers are fetched
// separately with Game.OfferedCards.
type SnakeTurnView struct {
	SnakeID string       `json:"snakeId"`
	Offered []CardPrompt `json:"offered"`
}

// RankingView is shown while the group orders the answers. Real answers are hidden.
type RankingView struct {
	SnakeID            string         `json:"snakeId"`
	Card               CardPrompt     `json:"card"`
	Stage              CollectorStage `json:"stage"`
	Order              []string       `json:"order"`
	DoubleDowns        map[string]int `json:"doubleDowns"`
	CanLockDoubleDowns bool           `json:"canLockDoubleDowns"`
}

// RevealView is shown while slots are turned over. Only revealed slots carry results.
type RevealView struct {
	SnakeID     string         `json:"snakeId"`
	Card        CardPrompt     `json:"card"`
	FinalOrder  []string       `json:"finalOrder"`
	DoubleDowns map[string]int `json:"doubleDowns"`
	Revealed    []RevealEvent  `json:"revealed"`
	Remaining   int            `json:"remaining"`
	TimedOut    bool           `json:"timedOut"`
}

// ScoringView is the full round result
type ScoringView struct {
	Round  RoundRecord `json:"round"`
	IsLast bool        `json:"isLast"`
}

// GameOverView holds the final standings, winner first
type GameOverView struct {
	Winner    PlayerInfo `json:"winner"`
	Standings []Standing `json:"standings"`
}

// Snapshot is a deep copy of the game for rendering. Exactly one phase payload is set.
type Snapshot struct {
	GameID      string       `json:"gameId"`
	Phase       Phase        `json:"phase"`
	RoundNumber int          `json:"roundNumber"`
	TotalRounds int          `json:"totalRounds"`
	Options     Options      `json:"options"`
	Players     []PlayerInfo `json:"players"`

	SnakeTurn *SnakeTurnView `json:"snakeTurn,omitempty"`
	Ranking   *RankingView   `json:"ranking,omitempty"`
	Reveal    *RevealView    `json:"reveal,omitempty"`
	Scoring   *ScoringView   `json:"scoring,omitempty"`
	GameOver  *GameOverView  `json:"gameOver,omitempty"`
}

func copyPicks(picks map[string]int) map[string]int {
	out := make(map[string]int, len(picks))
	for id, pos := range picks {
		out[id] = pos
	}
	return out
}
