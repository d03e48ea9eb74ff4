package domain

import (
	"fmt"
	"sort"
	"time"
)

// Game owns the state of one table. All mutation goes through its methods, each of
// which either completes a transition or leaves the game unchanged and returns an error.
// Game is not safe for concurrent use; callers serialize access.
type Game struct {
	ID        string
	CreatedAt time.Time

	players     []*Player
	options     Options
	roundNumber int
	snakeIndex  int
	state       phaseState
	history     []RoundRecord

	deck CardSource
	rng  RNG
}

// NewGame creates a game in the Setup phase
func NewGame(id string, deck CardSource, rng RNG) *Game {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Game{
		ID:        id,
		CreatedAt: time.Now(),
		options:   DefaultOptions(),
		state:     setupState{},
		deck:      deck,
		rng:       rng,
	}
}

// Phase returns the current phase
func (g *Game) Phase() Phase {
	return g.state.phase()
}

// RoundNumber returns the 1-based round in play, or 0 before the game starts
func (g *Game) RoundNumber() int {
	return g.roundNumber
}

// Options returns the options the game was started with
func (g *Game) Options() Options {
	return g.options
}

// TotalRounds returns the fixed game length, or 0 when the game ends on score
func (g *Game) TotalRounds() int {
	if g.options.Mode == ModeFixedRotation {
		return len(g.players)
	}
	return 0
}

// Players returns the roster in seat order
func (g *Game) Players() []PlayerInfo {
	infos := make([]PlayerInfo, len(g.players))
	for i, p := range g.players {
		infos[i] = p.ToInfo()
	}
	return infos
}

// Snake returns the current Snake, if a round is in play
func (g *Game) Snake() (PlayerInfo, bool) {
	if len(g.players) == 0 || g.Phase() == PhaseSetup {
		return PlayerInfo{}, false
	}
	return g.players[g.snakeIndex].ToInfo(), true
}

// History returns every scored round, oldest first
func (g *Game) History() []RoundRecord {
	out := make([]RoundRecord, len(g.history))
	for i, r := range g.history {
		out[i] = r.clone()
	}
	return out
}

// StartGame seats the roster and deals the first Snake their cards
func (g *Game) StartGame(roster []Seat, opts Options) error {
	if g.Phase() != PhaseSetup {
		return ErrInvalidPhaseTransition
	}
	if len(roster) < MinPlayers || len(roster) > MaxPlayers {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, len(roster))
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	players := make([]*Player, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for i, seat := range roster {
		id := seat.ID
		if id == "" {
			id = fmt.Sprintf("p%d", i+1)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
		players = append(players, NewPlayer(id, seat.Name, i))
	}

	g.players = players
	g.options = opts
	g.history = nil
	g.beginRound(1, 0)

	return nil
}

// RestartGame keeps the roster and options, zeroes every score and starts again at
// round one with the first seat as Snake
func (g *Game) RestartGame() error {
	if g.Phase() == PhaseSetup {
		return ErrInvalidPhaseTransition
	}

	for _, p := range g.players {
		p.ResetScore()
	}
	g.history = nil
	g.beginRound(1, 0)

	return nil
}

// SubmitFakeAnswer locks in the Snake's card and bluff and opens ranking
func (g *Game) SubmitFakeAnswer(cardID int, text string) error {
	st, ok := g.state.(snakeTurnState)
	if !ok {
		return ErrInvalidPhaseTransition
	}

	var card *Card
	for i := range st.offered {
		if st.offered[i].ID == cardID {
			card = &st.offered[i]
			break
		}
	}
	if card == nil {
		return fmt.Errorf("%w: %d", ErrCardNotOffered, cardID)
	}

	fake, err := NormalizeFakeAnswer(text)
	if err != nil {
		return err
	}

	round := newRoundContext(g.roundNumber, g.snakeIndex, g.players[g.snakeIndex].ID, *card, fake, g.rng)
	collector := NewRankingCollector(round.Presentation, g.guesserIDs(), g.options.DoubleDown, g.rng)

	g.transition(rankingState{round: round, collector: collector})
	return nil
}

// Reorder moves one answer in the group's working order
func (g *Game) Reorder(from, to int) error {
	st, ok := g.state.(rankingState)
	if !ok {
		return ErrInvalidPhaseTransition
	}
	return st.collector.Move(from, to)
}

// LockRanking freezes the group's order and opens double downs
func (g *Game) LockRanking() error {
	st, ok := g.state.(rankingState)
	if !ok {
		return ErrInvalidPhaseTransition
	}
	return st.collector.LockRanking()
}

// SelectDoubleDown sets, toggles or clears (nil) a guesser's double down
func (g *Game) SelectDoubleDown(playerID string, position *int) error {
	st, ok := g.state.(rankingState)
	if !ok {
		return ErrInvalidPhaseTransition
	}
	if !g.hasPlayer(playerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if playerID == st.round.SnakeID {
		return ErrSnakeCannotDoubleDown
	}
	return st.collector.SelectDoubleDown(playerID, position)
}

// LockDoubleDowns finishes ranking and starts the reveal
func (g *Game) LockDoubleDowns() error {
	st, ok := g.state.(rankingState)
	if !ok {
		return ErrInvalidPhaseTransition
	}
	if err := st.collector.LockDoubleDowns(); err != nil {
		return err
	}

	g.startReveal(st)
	return nil
}

// TimeoutFired force-locks ranking with the current order and no double downs
func (g *Game) TimeoutFired() error {
	st, ok := g.state.(rankingState)
	if !ok {
		return ErrInvalidPhaseTransition
	}

	st.collector.ForceLock()
	g.startReveal(st)
	return nil
}

// AdvanceReveal turns over the next slot. Revealing the last slot scores the round.
func (g *Game) AdvanceReveal() (RevealEvent, error) {
	st, ok := g.state.(revealState)
	if !ok {
		return RevealEvent{}, ErrInvalidPhaseTransition
	}

	event, ok := st.sequencer.Next()
	if !ok {
		return RevealEvent{}, ErrRevealFinished
	}

	if st.sequencer.Done() {
		g.scoreRound(st.round)
	}

	return event, nil
}

// ProceedToNextRound leaves Scoring for the next Snake's turn, or ends the game
func (g *Game) ProceedToNextRound() error {
	if _, ok := g.state.(scoringState); !ok {
		return ErrInvalidPhaseTransition
	}

	if g.isOver() {
		g.transition(gameOverState{standings: g.Standings()})
		return nil
	}

	g.beginRound(g.roundNumber+1, (g.snakeIndex+1)%len(g.players))
	return nil
}

// Standings returns players by score descending. Ties keep seat order, and the
// first entry is the winner.
func (g *Game) Standings() []Standing {
	ordered := make([]*Player, len(g.players))
	copy(ordered, g.players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	standings := make([]Standing, len(ordered))
	for i, p := range ordered {
		standings[i] = Standing{
			Place:    i + 1,
			Player:   p.ToInfo(),
			IsWinner: i == 0,
		}
	}
	return standings
}

// LastRound returns the most recently scored round
func (g *Game) LastRound() (RoundRecord, bool) {
	if len(g.history) == 0 {
		return RoundRecord{}, false
	}
	return g.history[len(g.history)-1].clone(), true
}

// OfferedCards returns the Snake's hand with answers. The snapshot only carries the prompts.
func (g *Game) OfferedCards() ([]Card, error) {
	st, ok := g.state.(snakeTurnState)
	if !ok {
		return nil, ErrInvalidPhaseTransition
	}
	out := make([]Card, len(st.offered))
	for i, c := range st.offered {
		out[i] = c.clone()
	}
	return out, nil
}

// Snapshot returns a deep copy of the game for rendering
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:      g.ID,
		Phase:       g.Phase(),
		RoundNumber: g.roundNumber,
		TotalRounds: g.TotalRounds(),
		Options:     g.options,
		Players:     g.Players(),
	}

	switch st := g.state.(type) {
	case snakeTurnState:
		offered := make([]CardPrompt, len(st.offered))
		for i, c := range st.offered {
			offered[i] = c.ToPrompt()
		}
		snap.SnakeTurn = &SnakeTurnView{
			SnakeID: g.players[g.snakeIndex].ID,
			Offered: offered,
		}
	case rankingState:
		snap.Ranking = &RankingView{
			SnakeID:            st.round.SnakeID,
			Card:               st.round.Card.ToPrompt(),
			Stage:              st.collector.Stage(),
			Order:              st.collector.Order(),
			DoubleDowns:        st.collector.DoubleDowns(),
			CanLockDoubleDowns: st.collector.Stage() == StageDoubleDown && st.collector.CanLockDoubleDowns(),
		}
	case revealState:
		snap.Reveal = &RevealView{
			SnakeID:     st.round.SnakeID,
			Card:        st.round.Card.ToPrompt(),
			FinalOrder:  append([]string(nil), st.round.FinalOrder...),
			DoubleDowns: copyPicks(st.round.DoubleDowns),
			Revealed:    st.sequencer.Revealed(),
			Remaining:   st.sequencer.Remaining(),
			TimedOut:    st.round.TimedOut,
		}
	case scoringState:
		snap.Scoring = &ScoringView{
			Round:  newRoundRecord(st.round, st.result.clone()),
			IsLast: g.isOver(),
		}
	case gameOverState:
		standings := append([]Standing(nil), st.standings...)
		snap.GameOver = &GameOverView{
			Winner:    standings[0].Player,
			Standings: standings,
		}
	}

	return snap
}

func (g *Game) beginRound(number, snakeIndex int) {
	g.roundNumber = number
	g.snakeIndex = snakeIndex

	var offered []Card
	if g.deck != nil {
		offered = g.deck.DrawThree()
	}
	g.state = snakeTurnState{offered: offered}
}

func (g *Game) startReveal(st rankingState) {
	st.round.lock(st.collector)
	g.transition(revealState{
		round:     st.round,
		sequencer: NewRevealSequencer(st.round.FinalOrder, st.round.Card.RealAnswers, st.round.FakeAnswer),
	})
}

func (g *Game) scoreRound(round *RoundContext) {
	result := Score(round.scoreInput(g.playerIDs()))
	for _, p := range g.players {
		p.AddPoints(result.Deltas[p.ID])
	}
	g.history = append(g.history, newRoundRecord(round, result))
	g.transition(scoringState{round: round, result: result})
}

// isOver applies the end-of-round decision for the configured mode
func (g *Game) isOver() bool {
	switch g.options.Mode {
	case ModeFixedRotation:
		return g.roundNumber >= len(g.players)
	default:
		for _, p := range g.players {
			if p.Score >= g.options.WinningScore {
				return true
			}
		}
		return false
	}
}

// transition moves to the next phase along the phase table
func (g *Game) transition(next phaseState) {
	if !g.Phase().CanTransitionTo(next.phase()) {
		panic(fmt.Sprintf("domain: illegal transition %s -> %s", g.Phase(), next.phase()))
	}
	g.state = next
}

func (g *Game) playerIDs() []string {
	ids := make([]string, len(g.players))
	for i, p := range g.players {
		ids[i] = p.ID
	}
	return ids
}

func (g *Game) guesserIDs() []string {
	ids := make([]string, 0, len(g.players)-1)
	for i, p := range g.players {
		if i != g.snakeIndex {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (g *Game) hasPlayer(id string) bool {
	for _, p := range g.players {
		if p.ID == id {
			return true
		}
	}
	return false
}
