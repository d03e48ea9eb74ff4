package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"outfox/internal/domain"
)

// ClientConnection represents a connected screen
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	Close() error
}

// SessionSettings holds the per-table timing and the options used when a start
// request does not carry its own
type SessionSettings struct {
	Options        domain.Options
	RankingTime    time.Duration // 0 disables the ranking clock
	RevealInterval time.Duration // 0 reveals every slot at once
}

// TableState is what every screen at a table renders
type TableState struct {
	TableCode        string          `json:"tableCode"`
	Game             domain.Snapshot `json:"game"`
	RemainingSeconds int             `json:"remainingSeconds"`
	AutoReveal       bool            `json:"autoReveal"`
}

// TableSession wraps a game with concurrency control, the host clock and client management
type TableSession struct {
	game      *domain.Game
	settings  SessionSettings
	clock     Clock
	mu        sync.RWMutex
	clients   map[string]ClientConnection // clientID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// Host clock
	countdownDone chan struct{}
	revealDone    chan struct{}
	timerGen      int
	remaining     int
	lastActivity  time.Time

	// Event channel for broadcasting
	events chan *domain.GameEvent
	done   chan struct{}
}

// NewTableSession creates a new table session
func NewTableSession(game *domain.Game, settings SessionSettings, clock Clock, logger *slog.Logger) *TableSession {
	session := &TableSession{
		game:         game,
		settings:     settings,
		clock:        clock,
		clients:      make(map[string]ClientConnection),
		logger:       logger.With("tableCode", game.ID),
		lastActivity: clock.Now(),
		events:       make(chan *domain.GameEvent, 100),
		done:         make(chan struct{}),
	}

	go session.eventLoop()

	return session
}

// GetTableCode returns the table's room code
func (s *TableSession) GetTableCode() string {
	return s.game.ID
}

// GetCreatedAt returns when the table was created
func (s *TableSession) GetCreatedAt() time.Time {
	return s.game.CreatedAt
}

// GetPhase returns the current game phase
func (s *TableSession) GetPhase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Phase()
}

// GetPlayerCount returns the number of seated players
func (s *TableSession) GetPlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.game.Players())
}

// DefaultOptions returns the options used when a start request carries none
func (s *TableSession) DefaultOptions() domain.Options {
	return s.settings.Options
}

// LastActivity returns when the table last accepted an action
func (s *TableSession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// RegisterClient registers a screen at this table
func (s *TableSession) RegisterClient(client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.GetClientID()] = client
}

// UnregisterClient removes a screen
func (s *TableSession) UnregisterClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, clientID)
}

// GetClientCount returns the number of connected screens
func (s *TableSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// State returns the table state for a newly connected screen
func (s *TableSession) State() TableState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// OfferedCards returns the Snake's hand with answers, for the requesting screen only
func (s *TableSession) OfferedCards() (snakeID string, hand []domain.Card, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hand, err = s.game.OfferedCards()
	if err != nil {
		return "", nil, err
	}
	snake, _ := s.game.Snake()
	return snake.ID, hand, nil
}

// StartGame seats the named players. A nil opts uses the table defaults.
func (s *TableSession) StartGame(names []string, opts *domain.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	options := s.settings.Options
	if opts != nil {
		options = *opts
	}

	seats := make([]domain.Seat, len(names))
	for i, name := range names {
		seats[i] = domain.Seat{ID: uuid.NewString(), Name: name}
	}

	if err := s.game.StartGame(seats, options); err != nil {
		return err
	}

	s.logger.Info("game started", "players", len(seats), "mode", options.Mode, "winningScore", options.WinningScore)
	s.afterAction()
	return nil
}

// SubmitFakeAnswer locks in the Snake's card and bluff and starts the ranking clock
func (s *TableSession) SubmitFakeAnswer(cardID int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.SubmitFakeAnswer(cardID, text); err != nil {
		return err
	}

	s.startRankingClock()
	s.afterAction()
	return nil
}

// Reorder moves one answer in the group's working order
func (s *TableSession) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.Reorder(from, to); err != nil {
		return err
	}
	s.afterAction()
	return nil
}

// LockRanking freezes the group's order
func (s *TableSession) LockRanking() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.LockRanking(); err != nil {
		return err
	}
	s.afterAction()
	return nil
}

// SelectDoubleDown sets, toggles or clears a guesser's double down
func (s *TableSession) SelectDoubleDown(playerID string, position *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.SelectDoubleDown(playerID, position); err != nil {
		return err
	}
	s.afterAction()
	return nil
}

// LockDoubleDowns ends ranking, stops the clock and opens the reveal
func (s *TableSession) LockDoubleDowns() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.LockDoubleDowns(); err != nil {
		return err
	}

	s.stopTimers()
	s.afterAction()
	return nil
}

// AdvanceReveal turns over the next slot by hand
func (s *TableSession) AdvanceReveal() (domain.RevealEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advanceRevealLocked()
}

// StartReveal turns the remaining slots over on the reveal cadence
func (s *TableSession) StartReveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Phase() != domain.PhaseReveal {
		return domain.ErrInvalidPhaseTransition
	}
	if s.revealDone != nil {
		return nil
	}

	if s.settings.RevealInterval <= 0 {
		for s.game.Phase() == domain.PhaseReveal {
			if _, err := s.advanceRevealLocked(); err != nil {
				return err
			}
		}
		return nil
	}

	s.stopTimers()
	gen := s.timerGen
	done := make(chan struct{})
	s.revealDone = done
	go s.autoReveal(gen, s.clock.NewTicker(s.settings.RevealInterval), done)

	s.afterAction()
	return nil
}

// NextRound leaves Scoring for the next Snake's turn or the final standings
func (s *TableSession) NextRound() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.ProceedToNextRound(); err != nil {
		return err
	}

	snap := s.game.Snapshot()
	if snap.GameOver != nil {
		s.logger.Info("game over", "winner", snap.GameOver.Winner.Name, "score", snap.GameOver.Winner.Score, "rounds", snap.RoundNumber)
		s.queueEvent(domain.NewEvent(domain.EventGameOver, s.game.ID, &domain.GameOverPayload{
			Winner:    snap.GameOver.Winner,
			Standings: snap.GameOver.Standings,
		}))
	}

	s.afterAction()
	return nil
}

// RestartGame starts over with the same players
func (s *TableSession) RestartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.RestartGame(); err != nil {
		return err
	}

	s.stopTimers()
	s.logger.Info("game restarted")
	s.afterAction()
	return nil
}

// startRankingClock starts the countdown for the round now in Ranking (caller must hold lock)
func (s *TableSession) startRankingClock() {
	s.stopTimers()
	if s.settings.RankingTime <= 0 {
		return
	}

	s.remaining = int(s.settings.RankingTime / time.Second)
	if s.remaining < 1 {
		s.remaining = 1
	}

	gen := s.timerGen
	done := make(chan struct{})
	s.countdownDone = done
	go s.rankingCountdown(gen, s.clock.NewTicker(time.Second), done)
}

// rankingCountdown runs the ranking countdown
func (s *TableSession) rankingCountdown(gen int, ticker Ticker, done chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.done:
			return
		case <-ticker.C():
			if !s.countdownTick(gen) {
				return
			}
		}
	}
}

// countdownTick handles one second of the ranking clock. It reports whether the
// countdown should keep running.
func (s *TableSession) countdownTick(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a lock, restart or earlier round already moved on
	if gen != s.timerGen || s.game.Phase() != domain.PhaseRanking {
		return false
	}

	s.remaining--
	if s.remaining > 0 {
		s.queueEvent(domain.NewEvent(domain.EventCountdown, s.game.ID, &domain.CountdownPayload{
			Round:            s.game.RoundNumber(),
			RemainingSeconds: s.remaining,
		}))
		return true
	}

	if err := s.game.TimeoutFired(); err != nil {
		s.logger.Error("failed to force ranking lock", "error", err)
		return false
	}

	s.logger.Info("ranking clock expired", "round", s.game.RoundNumber())
	s.stopTimers()
	s.afterAction()
	return false
}

// autoReveal advances the reveal on every tick until the round is scored
func (s *TableSession) autoReveal(gen int, ticker Ticker, done chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.done:
			return
		case <-ticker.C():
			if !s.revealTick(gen) {
				return
			}
		}
	}
}

func (s *TableSession) revealTick(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.game.Phase() != domain.PhaseReveal {
		return false
	}

	if _, err := s.advanceRevealLocked(); err != nil {
		s.logger.Error("auto reveal failed", "error", err)
		return false
	}
	return s.game.Phase() == domain.PhaseReveal
}

// advanceRevealLocked reveals one slot and scores the round after the last (caller must hold lock)
func (s *TableSession) advanceRevealLocked() (domain.RevealEvent, error) {
	event, err := s.game.AdvanceReveal()
	if err != nil {
		return event, err
	}

	round := s.game.RoundNumber()
	s.queueEvent(domain.NewEvent(domain.EventSlotRevealed, s.game.ID, &domain.SlotRevealedPayload{
		Round:     round,
		Event:     event,
		Remaining: domain.AnswerCount - event.Position - 1,
	}))

	if s.game.Phase() == domain.PhaseScoring {
		s.stopTimers()
		if last, ok := s.game.LastRound(); ok {
			s.logger.Info("round scored", "round", round, "fakeIndex", last.Score.FakeIndex, "caught", last.Score.Caught, "timedOut", last.TimedOut)
			s.queueEvent(domain.NewEvent(domain.EventRoundScored, s.game.ID, &domain.RoundScoredPayload{
				Round:   last,
				Players: s.game.Players(),
			}))
		}
	}

	s.afterAction()
	return event, nil
}

// stopTimers cancels the ranking clock and auto reveal (caller must hold lock)
func (s *TableSession) stopTimers() {
	s.timerGen++
	s.remaining = 0

	if s.countdownDone != nil {
		close(s.countdownDone)
		s.countdownDone = nil
	}
	if s.revealDone != nil {
		close(s.revealDone)
		s.revealDone = nil
	}
}

// afterAction records activity and broadcasts the new state (caller must hold lock)
func (s *TableSession) afterAction() {
	s.lastActivity = s.clock.Now()
	s.queueEvent(domain.NewEvent(domain.EventStateChanged, s.game.ID, s.stateLocked()))
}

func (s *TableSession) stateLocked() TableState {
	return TableState{
		TableCode:        s.game.ID,
		Game:             s.game.Snapshot(),
		RemainingSeconds: s.remaining,
		AutoReveal:       s.revealDone != nil,
	}
}

// queueEvent adds an event to the broadcast queue
func (s *TableSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *TableSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to every screen at the table
func (s *TableSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "clientID", clientID, "error", err)
		}
	}
}

// Close shuts down the session
func (s *TableSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.mu.Lock()
	s.stopTimers()
	s.mu.Unlock()

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
