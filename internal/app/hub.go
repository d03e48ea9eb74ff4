package app

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"outfox/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for table codes
	DefaultRoomCodeLength = 6

	// DefaultStaleTimeout is how long an empty, idle table survives
	DefaultStaleTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// RoomCodeChars are characters used for table codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DeckFactory builds a fresh draw pile for each new table
type DeckFactory interface {
	NewDeck(rng domain.RNG) (*domain.Deck, error)
}

// HubConfig configures the table hub
type HubConfig struct {
	RoomCodeLength int
	StaleTimeout   time.Duration
	Session        SessionSettings
}

// HubStats is a point-in-time summary of the hub
type HubStats struct {
	Tables          int `json:"tables"`
	Clients         int `json:"clients"`
	GamesInProgress int `json:"gamesInProgress"`
}

// TableHub manages all active tables
type TableHub struct {
	sessions map[string]*TableSession
	mu       sync.RWMutex
	decks    DeckFactory
	cfg      HubConfig
	clock    Clock
	logger   *slog.Logger
	entropy  io.Reader
	done     chan struct{}
	closed   sync.Once
}

// NewTableHub creates a new table hub and starts its cleanup loop
func NewTableHub(decks DeckFactory, cfg HubConfig, clock Clock, logger *slog.Logger) *TableHub {
	if cfg.RoomCodeLength <= 0 {
		cfg.RoomCodeLength = DefaultRoomCodeLength
	}
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = DefaultStaleTimeout
	}
	if clock == nil {
		clock = RealClock{}
	}

	hub := &TableHub{
		sessions: make(map[string]*TableSession),
		decks:    decks,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		entropy:  rand.Reader,
		done:     make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// CreateTable opens a new table with its own draw pile
func (h *TableHub) CreateTable() (*TableSession, error) {
	rng := domain.DefaultRNG()
	deck, err := h.decks.NewDeck(rng)
	if err != nil {
		return nil, fmt.Errorf("build deck: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code, err = h.generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generate table code: %w", err)
		}
		if _, exists := h.sessions[code]; !exists {
			break
		}
	}

	if _, exists := h.sessions[code]; exists {
		return nil, fmt.Errorf("failed to generate unique table code")
	}

	game := domain.NewGame(code, deck, rng)
	session := NewTableSession(game, h.cfg.Session, h.clock, h.logger)
	h.sessions[code] = session

	h.logger.Info("table created", "tableCode", code, "cards", deck.Size())

	return session, nil
}

// GetTable returns a table by code
func (h *TableHub) GetTable(code string) (*TableSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[code]
	if !ok {
		return nil, domain.ErrTableNotFound
	}

	return session, nil
}

// DeleteTable closes and removes a table
func (h *TableHub) DeleteTable(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[code]; ok {
		session.Close()
		delete(h.sessions, code)
		h.logger.Info("table deleted", "tableCode", code)
	}
}

// Stats summarizes the hub
func (h *TableHub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats{Tables: len(h.sessions)}
	for _, session := range h.sessions {
		stats.Clients += session.GetClientCount()
		phase := session.GetPhase()
		if phase != domain.PhaseSetup && !phase.IsTerminal() {
			stats.GamesInProgress++
		}
	}
	return stats
}

// Close shuts down the hub and all tables
func (h *TableHub) Close() {
	h.closed.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*TableSession)
}

// generateRoomCode generates a random table code
func (h *TableHub) generateRoomCode() (string, error) {
	b := make([]byte, h.cfg.RoomCodeLength)
	if _, err := io.ReadFull(h.entropy, b); err != nil {
		return "", err
	}

	code := make([]byte, h.cfg.RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code), nil
}

// cleanupLoop periodically cleans up stale tables
func (h *TableHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.CleanupStale()
		}
	}
}

// CleanupStale removes tables with no connected screens that have been idle too long.
// It returns how many were removed.
func (h *TableHub) CleanupStale() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	stale := make([]string, 0)

	for code, session := range h.sessions {
		if session.GetClientCount() == 0 && now.Sub(session.LastActivity()) > h.cfg.StaleTimeout {
			stale = append(stale, code)
		}
	}

	for _, code := range stale {
		if session, ok := h.sessions[code]; ok {
			session.Close()
			delete(h.sessions, code)
			h.logger.Info("stale table cleaned up", "tableCode", code)
		}
	}

	return len(stale)
}
