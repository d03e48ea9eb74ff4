package domain

import "time"

// EventType represents the type of table event
type EventType string

const (
	EventStateChanged EventType = "STATE_CHANGED"
	EventCountdown    EventType = "COUNTDOWN"
	EventSlotRevealed EventType = "SLOT_REVEALED"
	EventRoundScored  EventType = "ROUND_SCORED"
	EventGameOver     EventType = "GAME_OVER"
	EventError        EventType = "ERROR"
)

// GameEvent is something that happened at a table, fanned out to every connected screen
type GameEvent struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"gameId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new game event
func NewEvent(eventType EventType, gameID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// CountdownPayload is sent every second while the ranking clock runs
type CountdownPayload struct {
	Round            int `json:"round"`
	RemainingSeconds int `json:"remainingSeconds"`
}

// SlotRevealedPayload is sent for each revealed slot
type SlotRevealedPayload struct {
	Round     int         `json:"round"`
	Event     RevealEvent `json:"event"`
	Remaining int         `json:"remaining"`
}

// RoundScoredPayload is sent once the last slot is revealed
type RoundScoredPayload struct {
	Round   RoundRecord  `json:"round"`
	Players []PlayerInfo `json:"players"`
}

// GameOverPayload is sent when the game ends
type GameOverPayload struct {
	Winner    PlayerInfo `json:"winner"`
	Standings []Standing `json:"standings"`
}

// ErrorPayload is sent when an error occurs
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
