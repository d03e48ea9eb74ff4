package ws

import (
	"encoding/json"
	"errors"
	"time"

	"outfox/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgStartGame        MessageType = "start_game"
	MsgSubmitFakeAnswer MessageType = "submit_fake_answer"
	MsgReorder          MessageType = "reorder"
	MsgLockRanking      MessageType = "lock_ranking"
	MsgSelectDoubleDown MessageType = "select_double_down"
	MsgLockDoubleDowns  MessageType = "lock_double_downs"
	MsgAdvanceReveal    MessageType = "advance_reveal"
	MsgStartReveal      MessageType = "start_reveal"
	MsgNextRound        MessageType = "next_round"
	MsgRestartGame      MessageType = "restart_game"
	MsgShowCards        MessageType = "show_cards"
	MsgPing             MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected    MessageType = "connected"
	MsgState        MessageType = "state"
	MsgCountdown    MessageType = "countdown"
	MsgSlotRevealed MessageType = "slot_revealed"
	MsgRoundScored  MessageType = "round_scored"
	MsgGameOver     MessageType = "game_over"
	MsgError        MessageType = "error"
	MsgPong         MessageType = "pong"
	MsgOfferedCards MessageType = "offered_cards"
)

// eventMessageTypes maps table events onto the wire
var eventMessageTypes = map[domain.EventType]MessageType{
	domain.EventStateChanged: MsgState,
	domain.EventCountdown:    MsgCountdown,
	domain.EventSlotRevealed: MsgSlotRevealed,
	domain.EventRoundScored:  MsgRoundScored,
	domain.EventGameOver:     MsgGameOver,
	domain.EventError:        MsgError,
}

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// FromEvent converts a table event into a server message
func FromEvent(event *domain.GameEvent) *ServerMessage {
	msgType, ok := eventMessageTypes[event.Type]
	if !ok {
		msgType = MessageType(event.Type)
	}
	return &ServerMessage{
		Type:      msgType,
		Payload:   event.Payload,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// StartGamePayload is the payload for start_game message. Options left empty use
// the table defaults.
type StartGamePayload struct {
	Players        []string `json:"players"`
	Mode           string   `json:"mode,omitempty"`
	WinningScore   int      `json:"winningScore,omitempty"`
	DoubleDownMode string   `json:"doubleDownMode,omitempty"`
}

// SubmitFakeAnswerPayload is the payload for submit_fake_answer message
type SubmitFakeAnswerPayload struct {
	CardID int    `json:"cardId"`
	Text   string `json:"text"`
}

// ReorderPayload is the payload for reorder message
type ReorderPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SelectDoubleDownPayload is the payload for select_double_down message. A null
// position clears the pick.
type SelectDoubleDownPayload struct {
	PlayerID string `json:"playerId"`
	Position *int   `json:"position"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID string      `json:"clientId"`
	TableID  string      `json:"tableId"`
	State    interface{} `json:"state"`
}

// OfferedCardsPayload answers show_cards with the Snake's hand. It is sent to the
// asking screen only, never broadcast.
type OfferedCardsPayload struct {
	SnakeID string        `json:"snakeId"`
	Cards   []domain.Card `json:"cards"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage       = "INVALID_MESSAGE"
	ErrCodeTableNotFound        = "TABLE_NOT_FOUND"
	ErrCodeInvalidPlayerCount   = "INVALID_PLAYER_COUNT"
	ErrCodeDuplicatePlayer      = "DUPLICATE_PLAYER"
	ErrCodeInvalidOptions       = "INVALID_OPTIONS"
	ErrCodeEmptyFakeAnswer      = "EMPTY_FAKE_ANSWER"
	ErrCodeCardNotOffered       = "CARD_NOT_OFFERED"
	ErrCodeReorderOutOfBounds   = "REORDER_OUT_OF_BOUNDS"
	ErrCodeIncompleteDoubleDown = "INCOMPLETE_DOUBLE_DOWN"
	ErrCodeSnakeDoubleDown      = "SNAKE_CANNOT_DOUBLE_DOWN"
	ErrCodeInvalidPosition      = "INVALID_DOUBLE_DOWN_POSITION"
	ErrCodePlayerNotFound       = "PLAYER_NOT_FOUND"
	ErrCodeInvalidPhase         = "INVALID_PHASE"
	ErrCodeRevealFinished       = "REVEAL_FINISHED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrTableNotFound, ErrCodeTableNotFound},
	{domain.ErrInvalidPlayerCount, ErrCodeInvalidPlayerCount},
	{domain.ErrDuplicatePlayer, ErrCodeDuplicatePlayer},
	{domain.ErrInvalidOptions, ErrCodeInvalidOptions},
	{domain.ErrEmptyFakeAnswer, ErrCodeEmptyFakeAnswer},
	{domain.ErrCardNotOffered, ErrCodeCardNotOffered},
	{domain.ErrReorderOutOfBounds, ErrCodeReorderOutOfBounds},
	{domain.ErrIncompleteDoubleDown, ErrCodeIncompleteDoubleDown},
	{domain.ErrSnakeCannotDoubleDown, ErrCodeSnakeDoubleDown},
	{domain.ErrInvalidDoubleDownPosition, ErrCodeInvalidPosition},
	{domain.ErrPlayerNotFound, ErrCodePlayerNotFound},
	{domain.ErrInvalidPhaseTransition, ErrCodeInvalidPhase},
	{domain.ErrRevealFinished, ErrCodeRevealFinished},
}

// ErrorCode maps an action error to its stable wire code
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ErrCodeInternalError
}
