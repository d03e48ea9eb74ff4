package ws

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"outfox/internal/app"
	"outfox/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents one screen connected to a table
type Client struct {
	conn     *websocket.Conn
	session  *app.TableSession
	clientID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.TableSession, clientID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// GetClientID returns the ID of this connection
func (c *Client) GetClientID() string {
	return c.clientID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.GameEvent); ok {
		message = FromEvent(event)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "clientID", c.clientID)
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.clientID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	var err error
	switch msg.Type {
	case MsgStartGame:
		err = c.handleStartGame(msg.Payload)
	case MsgSubmitFakeAnswer:
		var p SubmitFakeAnswerPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		err = c.session.SubmitFakeAnswer(p.CardID, p.Text)
	case MsgReorder:
		var p ReorderPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		err = c.session.Reorder(p.From, p.To)
	case MsgLockRanking:
		err = c.session.LockRanking()
	case MsgSelectDoubleDown:
		var p SelectDoubleDownPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		err = c.session.SelectDoubleDown(p.PlayerID, p.Position)
	case MsgLockDoubleDowns:
		err = c.session.LockDoubleDowns()
	case MsgAdvanceReveal:
		_, err = c.session.AdvanceReveal()
	case MsgStartReveal:
		err = c.session.StartReveal()
	case MsgNextRound:
		err = c.session.NextRound()
	case MsgRestartGame:
		err = c.session.RestartGame()
	case MsgShowCards:
		err = c.sendOfferedCards()
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
		return
	}

	if err != nil {
		code := ErrorCode(err)
		if code == ErrCodeInternalError {
			c.logger.Error("action failed", "type", msg.Type, "clientID", c.clientID, "error", err)
		} else {
			c.logger.Debug("action rejected", "type", msg.Type, "clientID", c.clientID, "error", err)
		}
		c.sendError(code, err.Error())
	}
}

// handleStartGame handles a start_game message
func (c *Client) handleStartGame(raw json.RawMessage) error {
	var p StartGamePayload
	if !c.decode(raw, &p) {
		return nil
	}

	if p.Mode == "" && p.WinningScore == 0 && p.DoubleDownMode == "" {
		return c.session.StartGame(p.Players, nil)
	}

	opts := c.session.DefaultOptions()
	if p.Mode != "" {
		opts.Mode = parseMode(p.Mode)
	}
	if p.WinningScore != 0 {
		opts.WinningScore = p.WinningScore
	}
	if p.DoubleDownMode != "" {
		opts.DoubleDown = parseDoubleDown(p.DoubleDownMode)
	}

	return c.session.StartGame(p.Players, &opts)
}

// decode unmarshals a payload, answering with an error message on failure
func (c *Client) decode(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		c.sendError(ErrCodeInvalidMessage, "Payload is required")
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return false
	}
	return true
}

func parseMode(s string) domain.GameMode {
	switch strings.ToLower(s) {
	case "threshold", "score_threshold":
		return domain.ModeScoreThreshold
	case "rotation", "fixed_rotation":
		return domain.ModeFixedRotation
	default:
		return domain.GameMode(s)
	}
}

func parseDoubleDown(s string) domain.DoubleDownMode {
	switch strings.ToLower(s) {
	case "shared":
		return domain.DoubleDownShared
	case "per-player", "per_player":
		return domain.DoubleDownPerPlayer
	default:
		return domain.DoubleDownMode(s)
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ClientID: c.clientID,
		TableID:  c.session.GetTableCode(),
		State:    c.session.State(),
	}

	msg := NewServerMessage(MsgConnected, payload)
	c.Send(msg)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendOfferedCards sends the Snake's hand to this client alone
func (c *Client) sendOfferedCards() error {
	snakeID, hand, err := c.session.OfferedCards()
	if err != nil {
		return err
	}

	msg := NewServerMessage(MsgOfferedCards, &OfferedCardsPayload{SnakeID: snakeID, Cards: hand})
	return c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}
