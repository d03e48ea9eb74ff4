package ws_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"outfox/internal/app"
	"outfox/internal/cards"
	"outfox/internal/domain"
	"outfox/internal/transport/ws"
)

type wireMessage struct {
	Type    ws.MessageType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func setup(t *testing.T) (*httptest.Server, *app.TableSession) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewTableHub(cards.NewStore(""), app.HubConfig{
		Session: app.SessionSettings{Options: domain.DefaultOptions()},
	}, app.RealClock{}, logger)
	t.Cleanup(hub.Close)

	session, err := hub.CreateTable()
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(ws.NewHandler(hub, logger))
	t.Cleanup(srv.Close)
	return srv, session
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?table=" + code
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType ws.MessageType, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// await reads until a message of the given type arrives
func await(t *testing.T, conn *websocket.Conn, msgType ws.MessageType) wireMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func awaitPhase(t *testing.T, conn *websocket.Conn, phase domain.Phase) app.TableState {
	t.Helper()
	for {
		msg := await(t, conn, ws.MsgState)
		var state app.TableState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			t.Fatal(err)
		}
		if state.Game.Phase == phase {
			return state
		}
	}
}

func TestConnectRejectsUnknownTable(t *testing.T) {
	srv, _ := setup(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?table=NOPE99"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded for unknown table")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", resp)
	}
}

func TestConnectedCarriesState(t *testing.T) {
	srv, session := setup(t)
	conn := dial(t, srv, strings.ToLower(session.GetTableCode()))

	msg := await(t, conn, ws.MsgConnected)
	var connected struct {
		ClientID string         `json:"clientId"`
		TableID  string         `json:"tableId"`
		State    app.TableState `json:"state"`
	}
	if err := json.Unmarshal(msg.Payload, &connected); err != nil {
		t.Fatal(err)
	}
	if connected.ClientID == "" || connected.TableID != session.GetTableCode() {
		t.Fatalf("connected = %+v", connected)
	}
	if connected.State.Game.Phase != domain.PhaseSetup {
		t.Fatalf("phase = %s", connected.State.Game.Phase)
	}
}

func TestRoundTripIntoRanking(t *testing.T) {
	srv, session := setup(t)
	conn := dial(t, srv, session.GetTableCode())
	await(t, conn, ws.MsgConnected)

	send(t, conn, ws.MsgStartGame, ws.StartGamePayload{Players: []string{"ana", "ben", "cy"}})
	state := awaitPhase(t, conn, domain.PhaseSnakeTurn)
	if len(state.Game.Players) != 3 || state.Game.Players[0].Name != "Ana" {
		t.Fatalf("players = %+v", state.Game.Players)
	}
	if state.Game.SnakeTurn == nil || len(state.Game.SnakeTurn.Offered) != 3 {
		t.Fatalf("snake turn = %+v", state.Game.SnakeTurn)
	}

	card := state.Game.SnakeTurn.Offered[0]
	send(t, conn, ws.MsgSubmitFakeAnswer, ws.SubmitFakeAnswerPayload{CardID: card.ID, Text: "  made up  "})
	state = awaitPhase(t, conn, domain.PhaseRanking)
	if state.Game.Ranking == nil || len(state.Game.Ranking.Order) != 6 {
		t.Fatalf("ranking = %+v", state.Game.Ranking)
	}
	if state.Game.Ranking.Card.ID != card.ID {
		t.Errorf("ranking card = %d, want %d", state.Game.Ranking.Card.ID, card.ID)
	}
}

func TestActionErrorsCarryCodes(t *testing.T) {
	srv, session := setup(t)
	conn := dial(t, srv, session.GetTableCode())
	await(t, conn, ws.MsgConnected)

	tests := []struct {
		name    string
		msgType ws.MessageType
		payload interface{}
		code    string
	}{
		{"out of phase", ws.MsgLockRanking, nil, ws.ErrCodeInvalidPhase},
		{"too few players", ws.MsgStartGame, ws.StartGamePayload{Players: []string{"solo"}}, ws.ErrCodeInvalidPlayerCount},
		{"bad options", ws.MsgStartGame, ws.StartGamePayload{Players: []string{"a", "b"}, WinningScore: -1}, ws.ErrCodeInvalidOptions},
		{"unknown type", ws.MessageType("dance"), nil, ws.ErrCodeInvalidMessage},
		{"missing payload", ws.MsgReorder, nil, ws.ErrCodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msgType, tt.payload)
			msg := await(t, conn, ws.MsgError)
			var payload ws.ErrorPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatal(err)
			}
			if payload.Code != tt.code {
				t.Fatalf("code = %q, want %q (%s)", payload.Code, tt.code, payload.Message)
			}
		})
	}
}

func TestPingPong(t *testing.T) {
	srv, session := setup(t)
	conn := dial(t, srv, session.GetTableCode())
	await(t, conn, ws.MsgConnected)

	send(t, conn, ws.MsgPing, nil)
	await(t, conn, ws.MsgPong)
}

func TestErrorCode(t *testing.T) {
	if got := ws.ErrorCode(domain.ErrSnakeCannotDoubleDown); got != ws.ErrCodeSnakeDoubleDown {
		t.Errorf("ErrorCode(snake) = %q", got)
	}
	wrapped := fmt.Errorf("advance reveal: %w", domain.ErrRevealFinished)
	if got := ws.ErrorCode(wrapped); got != ws.ErrCodeRevealFinished {
		t.Errorf("ErrorCode(wrapped) = %q", got)
	}
	if got := ws.ErrorCode(io.EOF); got != ws.ErrCodeInternalError {
		t.Errorf("ErrorCode(other) = %q", got)
	}
}

func TestShowCardsAnswersOnlyTheAsker(t *testing.T) {
	srv, session := setup(t)
	host := dial(t, srv, session.GetTableCode())
	await(t, host, ws.MsgConnected)
	phone := dial(t, srv, session.GetTableCode())
	await(t, phone, ws.MsgConnected)

	send(t, host, ws.MsgShowCards, nil)
	msg := await(t, host, ws.MsgError)
	var rejected ws.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &rejected); err != nil {
		t.Fatal(err)
	}
	if rejected.Code != ws.ErrCodeInvalidPhase {
		t.Fatalf("show_cards in setup: code = %q", rejected.Code)
	}

	send(t, host, ws.MsgStartGame, ws.StartGamePayload{Players: []string{"ana", "ben"}})
	state := awaitPhase(t, phone, domain.PhaseSnakeTurn)
	raw, _ := json.Marshal(state.Game)
	if strings.Contains(string(raw), `"answers"`) {
		t.Fatalf("broadcast state carries answers: %s", raw)
	}

	send(t, host, ws.MsgShowCards, nil)
	msg = await(t, host, ws.MsgOfferedCards)
	var hand ws.OfferedCardsPayload
	if err := json.Unmarshal(msg.Payload, &hand); err != nil {
		t.Fatal(err)
	}
	if hand.SnakeID != state.Game.SnakeTurn.SnakeID || len(hand.Cards) != domain.HandSize {
		t.Fatalf("hand = %+v", hand)
	}
	for i, c := range hand.Cards {
		if c.ID != state.Game.SnakeTurn.Offered[i].ID || len(c.RealAnswers) != domain.RealAnswerCount {
			t.Errorf("card %d = %+v", i, c)
		}
	}

	// the other screen sees the pong it asked for, never the hand
	send(t, phone, ws.MsgPing, nil)
	for {
		phone.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got wireMessage
		if err := phone.ReadJSON(&got); err != nil {
			t.Fatalf("phone read: %v", err)
		}
		if got.Type == ws.MsgOfferedCards {
			t.Fatal("offered cards reached a screen that did not ask")
		}
		if got.Type == ws.MsgPong {
			break
		}
	}
}
