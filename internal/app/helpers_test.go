package app_test

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"outfox/internal/app"
	"outfox/internal/cards"
	"outfox/internal/domain"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) NewTicker(_ time.Duration) app.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) latest(t *testing.T) *fakeTicker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		t.Fatal("no ticker was started")
	}
	return c.tickers[len(c.tickers)-1]
}

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

// tick delivers one tick and reports whether anything was listening
func (f *fakeTicker) tick() bool {
	select {
	case f.ch <- time.Time{}:
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

type recordingClient struct {
	id     string
	mu     sync.Mutex
	events []*domain.GameEvent
	closed bool
}

func (c *recordingClient) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := message.(*domain.GameEvent); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *recordingClient) GetClientID() string { return c.id }

func (c *recordingClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingClient) count(eventType domain.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHub(t *testing.T, clock *fakeClock, settings app.SessionSettings) *app.TableHub {
	t.Helper()
	hub := app.NewTableHub(cards.NewStore(""), app.HubConfig{Session: settings}, clock, discardLogger())
	t.Cleanup(hub.Close)
	return hub
}

// toRanking starts a three player game and submits the Snake's first offered card
func toRanking(t *testing.T, session *app.TableSession) domain.Snapshot {
	t.Helper()

	if err := session.StartGame([]string{"ada", "bo", "cy"}, nil); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	snap := session.State().Game
	if err := session.SubmitFakeAnswer(snap.SnakeTurn.Offered[0].ID, "A bluff"); err != nil {
		t.Fatalf("SubmitFakeAnswer: %v", err)
	}
	return session.State().Game
}
