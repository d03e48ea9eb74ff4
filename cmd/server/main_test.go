package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"outfox/internal/config"
	"outfox/internal/domain"
	httpTransport "outfox/internal/transport/http"
)

func loadConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	cmd := newCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := config.Load(cmd.Flags(), "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHub_AppliesGameConfig(t *testing.T) {
	cfg := loadConfig(t, "--game-mode", "rotation", "--double-down", "per-player", "--room-code-length", "4")

	hub, err := newHub(cfg, quietLogger())
	if err != nil {
		t.Fatalf("newHub: %v", err)
	}
	t.Cleanup(hub.Close)

	session, err := hub.CreateTable()
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if len(session.GetTableCode()) != 4 {
		t.Errorf("table code = %q", session.GetTableCode())
	}
	opts := session.DefaultOptions()
	if opts.Mode != domain.ModeFixedRotation || opts.DoubleDown != domain.DoubleDownPerPlayer {
		t.Errorf("options = %+v", opts)
	}
}

func TestNewHub_BadCardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := loadConfig(t, "--cards", path)

	if _, err := newHub(cfg, quietLogger()); err == nil {
		t.Fatal("expected an error for an empty card file")
	}
}

func TestCommand_RejectsInvalidConfig(t *testing.T) {
	cmd := newCmd()
	cmd.SetArgs([]string{"--port", "0"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected port 0 to be rejected")
	}
}

func TestEmbeddedWebShell(t *testing.T) {
	cfg := loadConfig(t)
	logger := quietLogger()
	hub, err := newHub(cfg, logger)
	if err != nil {
		t.Fatalf("newHub: %v", err)
	}
	t.Cleanup(hub.Close)

	handler := httpTransport.NewServer(cfg, hub, logger, webFS).Handler()

	for path, want := range map[string]string{
		"/":              "<title>Outfox</title>",
		"/table/ABCDEF":  "<title>Outfox</title>",
		"/static/app.js": "WebSocket",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), want) {
			t.Errorf("GET %s = %d, missing %q", path, rec.Code, want)
		}
	}
}
