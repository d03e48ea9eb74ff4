package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"outfox/internal/app"
	"outfox/internal/cards"
	"outfox/internal/config"
	httpTransport "outfox/internal/transport/http"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) (http.Handler, *app.TableHub) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewTableHub(cards.NewStore(""), app.HubConfig{}, app.RealClock{}, logger)
	t.Cleanup(hub.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, Env: "development"},
	}
	web := fstest.MapFS{
		"web/index.html":     {Data: []byte("<!doctype html><title>Outfox</title>")},
		"web/static/app.css": {Data: []byte("body{}")},
	}
	return httpTransport.NewServer(cfg, hub, logger, web).Handler(), hub
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if data != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func createTable(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/tables")
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created httpTransport.CreateTableResponse
	env := decode(t, rec, &created)
	if !env.Success || created.TableCode == "" {
		t.Fatalf("create response = %s", rec.Body.String())
	}
	return created.TableCode
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/health")
	var health httpTransport.HealthResponse
	decode(t, rec, &health)
	if rec.Code != http.StatusOK || health.Status != "ok" {
		t.Fatalf("health = %d %+v", rec.Code, health)
	}
}

func TestCreateAndGetTable(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/tables")
	var created httpTransport.CreateTableResponse
	decode(t, rec, &created)
	if !strings.HasSuffix(created.JoinLink, "/table/"+created.TableCode) {
		t.Errorf("join link = %q", created.JoinLink)
	}
	if created.QRCodeURL != "/api/tables/"+created.TableCode+"/qr" {
		t.Errorf("qr url = %q", created.QRCodeURL)
	}

	rec = do(t, h, http.MethodGet, "/api/tables/"+strings.ToLower(created.TableCode))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var table httpTransport.GetTableResponse
	decode(t, rec, &table)
	if table.TableCode != created.TableCode {
		t.Errorf("table code = %q, want %q", table.TableCode, created.TableCode)
	}
	if table.Phase != "SETUP" || table.PlayerCount != 0 || table.ClientCount != 0 {
		t.Errorf("table = %+v", table)
	}
	if table.Age == "" || table.LastActive == "" {
		t.Errorf("missing humanized times: %+v", table)
	}
}

func TestGetTableNotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/tables/NOPE99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	env := decode(t, rec, nil)
	if env.Success || env.Error == nil || env.Error.Code != "TABLE_NOT_FOUND" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestTableExists(t *testing.T) {
	h, _ := newTestServer(t)
	code := createTable(t, h)

	for path, want := range map[string]bool{
		"/api/tables/" + code + "/exists":                  true,
		"/api/tables/" + strings.ToLower(code) + "/exists": true,
		"/api/tables/ZZZZZZ/exists":                        false,
	} {
		var got httpTransport.TableExistsResponse
		decode(t, do(t, h, http.MethodGet, path), &got)
		if got.Exists != want {
			t.Errorf("%s exists = %v, want %v", path, got.Exists, want)
		}
	}
}

func TestTableQR(t *testing.T) {
	h, _ := newTestServer(t)
	code := createTable(t, h)

	rec := do(t, h, http.MethodGet, "/api/tables/"+code+"/qr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	if rec := do(t, h, http.MethodGet, "/api/tables/ZZZZZZ/qr"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown table qr status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	h, _ := newTestServer(t)
	createTable(t, h)
	createTable(t, h)

	var stats app.HubStats
	decode(t, do(t, h, http.MethodGet, "/api/stats"), &stats)
	if stats.Tables != 2 || stats.Clients != 0 || stats.GamesInProgress != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/nothing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSPAFallbackAndStatic(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/table/ABCDEF")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>Outfox</title>") {
		t.Fatalf("spa = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/static/app.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("static = %d %q", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodGet, "/static/missing.js"); rec.Code != http.StatusNotFound {
		t.Errorf("missing static status = %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/api/tables")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
