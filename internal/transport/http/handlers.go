package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"outfox/internal/app"
	"outfox/internal/domain"
)

// qrSize is the edge length of table QR codes in pixels
const qrSize = 320

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateTableResponse is the response for table creation
type CreateTableResponse struct {
	TableCode string `json:"tableCode"`
	JoinLink  string `json:"joinLink"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// GetTableResponse is the response for getting table info
type GetTableResponse struct {
	TableCode   string    `json:"tableCode"`
	Phase       string    `json:"phase"`
	PlayerCount int       `json:"playerCount"`
	ClientCount int       `json:"clientCount"`
	CreatedAt   time.Time `json:"createdAt"`
	Age         string    `json:"age"`
	LastActive  string    `json:"lastActive"`
}

// TableExistsResponse is the response for checking if a table exists
type TableExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// handleCreateTable handles POST /api/tables
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := s.hub.CreateTable()
	if err != nil {
		s.logger.Error("failed to create table", "error", err)
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create table")
		return
	}

	code := session.GetTableCode()
	s.sendSuccess(w, &CreateTableResponse{
		TableCode: code,
		JoinLink:  joinLink(r, code),
		QRCodeURL: "/api/tables/" + code + "/qr",
	})
}

// handleGetTable handles GET /api/tables/:code
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := s.lookupTable(w, ps)
	if !ok {
		return
	}

	s.sendSuccess(w, &GetTableResponse{
		TableCode:   session.GetTableCode(),
		Phase:       string(session.GetPhase()),
		PlayerCount: session.GetPlayerCount(),
		ClientCount: session.GetClientCount(),
		CreatedAt:   session.GetCreatedAt(),
		Age:         humanize.Time(session.GetCreatedAt()),
		LastActive:  humanize.Time(session.LastActivity()),
	})
}

// handleTableExists handles GET /api/tables/:code/exists
func (s *Server) handleTableExists(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, err := s.hub.GetTable(strings.ToUpper(ps.ByName("code")))

	s.sendSuccess(w, &TableExistsResponse{
		Exists: err == nil,
	})
}

// handleTableQR handles GET /api/tables/:code/qr with a PNG of the join link
func (s *Server) handleTableQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := s.lookupTable(w, ps)
	if !ok {
		return
	}

	png, err := qrcode.Encode(joinLink(r, session.GetTableCode()), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr generation failed", "tableCode", session.GetTableCode(), "error", err)
		s.sendError(w, http.StatusInternalServerError, "QR_FAILED", "QR generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendSuccess(w, s.hub.Stats())
}

// handleStatic serves static files
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	path := strings.TrimPrefix(ps.ByName("filepath"), "/")

	file, err := s.webFS.Open("static/" + path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	seeker, ok := file.(io.ReadSeeker)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), seeker)
}

// handleSPA serves the single-page application for every unmatched GET outside /api/
func (s *Server) handleSPA(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.sendError(w, http.StatusNotFound, "NOT_FOUND", "Unknown endpoint")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, err := s.webFS.Open("index.html")
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	seeker, ok := file.(io.ReadSeeker)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", stat.ModTime(), seeker)
}

// lookupTable resolves the :code parameter, answering 404 when the table is unknown
func (s *Server) lookupTable(w http.ResponseWriter, ps httprouter.Params) (*app.TableSession, bool) {
	code := strings.ToUpper(ps.ByName("code"))
	if code == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_TABLE_CODE", "Table code is required")
		return nil, false
	}

	session, err := s.hub.GetTable(code)
	if err != nil {
		if errors.Is(err, domain.ErrTableNotFound) {
			s.sendError(w, http.StatusNotFound, "TABLE_NOT_FOUND", "Table not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return nil, false
	}

	return session, true
}

// joinLink builds the URL a phone opens to join a table
func joinLink(r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/table/" + code
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
