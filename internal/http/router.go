package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/notes/internal/service/auth"
	"github.com/splax/notes/internal/service/notes"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	auth       auth.Service
	notes      notes.Service
	metrics    *metrics
	corsOrigin string
	dbHealth   func(context.Context) error
}

const (
	healthCheckTimeout = 2 * time.Second
	maxBodyBytes       = 1 << 20
	livenessMessage    = "Notes API is running"
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, notesSvc notes.Service, corsOrigin string, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		auth:       authSvc,
		notes:      notesSvc,
		metrics:    newMetrics(),
		corsOrigin: strings.TrimSpace(corsOrigin),
		dbHealth:   dbHealth,
	}
	r.register()
	return r
}

// ServeHTTP applies CORS headers and delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.corsOrigin != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", r.corsOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Max-Age", "600")
		if r.corsOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.audit("/", r.handleRoot))
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", r.metrics.handler())
	r.mux.HandleFunc("/api/auth/register", r.audit("/api/auth/register", r.handleRegister))
	r.mux.HandleFunc("/api/auth/login", r.audit("/api/auth/login", r.handleLogin))
	r.mux.HandleFunc("/api/auth/logout", r.audit("/api/auth/logout", r.requireAuth(r.handleLogout)))
	r.mux.HandleFunc("/api/notes", r.audit("/api/notes", r.requireAuth(r.handleNotes)))
	r.mux.HandleFunc("/api/notes/", r.audit("/api/notes/{id}", r.requireAuth(r.handleNoteByID)))
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		r.methodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, livenessMessage)
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !r.decode(w, req, &payload) {
		return
	}
	session, err := r.auth.Register(req.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: session.Token, User: toUserResponse(session.User)})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !r.decode(w, req, &payload) {
		return
	}
	session, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, User: toUserResponse(session.User)})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	if err := r.auth.Logout(req.Context(), info.Claims); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (r *Router) handleNotes(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		list, err := r.notes.List(req.Context(), info.UserID)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, toNoteResponses(list))
	case http.MethodPost:
		var payload struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if !r.decode(w, req, &payload) {
			return
		}
		note, err := r.notes.Create(req.Context(), info.UserID, payload.Title, payload.Content)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusCreated, toNoteResponse(*note))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleNoteByID(w http.ResponseWriter, req *http.Request) {
	noteID := strings.TrimPrefix(req.URL.Path, "/api/notes/")
	if noteID == "" || strings.Contains(noteID, "/") {
		r.notFound(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPut:
		var payload struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if !r.decode(w, req, &payload) {
			return
		}
		note, err := r.notes.Update(req.Context(), info.UserID, noteID, payload.Title, payload.Content)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, toNoteResponse(*note))
	case http.MethodDelete:
		if err := r.notes.Delete(req.Context(), info.UserID, noteID); err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// decode reads a JSON body into v, answering 400 on failure.
func (r *Router) decode(w http.ResponseWriter, req *http.Request, v any) bool {
	body := http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (r *Router) mustAuthInfo(w http.ResponseWriter, req *http.Request) (authInfo, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "server error")
		return authInfo{}, false
	}
	return info, true
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
