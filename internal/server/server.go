// Package server exposes the browser-based settings editor: a JSON API over
// the persisted configuration, the category registry, live status, and a
// websocket push channel for the keystroke counter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/engine"
	"github.com/rbright/nudge/internal/registry"
)

// Store is the server's view of the configuration owner. ApplyPatch applies a
// partial settings document, persists it, and reloads the engine; a
// *config.ValidationError carries the accumulated violations back to the
// client.
type Store interface {
	Document() config.Document
	ApplyPatch(patch []byte) error
	Categories() []registry.Category
	Status() engine.Status
}

// Server is the HTTP settings server.
type Server struct {
	hub        *Hub
	store      Store
	logger     *slog.Logger
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New builds the settings server from config.
func New(cfg config.ServerConfig, store Store, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		hub:    hub,
		store:  store,
		logger: logger,
	}

	allowed := cfg.AllowedOrigins
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, candidate := range allowed {
				if strings.EqualFold(origin, candidate) {
					return true
				}
			}
			if logger != nil {
				logger.Warn("websocket origin rejected", "origin", origin)
			}
			return false
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handlePostConfig)
	mux.HandleFunc("GET /api/categories", s.handleGetCategories)
	mux.HandleFunc("GET /api/status", s.handleGetStatus)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if strings.TrimSpace(cfg.StaticDir) != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Document())
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "read request body"})
		return
	}

	if err := s.store.ApplyPatch(body); err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"valid":  false,
				"errors": validationErr.Errors,
			})
			return
		}
		if s.logger != nil {
			s.logger.Error("config patch failed", "error", err.Error())
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.store.Document())
}

func (s *Server) handleGetCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Categories())
}

func (s *Server) handleGetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Status())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("websocket upgrade failed", "error", err.Error())
		}
		return
	}

	// Snapshot first so a fresh page renders without waiting for a keystroke.
	_ = conn.WriteJSON(NewMessage("status", s.store.Status()))

	s.hub.register(conn)
	defer s.hub.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
