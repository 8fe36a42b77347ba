package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/swaysplit/internal/logger"
	"github.com/bryanchriswhite/swaysplit/internal/window"
)

// DecisionSource is what the API reads from the running daemon
type DecisionSource interface {
	BackendName() string
	Stats() window.Stats
	LastDecision() *window.Decision
	Subscribe() chan window.Decision
	Unsubscribe(ch chan window.Decision)
}

// Server represents the HTTP status server
type Server struct {
	router   *mux.Router
	source   DecisionSource
	upgrader websocket.Upgrader
	log      *zerolog.Logger
	started  time.Time
	http     *http.Server
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Backend      string           `json:"backend"`
	Uptime       string           `json:"uptime"`
	Stats        window.Stats     `json:"stats"`
	LastDecision *window.Decision `json:"last_decision"`
}

// NewServer creates a new API server
func NewServer(source DecisionSource) *Server {
	s := &Server{
		router: mux.NewRouter(),
		source: source,
		upgrader: websocket.Upgrader{
			// only reachable on localhost
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     logger.WithComponent("api"),
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/decision", s.handleLastDecision).Methods("GET")
	api.HandleFunc("/decision/stream", s.handleDecisionStream)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on localhost:port until Shutdown is called
func (s *Server) Start(port int) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info().Str("addr", s.http.Addr).Msg("Status API listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status API failed: %w", err)
	}
	return nil
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Backend:      s.source.BackendName(),
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Stats:        s.source.Stats(),
		LastDecision: s.source.LastDecision(),
	})
}

func (s *Server) handleLastDecision(w http.ResponseWriter, r *http.Request) {
	last := s.source.LastDecision()
	if last == nil {
		http.Error(w, "No decision yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (s *Server) handleDecisionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.source.Subscribe()
	defer s.source.Unsubscribe(updates)

	// Send the latest decision first
	if last := s.source.LastDecision(); last != nil {
		if err := conn.WriteJSON(last); err != nil {
			s.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}

	// Notice client disconnects so the subscription is released
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case decision, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(decision); err != nil {
				s.log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}
