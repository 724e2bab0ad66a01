package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/scanner"
	"github.com/tristendillon/depcheck/core/version"
)

const (
	liveWriteWait = 10 * time.Second
	livePongWait  = 60 * time.Second
	livePingEvery = (livePongWait * 9) / 10

	shutdownTimeout = 5 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Server exposes scan reports over HTTP for dashboards and other tooling.
type Server struct {
	Config *config.Config

	scanner     *scanner.Scanner
	placeholder *scanner.Scanner
	hub         *Hub
	live        atomic.Pointer[models.ScanReport]
}

func NewServer(cfg *config.Config, fsys fsprovider.FileSystem) *Server {
	return &Server{
		Config:      cfg,
		scanner:     scanner.New(fsys, cfg),
		placeholder: scanner.New(fsprovider.NewPlaceholder(), cfg),
		hub:         NewHub(),
	}
}

// Publish makes report the one served to every request from now on and
// pushes it to live subscribers.
func (s *Server) Publish(report *models.ScanReport) {
	s.live.Store(report.Clone())
	s.hub.Broadcast(report.Payload())
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dependencies", s.handleDependencies)
	mux.HandleFunc("GET /api/dependencies/live", s.handleLive)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) current(r *http.Request) (*models.ScanReport, error) {
	if usePlaceholder(r) {
		return s.placeholder.Scan(r.Context())
	}
	if report := s.live.Load(); report != nil {
		return report, nil
	}
	return s.scanner.Scan(r.Context())
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	report, err := s.current(r)
	if err != nil {
		logger.Error("Scan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report.Payload())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleLive sends the current payload on connect and every published one
// afterwards.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	report, err := s.current(r)
	if err != nil {
		logger.Error("Scan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	if err := conn.SetReadDeadline(time.Now().Add(livePongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	// the reader only exists to notice the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeLive(conn, report.Payload()); err != nil {
		return
	}

	ticker := time.NewTicker(livePingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			if err := writeLive(conn, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeLive(conn *websocket.Conn, payload models.ReportPayload) error {
	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(payload)
}

func usePlaceholder(r *http.Request) bool {
	v := r.URL.Query().Get("placeholder")
	if v == "" {
		return false
	}
	on, err := strconv.ParseBool(v)
	return err == nil && on
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("Failed to write response: %v", err)
	}
}
