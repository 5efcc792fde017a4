// Package api binds inbound transports to the gateway: the WebSocket session
// endpoint, plus health, readiness, metrics, and status.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fireboltd/fireboltd/pkg/gateway"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/platform"
)

// Server is the combined HTTP surface for the fireboltd daemon.
type Server struct {
	ps      *platform.State
	gateway *gateway.Gateway
	logger  *slog.Logger
	ready   func() bool

	authToken string
}

// NewServer creates an API server over the platform state and gateway.
// ready gates the /ready endpoint; pass nil to report ready immediately.
func NewServer(ps *platform.State, gw *gateway.Gateway, ready func() bool) *Server {
	return &Server{
		ps:      ps,
		gateway: gw,
		logger:  logging.NewDiscardLogger(),
		ready:   ready,
	}
}

// SetLogger sets the logger for transport events.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetAuthToken enables bearer-token auth on the session endpoint. Empty
// disables auth.
func (s *Server) SetAuthToken(token string) {
	s.authToken = token
}

// Handler returns the main HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	return authMiddleware(s.authToken, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleReady succeeds only once device bring-up and method publication
// completed, unlike /health which succeeds as soon as the listener is up.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.ready != nil && !s.ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := struct {
		Version          string `json:"version"`
		Sessions         int    `json:"sessions"`
		Methods          int    `json:"methods"`
		DeviceChannels   int    `json:"deviceChannels"`
		DeferredChannels int    `json:"deferredChannels"`
		DeviceReady      bool   `json:"deviceReady"`
	}{
		Version:          s.ps.Version,
		Sessions:         s.ps.Sessions.Count(),
		Methods:          s.ps.OpenRPC.MethodCount(),
		DeviceChannels:   s.ps.Extn.DeviceChannelCount(),
		DeferredChannels: s.ps.Extn.DeferredChannelCount(),
		DeviceReady:      s.ps.Extn.DeviceReady(),
	}
	writeJSON(w, status)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
