// Package web serves the dashboard's WebSocket endpoint and wires
// inbound client commands to the dispatcher.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/procdash/procdash/internal/dispatch"
	"github.com/procdash/procdash/internal/hub"
)

// Server upgrades dashboard connections and runs their read loops.
type Server struct {
	hub        *hub.Hub
	dispatcher *dispatch.Dispatcher
	upgrader   websocket.Upgrader
}

// NewServer creates the WebSocket server.
func NewServer(h *hub.Hub, d *dispatch.Dispatcher) *Server {
	return &Server{
		hub:        h,
		dispatcher: d,
		upgrader: websocket.Upgrader{
			// No authentication by design: the dashboard binds a single
			// local port and any client may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler: /ws upgrades to the bidirectional
// channel, everything else is 404.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// handleWS registers the connection as a broadcast subscriber, then
// runs the read loop until the client goes away. Frames that don't
// parse as a known command are skipped; a garbled client must not take
// the server down.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := s.hub.Register(conn)
	slog.Info("dashboard client connected", "client", client.ID(), "remote", r.RemoteAddr)

	defer func() {
		s.hub.Unregister(client)
		slog.Info("dashboard client disconnected", "client", client.ID())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		cmd, ok := dispatch.ParseCommand(msg)
		if !ok {
			slog.Debug("ignoring unparseable client frame", "client", client.ID())
			continue
		}
		s.dispatcher.Handle(r.Context(), cmd)
	}
}
