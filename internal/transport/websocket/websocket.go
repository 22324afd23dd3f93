// Package websocket implements a manager.InterfaceTransport over
// gorilla/websocket for GUI/web clients, an alternative to
// internal/transport/tcp's line protocol for interfaces that want a
// persistent, framed, bidirectional socket rather than a raw stream.
// Each outbound ManagerStatusMessage and inbound
// ManagerControlMessageContents is carried as one text frame, encoded
// by internal/wireproto exactly as the TCP transport does — the two
// transports differ only in how a line crosses the wire.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/log"
	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/unit"
	"github.com/exclave-go/exclave/internal/wireproto"
)

// Server accepts WebSocket upgrades on addr, loading and activating one
// Interface unit per accepted connection.
type Server struct {
	addr     string
	manager  *manager.Manager
	logger   log.Logger
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer returns a Server that will listen on addr once Serve is
// called. The upgrader accepts any origin: interfaces are trusted
// operator/GUI clients, not browser pages subject to CSRF-style
// same-origin concerns.
func NewServer(addr string, m *manager.Manager, logger log.Logger) *Server {
	return &Server{
		addr:    addr,
		manager: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve opens the listener and serves upgraded connections until ctx is
// canceled. Each connection runs its own session in a new goroutine and
// is never waited on by Serve.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handle(ctx, w, r)
	})

	s.srv = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = s.srv.Close()
	}()

	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("websocket listen %s: %w", s.addr, err)
	}
	return nil
}

// session is the manager.InterfaceTransport backed by one upgraded
// connection.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sess *session) Send(msg event.ManagerStatusMessage) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.conn.WriteMessage(websocket.TextMessage, []byte(wireproto.EncodeStatus(msg)))
}

func (sess *session) Close() error {
	return sess.conn.Close()
}

func (s *Server) handle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket: upgrade", "error", err, "remote", r.RemoteAddr)
		return
	}

	sess := &session{conn: conn}

	name, err := unit.NewNameWithKind("ws-"+uuid.NewString(), unit.Interface)
	if err != nil {
		s.logger.Error("websocket: build interface name", "error", err)
		_ = conn.Close()
		return
	}

	desc := &manager.InterfaceDescription{ID: name.ID(), DisplayName: "ws " + r.RemoteAddr}
	loaded, err := s.manager.LoadInterface(desc, sess)
	if err != nil {
		s.logger.Error("websocket: load interface", "error", err, "remote", r.RemoteAddr)
		_ = conn.Close()
		return
	}

	if err := s.manager.Activate(loaded); err != nil {
		s.logger.Error("websocket: activate interface", "error", err, "interface", loaded)
		_ = conn.Close()
		return
	}

	defer func() {
		_ = s.manager.Unload(loaded)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		contents := wireproto.DecodeControl(string(data))
		select {
		case s.manager.ControlChannel() <- event.NewControlMessage(loaded, contents):
		case <-ctx.Done():
			return
		}
	}
}
