// Package tcp implements a manager.InterfaceTransport over a plain
// newline-delimited text protocol, the shape implied by the `"Jig/20
// 1.0"` banner and line-oriented verb framing: one outbound
// ManagerStatusMessage or inbound ManagerControlMessageContents per
// line, encoded by internal/wireproto.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/log"
	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/unit"
	"github.com/exclave-go/exclave/internal/wireproto"
)

// Server accepts TCP connections on addr, loading and activating one
// Interface unit per accepted connection.
type Server struct {
	addr    string
	manager *manager.Manager
	logger  log.Logger
}

// NewServer returns a Server that will listen on addr once Serve is
// called.
func NewServer(addr string, m *manager.Manager, logger log.Logger) *Server {
	return &Server{addr: addr, manager: m, logger: logger}
}

// Serve opens the listener and accepts connections until ctx is
// canceled or the listener fails. Each connection runs its own session
// in a new goroutine and is never waited on by Serve.
func (s *Server) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("tcp listen %s: %w", s.addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("tcp accept: %w", err)
		}
		go s.handle(ctx, conn)
	}
}

// session is the manager.InterfaceTransport backed by one accepted
// connection.
type session struct {
	conn net.Conn
	mu   sync.Mutex
}

func (sess *session) Send(msg event.ManagerStatusMessage) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	_, err := fmt.Fprintln(sess.conn, wireproto.EncodeStatus(msg))
	return err
}

func (sess *session) Close() error {
	return sess.conn.Close()
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	sess := &session{conn: conn}

	name, err := unit.NewNameWithKind("tcp-"+uuid.NewString(), unit.Interface)
	if err != nil {
		s.logger.Error("tcp: build interface name", "error", err)
		_ = conn.Close()
		return
	}

	desc := &manager.InterfaceDescription{ID: name.ID(), DisplayName: "tcp " + conn.RemoteAddr().String()}
	loaded, err := s.manager.LoadInterface(desc, sess)
	if err != nil {
		s.logger.Error("tcp: load interface", "error", err, "remote", conn.RemoteAddr())
		_ = conn.Close()
		return
	}

	if err := s.manager.Activate(loaded); err != nil {
		s.logger.Error("tcp: activate interface", "error", err, "interface", loaded)
		_ = conn.Close()
		return
	}

	defer func() {
		_ = s.manager.Unload(loaded)
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		contents := wireproto.DecodeControl(scanner.Text())
		select {
		case s.manager.ControlChannel() <- event.NewControlMessage(loaded, contents):
		case <-ctx.Done():
			return
		}
	}
}
