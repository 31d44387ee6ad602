// Package worker is the daemon side of a session: a long-lived process
// serving command envelopes on the session's unix socket.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Handler executes one action and returns its data payload.
type Handler func(ctx context.Context, req Request) (any, error)

// Request mirrors ipc.Request without importing it, keeping the worker's
// wire handling self-contained. See internal/ipc for the envelope contract.
type Request struct {
	ID     string
	Action string
	Params map[string]json.RawMessage
}

// Param decodes one action parameter into out. Missing parameters are
// reported as errors so handlers stay terse.
func (r Request) Param(name string, out any) error {
	raw, ok := r.Params[name]
	if !ok {
		return fmt.Errorf("missing %s parameter", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	return nil
}

// Server accepts connections on the session socket and dispatches envelopes.
type Server struct {
	socketPath string
	logger     *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
	shutdown bool

	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a server bound to nothing yet.
func NewServer(socketPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		logger:     logger,
		handlers:   make(map[string]Handler),
	}
}

// Register adds a handler for an action name.
func (s *Server) Register(action string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = h
}

// Start binds the socket and begins accepting connections.
//
// A socket already accepting connections means another worker owns this
// session; that is a hard error so a spawn race resolves with exactly one
// survivor. A dead socket file left by a crash is removed.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	if err := s.clearStaleSocket(); err != nil {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("bind session socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	go s.acceptLoop(ctx)
	return nil
}

// Stop closes the listener, waits briefly for in-flight requests, and
// removes the socket file.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			return fmt.Errorf("close listener: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.logger.Warn("timed out waiting for connections to drain")
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove socket: %w", err)
	}
	return nil
}

// clearStaleSocket removes a leftover socket file, refusing to start when a
// live worker still answers on it.
func (s *Server) clearStaleSocket() error {
	if _, err := os.Stat(s.socketPath); err != nil {
		return nil
	}

	conn, err := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("socket %s is in use by another worker", s.socketPath)
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			shutdown := s.shutdown
			s.mu.RUnlock()
			if shutdown {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

// handleConnection serves envelopes until the client hangs up. Each request
// line gets exactly one response line.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}

		resp := s.dispatch(ctx, line)
		if err := writeResponse(writer, resp); err != nil {
			return
		}
	}
}

// dispatch parses one envelope and runs its handler.
func (s *Server) dispatch(ctx context.Context, line []byte) response {
	var wire struct {
		ID     string `json:"id"`
		Action string `json:"action"`
	}
	if err := json.Unmarshal(line, &wire); err != nil {
		return failResponse("", "invalid request envelope: "+err.Error())
	}
	if wire.ID == "" {
		return failResponse("", "request is missing an id")
	}
	if wire.Action == "" {
		return failResponse(wire.ID, "request is missing an action")
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(line, &params); err != nil {
		return failResponse(wire.ID, "invalid request envelope: "+err.Error())
	}
	delete(params, "id")
	delete(params, "action")

	s.mu.RLock()
	handler, ok := s.handlers[wire.Action]
	s.mu.RUnlock()
	if !ok {
		return failResponse(wire.ID, fmt.Sprintf("unknown action: %s", wire.Action))
	}

	req := Request{ID: wire.ID, Action: wire.Action, Params: params}
	result, err := handler(ctx, req)
	if err != nil {
		s.logger.Warn("action failed", "action", wire.Action, "error", err)
		return failResponse(wire.ID, err.Error())
	}

	var data json.RawMessage
	if result != nil {
		data, err = json.Marshal(result)
		if err != nil {
			return failResponse(wire.ID, "encode response data: "+err.Error())
		}
	}
	return response{ID: wire.ID, Success: true, Data: data}
}

// response is the wire form of a reply; it matches ipc.Response.
type response struct {
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func failResponse(id, message string) response {
	return response{ID: id, Success: false, Error: message}
}

func writeResponse(writer *bufio.Writer, resp response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := writer.Write(data); err != nil {
		return err
	}
	if err := writer.WriteByte('\n'); err != nil {
		return err
	}
	return writer.Flush()
}
