// Package ipc implements the request/response exchange with a session worker.
//
// Each exchange is a short-lived connection: open the session's unix socket,
// write one newline-delimited JSON envelope, read exactly one response, close.
// There is no connection reuse and no automatic retry; retry policy belongs
// to the caller.
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/browserbase/agent-browser/internal/paths"
)

// Transport failure kinds surfaced to callers. These three are the only
// distinctions a caller needs; finer network detail stays wrapped inside.
var (
	// ErrConnectionRefused means no worker is listening on the endpoint.
	ErrConnectionRefused = errors.New("connection refused")

	// ErrTransportTimeout means the worker did not answer within the deadline.
	ErrTransportTimeout = errors.New("transport timeout")

	// ErrProtocol means the response was unparseable or its correlation id
	// did not match the request.
	ErrProtocol = errors.New("protocol error")
)

const defaultDialTimeout = 2 * time.Second

// Channel sends command envelopes to session workers.
type Channel struct {
	// RuntimeDir is the directory holding session sockets.
	RuntimeDir string

	// Timeout bounds one full exchange (write plus read).
	Timeout time.Duration

	// DialTimeout bounds the connection attempt. Zero means a short default.
	DialTimeout time.Duration
}

// Send performs one request/response exchange with the named session's worker.
//
// The response is returned even when it reports success=false; interpreting
// remote failures is the caller's job. The returned error is one of the three
// transport kinds (or an envelope encoding error) and nothing finer.
func (c *Channel) Send(req Request, session string) (*Response, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: request has no correlation id", ErrProtocol)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	dialTimeout := c.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	addr := paths.SocketFile(c.RuntimeDir, session)
	conn, err := net.DialTimeout("unix", addr, dialTimeout)
	if err != nil {
		return nil, classifyDialError(err, session)
	}
	defer func() { _ = conn.Close() }()

	if c.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	writer := bufio.NewWriter(conn)
	if _, err := writer.Write(payload); err != nil {
		return nil, classifyIOError(err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return nil, classifyIOError(err)
	}
	if err := writer.Flush(); err != nil {
		return nil, classifyIOError(err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, classifyIOError(err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrProtocol, err)
	}

	// Guard against any future multiplexed-connection reuse: the reply must
	// carry the id we sent.
	if resp.ID != req.ID {
		return nil, fmt.Errorf("%w: correlation id mismatch (sent %s, got %s)", ErrProtocol, req.ID, resp.ID)
	}

	return &resp, nil
}

// classifyDialError maps connection failures onto ErrConnectionRefused.
// A missing socket file and a refused connection both mean "worker absent".
func classifyDialError(err error, session string) error {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: no worker listening for session %q", ErrConnectionRefused, session)
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: dialing session %q", ErrTransportTimeout, session)
	}
	return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
}

// classifyIOError maps read/write failures onto the transport taxonomy.
func classifyIOError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: worker did not respond", ErrTransportTimeout)
	}
	// A connection dropped mid-exchange cannot produce a valid envelope.
	return fmt.Errorf("%w: exchange interrupted: %v", ErrProtocol, err)
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
