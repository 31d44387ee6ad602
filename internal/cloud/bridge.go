// Package cloud forwards remote-session queries to the control plane.
//
// The bridge never talks HTTP itself: it shapes one of four command
// envelopes, sends it through the command channel to the daemon's
// general-purpose endpoint, and interprets the response. All remote-side
// behavior (provisioning, quotas, expiry) lives behind that contract.
package cloud

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/browserbase/agent-browser/internal/cloudapi"
	"github.com/browserbase/agent-browser/internal/ipc"
)

// Actions understood by the daemon for remote session queries.
const (
	ActionList  = "list-remote-sessions"
	ActionGet   = "get-remote-session"
	ActionStop  = "stop-remote-session"
	ActionDebug = "debug-remote-session"
)

// ErrRemote means the control plane (via the daemon) reported a failure.
var ErrRemote = errors.New("remote session error")

// Bridge issues remote-session actions through a local daemon.
type Bridge struct {
	Channel *ipc.Channel

	// Session names the local daemon whose endpoint relays the query.
	Session string
}

// ListSessions returns all cloud-hosted sessions.
func (b *Bridge) ListSessions() ([]cloudapi.Session, error) {
	resp, err := b.send(ipc.NewRequest(ActionList, nil))
	if err != nil {
		return nil, err
	}

	var data struct {
		Sessions []cloudapi.Session `json:"sessions"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("decode session list: %w", err)
	}
	return data.Sessions, nil
}

// GetSession returns one cloud session's detail.
func (b *Bridge) GetSession(id string) (*cloudapi.Session, json.RawMessage, error) {
	resp, err := b.send(ipc.NewRequest(ActionGet, map[string]any{"sessionId": id}))
	if err != nil {
		return nil, nil, err
	}

	var session cloudapi.Session
	if err := json.Unmarshal(resp.Data, &session); err != nil {
		return nil, nil, fmt.Errorf("decode session detail: %w", err)
	}
	return &session, resp.Data, nil
}

// StopSession asks the control plane to release a cloud session.
func (b *Bridge) StopSession(id string) error {
	_, err := b.send(ipc.NewRequest(ActionStop, map[string]any{"sessionId": id}))
	return err
}

// DebugSession fetches the debugger connection URLs for a cloud session.
func (b *Bridge) DebugSession(id string) (*cloudapi.DebugInfo, error) {
	resp, err := b.send(ipc.NewRequest(ActionDebug, map[string]any{"sessionId": id}))
	if err != nil {
		return nil, err
	}

	var info cloudapi.DebugInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("decode debug info: %w", err)
	}
	return &info, nil
}

// send performs one exchange and folds success=false into ErrRemote.
func (b *Bridge) send(req ipc.Request) (*ipc.Response, error) {
	resp, err := b.Channel.Send(req, b.Session)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}
	return resp, nil
}
