// Package registry enumerates and inspects liveness records for local
// sessions.
//
// The registry owns no processes: it only observes pid files written by
// workers. Records may reference dead processes (stale) and may appear or
// disappear between calls; every read re-derives fresh state, and absence
// or staleness is reported as data, never as a hard error.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/browserbase/agent-browser/internal/paths"
)

var (
	// ErrNotFound means no liveness record exists for the session.
	ErrNotFound = errors.New("session not found")

	// ErrTerminationFailed means the kill signal was rejected and the
	// process is still alive.
	ErrTerminationFailed = errors.New("termination failed")
)

// SessionStatus describes one local session as derived from its record.
type SessionStatus struct {
	Name         string `json:"name"`
	PID          int    `json:"pid"`
	Running      bool   `json:"running"`
	SocketPath   string `json:"socket"`
	SocketExists bool   `json:"socketExists"`
	PIDFile      string `json:"pidFile"`
}

// Registry reads liveness records from a runtime directory.
type Registry struct {
	RuntimeDir string
}

// List returns the status of every session with a liveness record, sorted
// by name for deterministic output. Malformed or unreadable records are
// skipped; an empty or missing directory yields an empty slice.
func (r *Registry) List() []SessionStatus {
	entries, err := os.ReadDir(r.RuntimeDir)
	if err != nil {
		return nil
	}

	var sessions []SessionStatus
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := paths.SessionFromPIDFile(entry.Name())
		if name == "" {
			continue
		}

		status, err := r.StatusOf(name)
		if err != nil {
			// Record vanished or is unreadable; best-effort discovery.
			continue
		}
		sessions = append(sessions, *status)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Name < sessions[j].Name
	})
	return sessions
}

// StatusOf reports the status of one named session.
// Returns ErrNotFound when no liveness record exists, regardless of whether
// a socket endpoint happens to be present.
func (r *Registry) StatusOf(name string) (*SessionStatus, error) {
	pidPath := paths.PIDFile(r.RuntimeDir, name)

	pid, err := ReadRecord(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	socketPath := paths.SocketFile(r.RuntimeDir, name)
	_, statErr := os.Stat(socketPath)

	return &SessionStatus{
		Name:         name,
		PID:          pid,
		Running:      isAlive(pid),
		SocketPath:   socketPath,
		SocketExists: statErr == nil,
		PIDFile:      pidPath,
	}, nil
}

// Terminate signals the session's worker to shut down and removes its
// runtime files.
//
// Record and socket removal is attempted best-effort regardless of the
// signal's outcome; the caller is told termination failed only when the
// process remains alive afterwards.
func (r *Registry) Terminate(name string) (*SessionStatus, error) {
	pidPath := paths.PIDFile(r.RuntimeDir, name)

	pid, err := ReadRecord(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	signalErr := signalTerminate(pid)

	socketPath := paths.SocketFile(r.RuntimeDir, name)
	_ = RemoveRecord(pidPath)
	_ = os.Remove(socketPath)

	if signalErr != nil && isAlive(pid) {
		return nil, fmt.Errorf("%w: process %d rejected signal and is still running", ErrTerminationFailed, pid)
	}

	return &SessionStatus{
		Name:       name,
		PID:        pid,
		SocketPath: socketPath,
		PIDFile:    pidPath,
	}, nil
}
