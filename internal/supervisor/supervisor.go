// Package supervisor guarantees a reachable worker for a session name.
//
// The supervisor never writes liveness records itself: a freshly spawned
// worker writes its own record once its listener is bound. Two invocations
// racing to spawn the same session is an accepted window; the loser's worker
// fails fast on the socket bind conflict, so no cross-process locking is
// needed here.
package supervisor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/browserbase/agent-browser/internal/paths"
	"github.com/browserbase/agent-browser/internal/registry"
)

// ErrStartupTimeout means a spawned worker never started accepting
// connections within the retry ceiling.
var ErrStartupTimeout = errors.New("worker startup timeout")

const (
	defaultStartupTimeout = 10 * time.Second
	defaultPollInterval   = 100 * time.Millisecond
	probeDialTimeout      = 500 * time.Millisecond
)

// state tracks the ensure-running progression. The zero value is the
// starting point of every invocation.
type state int

const (
	stateNotReachable state = iota
	stateSpawning
	statePollingReady
	stateReady
)

// Supervisor ensures a worker process is reachable for a session.
type Supervisor struct {
	// RuntimeDir is the directory holding pid files and sockets.
	RuntimeDir string

	// StartupTimeout is the ceiling for readiness polling after a spawn.
	StartupTimeout time.Duration

	// PollInterval is the wait between readiness probes.
	PollInterval time.Duration

	// Launch starts a worker for the session. Nil means spawning the
	// current executable with the hidden "daemon run" subcommand.
	Launch func(session string, headed bool) error
}

// EnsureRunning makes sure a worker for the session is accepting
// connections, spawning one if needed.
//
// Idempotent: a reachable worker short-circuits with no side effects. The
// headed flag only applies at spawn time; switching an already-running
// worker's window visibility is a runtime command, not a supervisor concern.
func (s *Supervisor) EnsureRunning(session string, headed bool) error {
	st := stateNotReachable
	for {
		switch st {
		case stateNotReachable:
			if s.reachable(session) {
				st = stateReady
				continue
			}
			st = stateSpawning

		case stateSpawning:
			launch := s.Launch
			if launch == nil {
				launch = s.spawnDetached
			}
			if err := launch(session, headed); err != nil {
				return fmt.Errorf("failed to launch worker for session %q: %w", session, err)
			}
			st = statePollingReady

		case statePollingReady:
			ready, err := s.pollReady(session)
			if err != nil {
				return err
			}
			if ready {
				st = stateReady
			}

		case stateReady:
			return nil
		}
	}
}

// pollReady probes the endpoint until it accepts a connection or the retry
// ceiling is hit. The ceiling is finite: this never polls unbounded.
func (s *Supervisor) pollReady(session string) (bool, error) {
	timeout := s.StartupTimeout
	if timeout <= 0 {
		timeout = defaultStartupTimeout
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.After(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return false, fmt.Errorf("%w: session %q not reachable after %v", ErrStartupTimeout, session, timeout)
		case <-ticker.C:
			if s.socketAccepts(session) {
				return true, nil
			}
		}
	}
}

// reachable reports whether a live worker is serving the session: a
// liveness record must be present AND the socket must accept connections.
// A record alone may be stale, a socket file alone may be orphaned.
func (s *Supervisor) reachable(session string) bool {
	reg := &registry.Registry{RuntimeDir: s.RuntimeDir}
	status, err := reg.StatusOf(session)
	if err != nil || !status.Running {
		return false
	}
	return s.socketAccepts(session)
}

// socketAccepts probes the session endpoint with a short dial.
func (s *Supervisor) socketAccepts(session string) bool {
	conn, err := net.DialTimeout("unix", paths.SocketFile(s.RuntimeDir, session), probeDialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// spawnDetached re-executes the current binary as a background worker.
func (s *Supervisor) spawnDetached(session string, headed bool) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	args := []string{"daemon", "run", "--session", session}
	if headed {
		args = append(args, "--headed")
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	cmd.SysProcAttr = detachAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start worker process: %w", err)
	}

	// Release the child so init adopts it. Calling Wait from a parent
	// that is about to exit can strand the child mid-syscall.
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("release worker process: %w", err)
	}

	return nil
}
