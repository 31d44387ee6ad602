package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/browserbase/agent-browser/internal/cloudapi"
	"github.com/browserbase/agent-browser/internal/history"
	"github.com/browserbase/agent-browser/internal/paths"
	"github.com/browserbase/agent-browser/internal/registry"
)

// Worker is one session's daemon process.
type Worker struct {
	session    string
	runtimeDir string
	cloud      *cloudapi.Client
	hist       *history.Log
	logger     *slog.Logger

	startTime time.Time

	mu       sync.Mutex
	headless bool

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// Options configures a worker.
type Options struct {
	Session    string
	RuntimeDir string

	// Headed requests a visible browser window at startup.
	Headed bool

	// Cloud is the control plane client for remote-session actions.
	// Nil disables them with a clear error.
	Cloud *cloudapi.Client

	// History receives lifecycle events. Nil disables recording.
	History *history.Log

	Logger *slog.Logger
}

// New creates a worker for a session.
func New(opts Options) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		session:    opts.Session,
		runtimeDir: opts.RuntimeDir,
		cloud:      opts.Cloud,
		hist:       opts.History,
		logger:     logger.With("session", opts.Session),
		headless:   !opts.Headed,
		shutdownCh: make(chan struct{}),
	}
}

// Run serves the session socket until a termination signal arrives.
//
// The liveness record is written by the worker itself, after the listener is
// bound: a second worker racing for the same session fails on the bind
// before it can clobber the record.
func (w *Worker) Run(ctx context.Context) error {
	w.startTime = time.Now()

	server := NewServer(paths.SocketFile(w.runtimeDir, w.session), w.logger)
	w.registerHandlers(server)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start session server: %w", err)
	}

	pidFile := paths.PIDFile(w.runtimeDir, w.session)
	if err := registry.WriteRecord(pidFile, os.Getpid()); err != nil {
		_ = server.Stop()
		return fmt.Errorf("write liveness record: %w", err)
	}

	w.recordEvent(history.EventStarted)
	w.logger.Info("worker ready", "pid", os.Getpid(), "headless", w.headless)

	// Safety net for panics and early returns; normal shutdown does the
	// same cleanup in order.
	var shutdownComplete atomic.Bool
	defer func() {
		if !shutdownComplete.Load() {
			_ = server.Stop()
			_ = registry.RemoveRecord(pidFile)
		}
	}()

	go w.handleSignals()

	select {
	case <-w.shutdownCh:
	case <-ctx.Done():
	}

	shutdownComplete.Store(true)
	w.logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		w.logger.Error("server stop failed", "error", err)
	}
	if err := registry.RemoveRecord(pidFile); err != nil {
		w.logger.Error("record cleanup failed", "error", err)
		return err
	}

	w.recordEvent(history.EventStopped)
	return nil
}

// Shutdown triggers a graceful stop programmatically.
func (w *Worker) Shutdown() {
	w.shutdownOnce.Do(func() {
		close(w.shutdownCh)
	})
}

func (w *Worker) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	w.logger.Info("received signal", "signal", sig.String())
	w.Shutdown()
}

// recordEvent appends a lifecycle event, logging instead of failing.
func (w *Worker) recordEvent(eventType string) {
	if w.hist == nil {
		return
	}
	if err := w.hist.Record(w.session, eventType, os.Getpid()); err != nil {
		w.logger.Warn("history record failed", "event", eventType, "error", err)
	}
}
