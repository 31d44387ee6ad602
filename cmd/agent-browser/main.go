// Command agent-browser drives per-session browser-automation workers over
// local unix sockets, with a cloud control plane behind the same command
// envelope protocol for UUID-shaped session identifiers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/browserbase/agent-browser/internal/classify"
	"github.com/browserbase/agent-browser/internal/cloud"
	"github.com/browserbase/agent-browser/internal/cloudapi"
	"github.com/browserbase/agent-browser/internal/config"
	"github.com/browserbase/agent-browser/internal/history"
	"github.com/browserbase/agent-browser/internal/ipc"
	"github.com/browserbase/agent-browser/internal/output"
	"github.com/browserbase/agent-browser/internal/paths"
	"github.com/browserbase/agent-browser/internal/registry"
	"github.com/browserbase/agent-browser/internal/supervisor"
	"github.com/browserbase/agent-browser/internal/worker"
)

var (
	// Build info (set via ldflags).
	Version = "dev"
	Build   = "unknown"
)

var (
	// Global flags.
	flagSession string
	flagJSON    bool
	flagHeaded  bool
)

// errPrinted marks failures already rendered by the printer, so main exits
// non-zero without printing twice.
var errPrinted = errors.New("failure already printed")

func main() {
	rootCmd := &cobra.Command{
		Use:   "agent-browser",
		Short: "Browser automation sessions, local and cloud",
		Long: `agent-browser manages named browser-automation sessions.

Each local session is served by a long-lived daemon reached over a unix
socket; session identifiers shaped like UUIDs address cloud-hosted
sessions through the same command protocol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "Session name (or AGENT_BROWSER_SESSION env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "JSON output for scripting")
	rootCmd.PersistentFlags().BoolVar(&flagHeaded, "headed", false, "Start workers with a visible browser window")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("agent-browser v{{.Version}} (build: " + Build + ", " + goruntime.Version() + ")\n")

	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errPrinted) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// currentSession resolves the session name from --session or configuration.
func currentSession(cfg config.Settings) string {
	if flagSession != "" {
		return flagSession
	}
	return cfg.DefaultSession
}

func newChannel(cfg config.Settings) *ipc.Channel {
	return &ipc.Channel{RuntimeDir: cfg.RuntimeDir, Timeout: cfg.TransportTimeout}
}

func newSupervisor(cfg config.Settings) *supervisor.Supervisor {
	return &supervisor.Supervisor{
		RuntimeDir:     cfg.RuntimeDir,
		StartupTimeout: cfg.StartupTimeout,
		PollInterval:   cfg.PollInterval,
	}
}

func newBridge(cfg config.Settings, session string) *cloud.Bridge {
	return &cloud.Bridge{Channel: newChannel(cfg), Session: session}
}

// fail renders the error and converts it into a silent non-zero exit.
func fail(p *output.Printer, err error) error {
	p.Failure(err)
	return errPrinted
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage sessions",
	}

	cmd.AddCommand(sessionListCmd())
	cmd.AddCommand(sessionInfoCmd())
	cmd.AddCommand(sessionKillCmd())
	cmd.AddCommand(sessionDebugCmd())
	cmd.AddCommand(sessionHistoryCmd())

	return cmd
}

func sessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local and cloud sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
			local := reg.List()

			// Cloud listing is best-effort and must not block the local
			// view: only ask when a daemon is already reachable, never
			// spawn one just to list.
			remote := tryRemoteSessions(cfg, currentSession(cfg))

			p.SessionList(local, remote)
			return nil
		},
	}
}

// tryRemoteSessions queries the control plane through an already-running
// daemon. Any failure collapses to "no cloud sessions".
func tryRemoteSessions(cfg config.Settings, session string) []cloudapi.Session {
	reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
	status, err := reg.StatusOf(session)
	if err != nil || !status.Running {
		return nil
	}

	bridge := &cloud.Bridge{
		Channel: &ipc.Channel{RuntimeDir: cfg.RuntimeDir, Timeout: 5 * time.Second},
		Session: session,
	}
	sessions, err := bridge.ListSessions()
	if err != nil {
		return nil
	}
	return sessions
}

func sessionInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [name|id]",
		Short: "Show one session's detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			token := currentSession(cfg)
			if len(args) > 0 {
				token = args[0]
			}

			if classify.IsRemote(token) {
				if err := ensureDaemon(cfg); err != nil {
					return fail(p, err)
				}
				session, raw, err := newBridge(cfg, currentSession(cfg)).GetSession(token)
				if err != nil {
					return fail(p, err)
				}
				p.RemoteSession(session, raw)
				return nil
			}

			reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
			status, err := reg.StatusOf(token)
			if err != nil {
				return fail(p, err)
			}
			p.SessionInfo(status)
			return nil
		},
	}
}

func sessionKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <name|id>",
		Short: "Stop a local session or release a cloud one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)
			token := args[0]

			if classify.IsRemote(token) {
				if err := ensureDaemon(cfg); err != nil {
					return fail(p, err)
				}
				if err := newBridge(cfg, currentSession(cfg)).StopSession(token); err != nil {
					return fail(p, err)
				}
				p.Success(fmt.Sprintf("Stopped cloud session %s", token))
				return nil
			}

			reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
			result, err := reg.Terminate(token)
			if err != nil {
				return fail(p, err)
			}

			recordHistory(cfg, token, history.EventTerminated, result.PID)
			p.Success(fmt.Sprintf("Killed session '%s' (PID: %d)", token, result.PID))
			return nil
		},
	}
}

func sessionDebugCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "debug <id>",
		Short: "Fetch debugger URLs for a cloud session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			if err := ensureDaemon(cfg); err != nil {
				return fail(p, err)
			}

			info, err := newBridge(cfg, currentSession(cfg)).DebugSession(args[0])
			if err != nil {
				return fail(p, err)
			}

			if check {
				if err := cloud.ProbeDebugURL(info.WSURL); err != nil {
					return fail(p, err)
				}
			}

			p.DebugInfo(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Verify the debugger websocket accepts connections")
	return cmd
}

func sessionHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Show recorded worker lifecycle events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			session := ""
			if len(args) > 0 {
				session = args[0]
			}

			log, err := history.Open(paths.HistoryFile(cfg.RuntimeDir))
			if err != nil {
				return fail(p, err)
			}
			defer func() { _ = log.Close() }()

			events, err := log.Events(session, limit)
			if err != nil {
				return fail(p, err)
			}

			p.History(events)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")
	return cmd
}

// ensureDaemon makes the current session's worker reachable, spawning it
// when needed. Every command that talks to a daemon goes through here first.
func ensureDaemon(cfg config.Settings) error {
	return newSupervisor(cfg).EnsureRunning(currentSession(cfg), flagHeaded)
}

// recordHistory appends a lifecycle event best-effort from the CLI side.
func recordHistory(cfg config.Settings, session, eventType string, pid int) {
	log, err := history.Open(paths.HistoryFile(cfg.RuntimeDir))
	if err != nil {
		return
	}
	defer func() { _ = log.Close() }()
	_ = log.Record(session, eventType, pid)
}

func daemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage session daemons",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the session's daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			if err := ensureDaemon(cfg); err != nil {
				return fail(p, err)
			}
			p.Success(fmt.Sprintf("Daemon ready for session '%s'", currentSession(cfg)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the session's daemon gracefully",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)
			session := currentSession(cfg)

			reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
			result, err := reg.Terminate(session)
			if err != nil {
				return fail(p, err)
			}

			recordHistory(cfg, session, history.EventTerminated, result.PID)
			p.Success(fmt.Sprintf("Stopped daemon for session '%s' (PID: %d)", session, result.PID))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the session daemon's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			p := output.New(flagJSON)

			reg := &registry.Registry{RuntimeDir: cfg.RuntimeDir}
			status, err := reg.StatusOf(currentSession(cfg))
			if err != nil {
				return fail(p, err)
			}

			p.SessionInfo(status)

			// Exit code 1 when the daemon is not running (like systemctl).
			if !status.Running {
				return errPrinted
			}
			return nil
		},
	})

	cmd.AddCommand(daemonRunCmd())

	return cmd
}

func daemonRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "run",
		Short:  "Run a session worker in the foreground (internal use)",
		Hidden: true, // Spawned by the supervisor; not for interactive use.
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			session := currentSession(cfg)

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))

			var hist *history.Log
			if log, err := history.Open(paths.HistoryFile(cfg.RuntimeDir)); err == nil {
				hist = log
				defer func() { _ = log.Close() }()
			} else {
				logger.Warn("history unavailable", "error", err)
			}

			w := worker.New(worker.Options{
				Session:    session,
				RuntimeDir: cfg.RuntimeDir,
				Headed:     flagHeaded,
				Cloud:      cloudapi.New(cfg.CloudAPIURL, cfg.CloudAPIKey),
				History:    hist,
				Logger:     logger,
			})

			return w.Run(context.Background())
		},
	}
}
