// Package output renders command results for humans or for scripts.
//
// Human output uses ANSI color only when attached to a terminal; --json mode
// prints one machine-readable object per command, always on stdout.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/browserbase/agent-browser/internal/cloudapi"
	"github.com/browserbase/agent-browser/internal/history"
	"github.com/browserbase/agent-browser/internal/ipc"
	"github.com/browserbase/agent-browser/internal/registry"
)

// Printer writes rendered results.
type Printer struct {
	JSON  bool
	Out   io.Writer
	Err   io.Writer
	color bool
}

// New returns a printer for the process's stdout/stderr.
func New(jsonMode bool) *Printer {
	return &Printer{
		JSON:  jsonMode,
		Out:   os.Stdout,
		Err:   os.Stderr,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + "\x1b[0m"
}

func (p *Printer) green(s string) string { return p.paint("\x1b[32m", s) }
func (p *Printer) red(s string) string   { return p.paint("\x1b[31m", s) }
func (p *Printer) dim(s string) string   { return p.paint("\x1b[2m", s) }
func (p *Printer) bold(s string) string  { return p.paint("\x1b[1m", s) }

// Success prints a confirmation line (human mode) or a success object.
func (p *Printer) Success(message string) {
	if p.JSON {
		p.printJSON(map[string]any{"success": true, "message": message})
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", p.green("✓"), message)
}

// Failure prints an error and is always safe to call before a non-zero exit.
func (p *Printer) Failure(err error) {
	if p.JSON {
		p.printJSON(map[string]any{"success": false, "error": err.Error()})
		return
	}
	fmt.Fprintf(p.Err, "%s %s\n", p.red("✗"), err)
}

// Response renders a raw envelope reply.
func (p *Printer) Response(resp *ipc.Response) {
	if p.JSON {
		p.printJSON(resp)
		return
	}
	if !resp.Success {
		fmt.Fprintf(p.Err, "%s %s\n", p.red("✗"), resp.Error)
		return
	}
	if len(resp.Data) > 0 {
		var pretty map[string]any
		if err := json.Unmarshal(resp.Data, &pretty); err == nil {
			encoded, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Fprintln(p.Out, string(encoded))
			return
		}
	}
	fmt.Fprintf(p.Out, "%s ok\n", p.green("✓"))
}

// SessionList renders the combined local + cloud session listing.
func (p *Printer) SessionList(local []registry.SessionStatus, remote []cloudapi.Session) {
	if p.JSON {
		combined := make([]map[string]any, 0, len(local)+len(remote))
		for _, s := range local {
			combined = append(combined, map[string]any{
				"type":    "local",
				"name":    s.Name,
				"pid":     s.PID,
				"running": s.Running,
				"socket":  s.SocketPath,
			})
		}
		for _, s := range remote {
			combined = append(combined, map[string]any{
				"type":   "cloud",
				"id":     s.ID,
				"status": s.Status,
				"region": s.Region,
			})
		}
		p.printJSON(combined)
		return
	}

	if len(local) == 0 && len(remote) == 0 {
		fmt.Fprintln(p.Out, "No active sessions.")
		fmt.Fprintln(p.Out, p.dim("Start one with: agent-browser daemon start --session <name>"))
		return
	}

	if len(local) > 0 {
		fmt.Fprintln(p.Out, "Local Sessions:")
		for _, s := range local {
			marker, state := p.green("●"), "running"
			if !s.Running {
				marker, state = p.red("○"), "stopped"
			}
			fmt.Fprintf(p.Out, "  %s %s (PID: %d, %s)\n", marker, s.Name, s.PID, state)
		}
	}

	if len(remote) > 0 {
		if len(local) > 0 {
			fmt.Fprintln(p.Out)
		}
		fmt.Fprintln(p.Out, "Cloud Sessions:")
		for _, s := range remote {
			region := s.Region
			if region == "" {
				region = "?"
			}
			fmt.Fprintf(p.Out, "  %s %s [%s] (%s)\n", p.statusMarker(s.Status), s.ID, s.Status, region)
		}
	}

	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.dim("Use 'session info <name|id>' for details, 'session kill <name|id>' to stop"))
}

func (p *Printer) statusMarker(status string) string {
	switch status {
	case "RUNNING":
		return p.green("●")
	case "ERROR", "TIMED_OUT":
		return p.red("●")
	default:
		return "●"
	}
}

// SessionInfo renders one local session's detail.
func (p *Printer) SessionInfo(status *registry.SessionStatus) {
	if p.JSON {
		p.printJSON(map[string]any{"success": true, "session": status})
		return
	}

	fmt.Fprintf(p.Out, "Session: %s\n\n", p.bold(status.Name))
	marker, state := p.green("●"), "running"
	if !status.Running {
		marker, state = p.red("○"), "stopped"
	}
	fmt.Fprintf(p.Out, "  Status:      %s %s\n", marker, state)
	fmt.Fprintf(p.Out, "  PID:         %d\n", status.PID)
	fmt.Fprintf(p.Out, "  PID File:    %s\n", status.PIDFile)
	fmt.Fprintf(p.Out, "  Socket:      %s\n", status.SocketPath)
	socketOK := "no"
	if status.SocketExists {
		socketOK = "yes"
	}
	fmt.Fprintf(p.Out, "  Socket OK:   %s\n", socketOK)
}

// RemoteSession renders one cloud session's detail, with any extra fields
// the control plane returned.
func (p *Printer) RemoteSession(session *cloudapi.Session, raw json.RawMessage) {
	if p.JSON {
		p.printJSON(map[string]any{"success": true, "session": raw})
		return
	}

	fmt.Fprintf(p.Out, "Session: %s\n\n", p.bold(session.ID))
	fmt.Fprintf(p.Out, "  Status:      %s %s\n", p.statusMarker(session.Status), session.Status)
	if session.Region != "" {
		fmt.Fprintf(p.Out, "  Region:      %s\n", session.Region)
	}
	if session.CreatedAt != "" {
		fmt.Fprintf(p.Out, "  Created:     %s\n", session.CreatedAt)
	}
}

// DebugInfo renders debugger connection URLs.
func (p *Printer) DebugInfo(info *cloudapi.DebugInfo) {
	if p.JSON {
		p.printJSON(map[string]any{"success": true, "debug": info})
		return
	}

	fmt.Fprintln(p.Out, "Debugger URLs:")
	if info.DebuggerURL != "" {
		fmt.Fprintf(p.Out, "  Inspector:   %s\n", info.DebuggerURL)
	}
	if info.DebuggerFullscreenURL != "" {
		fmt.Fprintf(p.Out, "  Fullscreen:  %s\n", info.DebuggerFullscreenURL)
	}
	if info.WSURL != "" {
		fmt.Fprintf(p.Out, "  WebSocket:   %s\n", info.WSURL)
	}
}

// History renders recorded lifecycle events, newest first.
func (p *Printer) History(events []history.Event) {
	if p.JSON {
		if events == nil {
			events = []history.Event{}
		}
		p.printJSON(map[string]any{"success": true, "events": events})
		return
	}

	if len(events) == 0 {
		fmt.Fprintln(p.Out, "No recorded events.")
		return
	}

	for _, e := range events {
		fmt.Fprintf(p.Out, "  %s  %-11s %s (PID: %d)\n", p.dim(e.At), e.Type, e.Session, e.PID)
	}
}

func (p *Printer) printJSON(v any) {
	encoded, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(p.Err, `{"success":false,"error":%q}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(p.Out, string(encoded))
}

// FormatDuration renders a duration the way humans say it.
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm%ds", minutes, seconds%60)
	}
	parts := []string{
		fmt.Sprintf("%dh", minutes/60),
		fmt.Sprintf("%dm", minutes%60),
	}
	return strings.Join(parts, "")
}
