package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/browserbase/agent-browser/internal/cloudapi"
	"github.com/browserbase/agent-browser/internal/history"
	"github.com/browserbase/agent-browser/internal/registry"
)

func testPrinter(jsonMode bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Printer{JSON: jsonMode, Out: out, Err: errOut}, out, errOut
}

func TestSuccessHuman(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.Success("daemon ready")
	if !strings.Contains(out.String(), "daemon ready") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSuccessJSON(t *testing.T) {
	p, out, _ := testPrinter(true)
	p.Success("done")

	var obj map[string]any
	if err := json.Unmarshal(out.Bytes(), &obj); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if obj["success"] != true || obj["message"] != "done" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestFailureJSONGoesToStdout(t *testing.T) {
	p, out, errOut := testPrinter(true)
	p.Failure(errors.New("session not found: web"))

	var obj map[string]any
	if err := json.Unmarshal(out.Bytes(), &obj); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if obj["success"] != false {
		t.Fatalf("unexpected object: %v", obj)
	}
	if errOut.Len() != 0 {
		t.Fatal("JSON mode must keep stderr clean for scripting")
	}
}

func TestFailureHumanGoesToStderr(t *testing.T) {
	p, out, errOut := testPrinter(false)
	p.Failure(errors.New("boom"))

	if out.Len() != 0 {
		t.Fatal("human-mode errors belong on stderr")
	}
	if !strings.Contains(errOut.String(), "boom") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestSessionListEmpty(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.SessionList(nil, nil)
	if !strings.Contains(out.String(), "No active sessions") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSessionListHuman(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.SessionList(
		[]registry.SessionStatus{
			{Name: "web", PID: 100, Running: true},
			{Name: "worker", PID: 200, Running: false},
		},
		[]cloudapi.Session{
			{ID: "9a2f1c3d-1111-2222-3333-444455556666", Status: "RUNNING", Region: "us-west-2"},
		},
	)

	text := out.String()
	for _, want := range []string{
		"Local Sessions:", "web", "running",
		"worker", "stopped",
		"Cloud Sessions:", "9a2f1c3d", "us-west-2",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestSessionListJSON(t *testing.T) {
	p, out, _ := testPrinter(true)
	p.SessionList(
		[]registry.SessionStatus{{Name: "web", PID: 100, Running: true}},
		[]cloudapi.Session{{ID: "abc", Status: "RUNNING"}},
	)

	var combined []map[string]any
	if err := json.Unmarshal(out.Bytes(), &combined); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(combined) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(combined))
	}
	if combined[0]["type"] != "local" || combined[1]["type"] != "cloud" {
		t.Fatalf("unexpected entries: %v", combined)
	}
}

func TestSessionListJSONEmptyIsArray(t *testing.T) {
	p, out, _ := testPrinter(true)
	p.SessionList(nil, nil)
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("empty listing must be an empty array, got %q", out.String())
	}
}

func TestSessionInfoHuman(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.SessionInfo(&registry.SessionStatus{
		Name:         "web",
		PID:          4321,
		Running:      true,
		SocketPath:   "/tmp/agent-browser-web.sock",
		SocketExists: true,
		PIDFile:      "/tmp/agent-browser-web.pid",
	})

	text := out.String()
	for _, want := range []string{"web", "4321", "running", "agent-browser-web.sock"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestDebugInfoHuman(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.DebugInfo(&cloudapi.DebugInfo{
		DebuggerURL: "https://example.test/inspect",
		WSURL:       "wss://example.test/devtools",
	})

	text := out.String()
	if !strings.Contains(text, "https://example.test/inspect") || !strings.Contains(text, "wss://example.test/devtools") {
		t.Fatalf("unexpected output: %q", text)
	}
}

func TestHistoryHuman(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.History([]history.Event{
		{Session: "web", Type: history.EventStarted, PID: 1, At: "2026-08-27T10:00:00Z"},
	})
	if !strings.Contains(out.String(), "started") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestHistoryJSONEmpty(t *testing.T) {
	p, out, _ := testPrinter(true)
	p.History(nil)

	var obj struct {
		Success bool            `json:"success"`
		Events  []history.Event `json:"events"`
	}
	if err := json.Unmarshal(out.Bytes(), &obj); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if obj.Events == nil {
		t.Fatal("events must serialize as [] even when empty")
	}
}

func TestNoColorWhenNotTerminal(t *testing.T) {
	p, out, _ := testPrinter(false)
	p.Success("plain")
	if strings.Contains(out.String(), "\x1b[") {
		t.Fatalf("color codes leaked into non-terminal output: %q", out.String())
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{5_000, "5s"},
		{90_000, "1m30s"},
		{3_660_000, "1h1m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}
