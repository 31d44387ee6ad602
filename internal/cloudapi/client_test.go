package cloudapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"550e8400-e29b-41d4-a716-446655440000","status":"RUNNING","region":"us-west-2"}]`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	sessions, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Status != "RUNNING" || sessions[0].Region != "us-west-2" {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
}

func TestStopSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/abc" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc","status":"REQUEST_RELEASE"}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	session, err := c.StopSession(context.Background(), "abc")
	if err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if session.Status != "REQUEST_RELEASE" {
		t.Fatalf("unexpected status: %s", session.Status)
	}
}

func TestDebugSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/abc/debug" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"debuggerUrl":"https://debug.example/d","wsUrl":"wss://debug.example/ws"}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	info, err := c.DebugSession(context.Background(), "abc")
	if err != nil {
		t.Fatalf("DebugSession failed: %v", err)
	}
	if info.WSURL != "wss://debug.example/ws" {
		t.Fatalf("unexpected ws url: %s", info.WSURL)
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := New("https://api.example", "")
	_, err := c.ListSessions(context.Background())
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestErrorBodyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"session not found"}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	_, err := c.GetSession(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := err.Error(); !strings.Contains(got, "session not found") {
		t.Fatalf("error should carry the control plane message, got %q", got)
	}
}
