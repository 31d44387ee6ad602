package ipc

import (
	"encoding/json"
	"testing"
)

func TestRequestMarshalFlattensParams(t *testing.T) {
	req := Request{
		ID:     "01ABC",
		Action: "get-remote-session",
		Params: map[string]any{"sessionId": "550e8400-e29b-41d4-a716-446655440000"},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if obj["id"] != "01ABC" {
		t.Errorf("id: got %v", obj["id"])
	}
	if obj["action"] != "get-remote-session" {
		t.Errorf("action: got %v", obj["action"])
	}
	if obj["sessionId"] != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("sessionId not flattened to top level: got %v", obj["sessionId"])
	}
	if _, ok := obj["params"]; ok {
		t.Error("params must not appear as a nested object")
	}
}

func TestRequestUnmarshalExtractsParams(t *testing.T) {
	data := []byte(`{"id":"1","action":"launch","headless":false}`)

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if req.ID != "1" || req.Action != "launch" {
		t.Fatalf("envelope fields: got id=%q action=%q", req.ID, req.Action)
	}
	if v, ok := req.Params["headless"].(bool); !ok || v {
		t.Fatalf("headless param: got %v", req.Params["headless"])
	}
}

func TestNewRequestAssignsUniqueIDs(t *testing.T) {
	a := NewRequest("ping", nil)
	b := NewRequest("ping", nil)

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected non-empty correlation ids")
	}
	if a.ID == b.ID {
		t.Fatalf("correlation ids must be unique per request, both were %s", a.ID)
	}
}

func TestOKAndFail(t *testing.T) {
	ok, err := OK("42", map[string]string{"status": "RUNNING"})
	if err != nil {
		t.Fatalf("OK failed: %v", err)
	}
	if !ok.Success || ok.ID != "42" || len(ok.Data) == 0 {
		t.Fatalf("unexpected success response: %+v", ok)
	}

	fail := Fail("42", "no such session")
	if fail.Success || fail.Error != "no such session" || fail.ID != "42" {
		t.Fatalf("unexpected failure response: %+v", fail)
	}
}
