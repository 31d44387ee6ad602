package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Request is one command envelope sent to a worker or the control plane.
//
// On the wire it is a flat JSON object: {"id": ..., "action": ..., <params>}.
// Action-specific parameters sit at the top level next to id and action, so
// Params is flattened during marshaling.
type Request struct {
	ID     string
	Action string
	Params map[string]any
}

// NewRequest builds a request with a fresh correlation id.
func NewRequest(action string, params map[string]any) Request {
	return Request{
		ID:     NewID(),
		Action: action,
		Params: params,
	}
}

// NewID returns a unique correlation id for one outstanding request.
func NewID() string {
	return ulid.Make().String()
}

// MarshalJSON flattens Params into the top-level object.
func (r Request) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Params)+2)
	for k, v := range r.Params {
		obj[k] = v
	}
	obj["id"] = r.ID
	obj["action"] = r.Action
	return json.Marshal(obj)
}

// UnmarshalJSON extracts id and action, leaving the remaining top-level
// fields in Params.
func (r *Request) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if raw, ok := obj["id"]; ok {
		if err := json.Unmarshal(raw, &r.ID); err != nil {
			return fmt.Errorf("invalid id field: %w", err)
		}
		delete(obj, "id")
	}
	if raw, ok := obj["action"]; ok {
		if err := json.Unmarshal(raw, &r.Action); err != nil {
			return fmt.Errorf("invalid action field: %w", err)
		}
		delete(obj, "action")
	}

	if len(obj) > 0 {
		r.Params = make(map[string]any, len(obj))
		for k, raw := range obj {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid %s field: %w", k, err)
			}
			r.Params[k] = v
		}
	}

	return nil
}

// Response is the reply to one Request.
//
// Success=false implies Error is populated. Data's shape is action-dependent
// and not validated here.
type Response struct {
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OK builds a success response echoing the request's correlation id.
func OK(requestID string, data any) (Response, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return Response{}, fmt.Errorf("marshal response data: %w", err)
		}
		raw = encoded
	}
	return Response{ID: requestID, Success: true, Data: raw}, nil
}

// Fail builds a failure response echoing the request's correlation id.
func Fail(requestID, message string) Response {
	return Response{ID: requestID, Success: false, Error: message}
}
