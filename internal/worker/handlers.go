package worker

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/browserbase/agent-browser/internal/cloud"
	"github.com/browserbase/agent-browser/internal/cloudapi"
)

// errNoCloud is returned for remote-session actions when no control plane
// client is configured.
var errNoCloud = errors.New("remote sessions unavailable: set AGENT_BROWSER_API_KEY")

const cloudCallTimeout = 30 * time.Second

// registerHandlers wires every action the worker understands.
func (w *Worker) registerHandlers(s *Server) {
	s.Register("ping", w.handlePing)
	s.Register("status", w.handleStatus)
	s.Register("launch", w.handleLaunch)

	s.Register(cloud.ActionList, w.handleRemoteList)
	s.Register(cloud.ActionGet, w.handleRemoteGet)
	s.Register(cloud.ActionStop, w.handleRemoteStop)
	s.Register(cloud.ActionDebug, w.handleRemoteDebug)
}

func (w *Worker) handlePing(_ context.Context, _ Request) (any, error) {
	return map[string]any{"pong": true}, nil
}

func (w *Worker) handleStatus(_ context.Context, _ Request) (any, error) {
	w.mu.Lock()
	headless := w.headless
	w.mu.Unlock()

	return map[string]any{
		"session":  w.session,
		"pid":      os.Getpid(),
		"headless": headless,
		"uptimeMs": time.Since(w.startTime).Milliseconds(),
	}, nil
}

// handleLaunch switches the browser window visibility at runtime. This is
// the only way to toggle visibility after spawn; the supervisor never does.
func (w *Worker) handleLaunch(_ context.Context, req Request) (any, error) {
	headless := true
	if _, ok := req.Params["headless"]; ok {
		if err := req.Param("headless", &headless); err != nil {
			return nil, err
		}
	}

	w.mu.Lock()
	w.headless = headless
	w.mu.Unlock()

	w.logger.Info("browser mode changed", "headless", headless)
	return map[string]any{"headless": headless}, nil
}

func (w *Worker) handleRemoteList(ctx context.Context, _ Request) (any, error) {
	client, err := w.cloudClient()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cloudCallTimeout)
	defer cancel()

	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []cloudapi.Session{}
	}
	return map[string]any{"sessions": sessions}, nil
}

func (w *Worker) handleRemoteGet(ctx context.Context, req Request) (any, error) {
	client, err := w.cloudClient()
	if err != nil {
		return nil, err
	}

	var id string
	if err := req.Param("sessionId", &id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cloudCallTimeout)
	defer cancel()

	return client.GetSession(ctx, id)
}

func (w *Worker) handleRemoteStop(ctx context.Context, req Request) (any, error) {
	client, err := w.cloudClient()
	if err != nil {
		return nil, err
	}

	var id string
	if err := req.Param("sessionId", &id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cloudCallTimeout)
	defer cancel()

	return client.StopSession(ctx, id)
}

func (w *Worker) handleRemoteDebug(ctx context.Context, req Request) (any, error) {
	client, err := w.cloudClient()
	if err != nil {
		return nil, err
	}

	var id string
	if err := req.Param("sessionId", &id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cloudCallTimeout)
	defer cancel()

	return client.DebugSession(ctx, id)
}

func (w *Worker) cloudClient() (*cloudapi.Client, error) {
	if w.cloud == nil || w.cloud.APIKey == "" {
		return nil, errNoCloud
	}
	return w.cloud, nil
}
