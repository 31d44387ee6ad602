package cloud

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const probeHandshakeTimeout = 5 * time.Second

// ProbeDebugURL dials a debugger websocket URL and immediately closes it,
// verifying the endpoint actually accepts connections. Used by
// "session debug --check" so a user knows the printed URL is live.
func ProbeDebugURL(wsURL string) error {
	if wsURL == "" {
		return fmt.Errorf("no websocket debugger URL available")
	}

	dialer := websocket.Dialer{HandshakeTimeout: probeHandshakeTimeout}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("debugger endpoint not reachable: %w", err)
	}
	_ = conn.Close()
	return nil
}
