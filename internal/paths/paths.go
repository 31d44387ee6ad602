// Package paths derives the on-disk rendezvous points for local sessions.
//
// Every session name maps deterministically to a pid file and a unix socket
// in a single runtime directory, so clients never need a discovery step
// beyond string formatting.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePrefix is the common prefix for all runtime files.
	FilePrefix = "agent-browser-"

	// PIDSuffix is the extension for liveness records.
	PIDSuffix = ".pid"

	// SocketSuffix is the extension for session socket endpoints.
	SocketSuffix = ".sock"
)

// DefaultRuntimeDir returns the directory holding pid files and sockets.
// The OS temp dir is shared by every CLI invocation on the machine, which is
// exactly the point: it is the well-known registry directory.
func DefaultRuntimeDir() string {
	return os.TempDir()
}

// PIDFile returns the liveness record path for a session.
func PIDFile(runtimeDir, session string) string {
	return filepath.Join(runtimeDir, FilePrefix+session+PIDSuffix)
}

// SocketFile returns the socket endpoint path for a session.
func SocketFile(runtimeDir, session string) string {
	return filepath.Join(runtimeDir, FilePrefix+session+SocketSuffix)
}

// HistoryFile returns the path of the shared session history database.
func HistoryFile(runtimeDir string) string {
	return filepath.Join(runtimeDir, FilePrefix+"history.db")
}

// SessionFromPIDFile extracts the session name from a pid file name.
// Returns "" when the name does not follow the record naming convention.
func SessionFromPIDFile(filename string) string {
	if !strings.HasPrefix(filename, FilePrefix) || !strings.HasSuffix(filename, PIDSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(filename, FilePrefix), PIDSuffix)
}
