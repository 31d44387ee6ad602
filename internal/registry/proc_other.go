//go:build !unix

package registry

import "os"

// isAlive on platforms without null-signal semantics degrades to "assume
// alive while a liveness record exists". This is a weaker approximation:
// a crashed worker looks alive until its record is removed.
func isAlive(pid int) bool {
	return pid > 0
}

// signalTerminate falls back to a hard kill; there is no portable graceful
// termination signal here.
func signalTerminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Kill()
}
