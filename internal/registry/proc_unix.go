//go:build unix

package registry

import (
	"os"
	"syscall"
)

// isAlive checks whether a process with the given pid exists.
// Signal 0 delivers nothing; it only tests existence and permission.
func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		// On Unix FindProcess always succeeds; treat failure as gone.
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.EPERM {
		// Exists but owned by someone else.
		return true
	}
	return false
}

// signalTerminate asks the process to shut down gracefully.
func signalTerminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}
