//go:build unix

package supervisor

import "syscall"

// detachAttr detaches the worker from the controlling terminal.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
