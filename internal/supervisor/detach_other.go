//go:build !unix

package supervisor

import "syscall"

func detachAttr() *syscall.SysProcAttr {
	return nil
}
