//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// killTree sends SIGKILL to the process group led by pid. A group that has
// already exited is not an error.
func killTree(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
