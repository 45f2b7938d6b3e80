// Package process terminates the Chrome process tree left behind when a
// conversion is aborted.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that would target the calling process
// group or no process at all.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree force-terminates pid and every process it spawned. Chrome runs
// renderer and GPU helpers as children, so killing only the browser PID
// leaves them holding the profile directory.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
