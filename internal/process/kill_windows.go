//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// killTree runs taskkill with /F (force) and /T (children too).
func killTree(pid int) error {
	// #nosec G204 -- pid is an integer from the launcher
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
