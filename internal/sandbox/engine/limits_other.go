//go:build !linux

package engine

import (
	"os"
	"os/exec"
)

// noopLimiter stands in where prlimit is unavailable. The wall-clock
// watchdog and output cap still bound runaway processes.
type noopLimiter struct{}

func newLimiter() ResourceLimiter { return noopLimiter{} }

func (noopLimiter) Apply(pid int, timeLimitMs, memoryLimitMB int64) error { return nil }

func setProcAttr(cmd *exec.Cmd) {}

func killProcessTree(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func waitMaxRSSKB(state *os.ProcessState) int64 { return 0 }
