//go:build linux

package engine

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// rlimitLimiter applies per-process kernel resource limits after the
// child has been started. RLIMIT_CPU counts CPU seconds only, so the
// wall-clock watchdog remains the authority for hung processes that
// sleep or block.
type rlimitLimiter struct{}

func newLimiter() ResourceLimiter { return rlimitLimiter{} }

func (rlimitLimiter) Apply(pid int, timeLimitMs, memoryLimitMB int64) error {
	cpuSeconds := uint64(timeLimitMs/1000 + 1)
	cpu := unix.Rlimit{Cur: cpuSeconds, Max: cpuSeconds}
	if err := unix.Prlimit(pid, unix.RLIMIT_CPU, &cpu, nil); err != nil {
		return err
	}
	addrBytes := uint64(memoryLimitMB) * 1024 * 1024
	addr := unix.Rlimit{Cur: addrBytes, Max: addrBytes}
	return unix.Prlimit(pid, unix.RLIMIT_AS, &addr, nil)
}

// setProcAttr puts the child in its own process group so the watchdog
// can kill the whole tree, forks included.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// waitMaxRSSKB reports the child's peak resident set from the rusage
// snapshot taken at wait. Maxrss is already in kilobytes on linux.
func waitMaxRSSKB(state *os.ProcessState) int64 {
	if state == nil {
		return 0
	}
	rusage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || rusage == nil {
		return 0
	}
	return rusage.Maxrss
}
