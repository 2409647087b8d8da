// Package engine runs compiled binaries under time and memory limits
// with stdio bound to workspace files. Each run is isolated in its own
// allocated paths, so concurrent executions never contend on files.
package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/security"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/workspace"
	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

const truncationMarker = "\n... (output truncated)"

const memorySampleInterval = 50 * time.Millisecond

// Engine is the resource-limited executor.
type Engine struct {
	ws      *workspace.Workspace
	guard   *security.Guard
	cfg     Config
	limiter ResourceLimiter
}

// New creates an engine bound to the workspace and path guard.
func New(ws *workspace.Workspace, guard *security.Guard, cfg Config) *Engine {
	return &Engine{
		ws:      ws,
		guard:   guard,
		cfg:     cfg.withDefaults(),
		limiter: newLimiter(),
	}
}

// Execute runs binaryPath with stdinText on stdin. Caller-supplied
// limits override the configured defaults when positive. The binary is
// rejected before launch unless it passes both the command denylist and
// path confinement. A wall-clock watchdog at limit+grace force-kills the
// process tree; the child is never trusted to terminate itself.
func (e *Engine) Execute(ctx context.Context, binaryPath, stdinText string, timeLimitMs, memoryLimitMB int64) (result.ExecutionResult, error) {
	if !e.guard.ValidateCommand(binaryPath) {
		return result.ExecutionResult{}, appErr.New(appErr.UnsafeCommand).WithDetail("path", binaryPath)
	}
	resolved, ok := e.guard.Confine(binaryPath)
	if !ok {
		return result.ExecutionResult{}, appErr.New(appErr.UnsafeCommand).WithDetail("path", binaryPath)
	}

	if timeLimitMs <= 0 {
		timeLimitMs = e.cfg.TimeLimitMs
	}
	if memoryLimitMB <= 0 {
		memoryLimitMB = e.cfg.MemoryLimitMB
	}

	inBase, err := e.ws.AllocTempPath("inputs")
	if err != nil {
		return result.ExecutionResult{}, err
	}
	outBase, err := e.ws.AllocTempPath("outputs")
	if err != nil {
		return result.ExecutionResult{}, err
	}
	inputPath := inBase + ".in"
	outputPath := outBase + ".out"
	if err := e.ws.WriteFile(inputPath, []byte(stdinText)); err != nil {
		return result.ExecutionResult{}, err
	}

	inFile, err := os.Open(inputPath)
	if err != nil {
		return result.ExecutionResult{}, appErr.WorkspaceError(err, inputPath)
	}
	defer func() { _ = inFile.Close() }()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return result.ExecutionResult{}, appErr.WorkspaceError(err, outputPath)
	}
	defer func() { _ = outFile.Close() }()

	cmd := exec.Command(resolved)
	cmd.Dir = e.ws.Dir("execute")
	cmd.Stdin = inFile
	cmd.Stdout = outFile
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	setProcAttr(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result.ExecutionResult{}, appErr.Wrapf(err, appErr.ExecutionFailed, "start binary: %v", err)
	}

	if err := e.limiter.Apply(cmd.Process.Pid, timeLimitMs, memoryLimitMB); err != nil {
		logger.Warn(ctx, "apply resource limits failed", zap.Int("pid", cmd.Process.Pid), zap.Error(err))
	}

	var peakRSSKB atomic.Int64
	samplerDone := make(chan struct{})
	go sampleMemory(cmd.Process.Pid, &peakRSSKB, samplerDone)

	var timedOut atomic.Bool
	done := make(chan struct{})
	go func() {
		wall := time.Duration(timeLimitMs+watchdogGraceMs) * time.Millisecond
		select {
		case <-time.After(wall):
			timedOut.Store(true)
			killProcessTree(cmd)
		case <-ctx.Done():
			killProcessTree(cmd)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	close(samplerDone)
	elapsed := time.Since(start)
	_ = outFile.Close()

	memoryKB := peakRSSKB.Load()
	if rss := waitMaxRSSKB(cmd.ProcessState); rss > memoryKB {
		memoryKB = rss
	}

	stdout, truncated, readErr := e.readOutput(outputPath)
	if readErr != nil {
		return result.ExecutionResult{}, readErr
	}

	res := result.ExecutionResult{
		Stdout:    stdout,
		Stderr:    stderrBuf.String(),
		MemoryKB:  memoryKB,
		Truncated: truncated,
	}

	if timedOut.Load() {
		res.TimedOut = true
		res.ExitCode = -1
		res.TimeMs = timeLimitMs
		logger.Info(ctx, "execution killed by watchdog",
			zap.String("binary", resolved),
			zap.Int64("limit_ms", timeLimitMs))
		return res, nil
	}

	res.TimeMs = elapsed.Milliseconds()
	res.ExitCode = exitCode(waitErr, cmd)
	res.OK = res.ExitCode == 0

	logger.Debug(ctx, "execution finished",
		zap.String("binary", resolved),
		zap.Int("exit_code", res.ExitCode),
		zap.Int64("time_ms", res.TimeMs),
		zap.Int64("memory_kb", res.MemoryKB))
	return res, nil
}

// readOutput reads captured stdout, truncating to a quarter of the
// configured maximum plus a marker when the file exceeds the maximum.
// Room is left so the marker and the kept prefix stay well under the
// cap; oversized output is never silently dropped.
func (e *Engine) readOutput(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, appErr.WorkspaceError(err, path)
	}
	if int64(len(data)) > e.cfg.MaxOutputBytes {
		keep := e.cfg.MaxOutputBytes / 4
		return string(data[:keep]) + truncationMarker, true, nil
	}
	return string(data), false, nil
}

// sampleMemory polls the child's resident set while it runs. Best-effort
// diagnostics only: the rusage figure from wait is merged in afterwards,
// and neither value ever feeds limit enforcement.
func sampleMemory(pid int, peak *atomic.Int64, done <-chan struct{}) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}
	ticker := time.NewTicker(memorySampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			info, err := proc.MemoryInfo()
			if err != nil || info == nil {
				continue
			}
			rssKB := int64(info.RSS / 1024)
			if rssKB > peak.Load() {
				peak.Store(rssKB)
			}
		}
	}
}

func exitCode(waitErr error, cmd *exec.Cmd) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
