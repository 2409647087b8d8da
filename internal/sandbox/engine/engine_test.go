package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/security"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/workspace"
	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	guard, err := security.NewGuard(ws.Root(), "", nil)
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	return New(ws, guard, cfg), ws
}

// writeScript drops an executable shell script into the execute
// directory so tests do not need a C++ toolchain.
func writeScript(t *testing.T, ws *workspace.Workspace, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script binaries require a unix shell")
	}
	path := filepath.Join(ws.Dir("execute"), name)
	if err := ws.WriteFile(path, []byte("#!/bin/sh\n"+body)); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	return path
}

func TestExecuteEchoesStdin(t *testing.T) {
	e, ws := newTestEngine(t, Config{})
	path := writeScript(t, ws, "echo.sh", "cat\n")

	res, err := e.Execute(context.Background(), path, "3 5\n", 0, 0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got exit %d stderr %q", res.ExitCode, res.Stderr)
	}
	if res.Stdout != "3 5\n" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "3 5\n")
	}
	if res.TimedOut {
		t.Error("unexpected timeout")
	}
	if res.TimeMs < 0 {
		t.Errorf("negative time %d", res.TimeMs)
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	e, ws := newTestEngine(t, Config{})
	path := writeScript(t, ws, "fail.sh", "echo oops >&2\nexit 3\n")

	res, err := e.Execute(context.Background(), path, "", 0, 0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.OK {
		t.Error("expected not OK")
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("stderr = %q, want it to contain oops", res.Stderr)
	}
}

func TestExecuteWatchdogKillsHungProcess(t *testing.T) {
	e, ws := newTestEngine(t, Config{})
	path := writeScript(t, ws, "hang.sh", "while true; do sleep 1; done\n")

	start := time.Now()
	res, err := e.Execute(context.Background(), path, "", 500, 0)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected timeout")
	}
	if res.OK {
		t.Error("timed out run must not be OK")
	}
	if res.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", res.ExitCode)
	}
	if res.TimeMs != 500 {
		t.Errorf("time = %d, want pinned to limit 500", res.TimeMs)
	}
	// 500ms limit plus the grace window, with scheduling slack.
	if elapsed > 4*time.Second {
		t.Errorf("watchdog took %v to fire", elapsed)
	}
}

func TestExecuteTruncatesLargeOutput(t *testing.T) {
	e, ws := newTestEngine(t, Config{MaxOutputBytes: 400})
	path := writeScript(t, ws, "spam.sh", "i=0\nwhile [ $i -lt 200 ]; do echo line_$i; i=$((i+1)); done\n")

	res, err := e.Execute(context.Background(), path, "", 0, 0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.Truncated {
		t.Fatal("expected truncated output")
	}
	if !strings.HasSuffix(res.Stdout, truncationMarker) {
		t.Errorf("stdout missing truncation marker: %q", res.Stdout)
	}
	if len(res.Stdout) > 100+len(truncationMarker) {
		t.Errorf("kept %d bytes, want at most quarter of cap", len(res.Stdout))
	}
}

func TestExecuteRejectsPathOutsideWorkspace(t *testing.T) {
	e, _ := newTestEngine(t, Config{})

	_, err := e.Execute(context.Background(), "/bin/cat", "", 0, 0)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if appErr.GetCode(err) != appErr.UnsafeCommand {
		t.Errorf("code = %d, want UnsafeCommand", appErr.GetCode(err))
	}
}

func TestExecuteRejectsForbiddenCommand(t *testing.T) {
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	guard, err := security.NewGuard(ws.Root(), "", []string{"rm -rf"})
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	e := New(ws, guard, Config{})

	_, err = e.Execute(context.Background(), filepath.Join(ws.Root(), "rm -rf"), "", 0, 0)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if appErr.GetCode(err) != appErr.UnsafeCommand {
		t.Errorf("code = %d, want UnsafeCommand", appErr.GetCode(err))
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.TimeLimitMs != defaultTimeLimitMs {
		t.Errorf("TimeLimitMs = %d", cfg.TimeLimitMs)
	}
	if cfg.MemoryLimitMB != defaultMemoryLimitMB {
		t.Errorf("MemoryLimitMB = %d", cfg.MemoryLimitMB)
	}
	if cfg.MaxOutputBytes != defaultMaxOutputBytes {
		t.Errorf("MaxOutputBytes = %d", cfg.MaxOutputBytes)
	}
}
