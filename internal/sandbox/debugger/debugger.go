// Package debugger drives gdb in batch mode over a compiled binary. The
// gdb location comes from configuration so a hermetic toolchain install
// can be pointed at without touching PATH.
package debugger

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/security"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/workspace"
	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

const debugTimeout = 30 * time.Second

// DefaultScript is the batch script used when the caller supplies none.
// It stops at main and dumps the state a first-pass crash triage needs.
const DefaultScript = `set pagination off
break main
run
backtrace
info registers
x/10i $pc
quit
`

// Config locates the debugger binary. ToolchainRoot is the install
// prefix; Binary overrides the resolved path when set.
type Config struct {
	ToolchainRoot string `yaml:"toolchainRoot"`
	Binary        string `yaml:"binary"`
}

// Debugger runs gdb batch sessions inside the workspace.
type Debugger struct {
	ws    *workspace.Workspace
	guard *security.Guard
	cfg   Config
}

func New(ws *workspace.Workspace, guard *security.Guard, cfg Config) *Debugger {
	return &Debugger{ws: ws, guard: guard, cfg: cfg}
}

// binaryPath resolves the gdb executable from configuration. An explicit
// Binary wins; otherwise bin/gdb under the toolchain root is used.
func (d *Debugger) binaryPath() (string, error) {
	if d.cfg.Binary != "" {
		return d.cfg.Binary, nil
	}
	if d.cfg.ToolchainRoot == "" {
		return "", appErr.New(appErr.DebuggerMisconfigured).
			WithDetail("reason", "neither toolchain root nor debugger binary configured")
	}
	return filepath.Join(d.cfg.ToolchainRoot, "bin", "gdb"), nil
}

// Debug runs a gdb batch session against targetPath. scriptText defaults
// to DefaultScript when empty. The target must pass path confinement and
// the command denylist before gdb is launched; the script is checked
// against the forbidden substrings only, since gdb syntax overlaps with
// shell metacharacters. The whole session is bounded by a 30 second
// wall clock.
func (d *Debugger) Debug(ctx context.Context, targetPath, scriptText string) (result.DebugResult, error) {
	gdb, err := d.binaryPath()
	if err != nil {
		return result.DebugResult{}, err
	}

	if !d.guard.ValidateCommand(targetPath) {
		return result.DebugResult{}, appErr.New(appErr.UnsafeCommand).WithDetail("path", targetPath)
	}
	target, ok := d.guard.Confine(targetPath)
	if !ok {
		return result.DebugResult{}, appErr.New(appErr.UnsafeCommand).WithDetail("path", targetPath)
	}

	if scriptText == "" {
		scriptText = DefaultScript
	}
	if !d.guard.ValidateScript(scriptText) {
		return result.DebugResult{}, appErr.New(appErr.UnsafeCommand).WithDetail("reason", "script rejected")
	}

	base, err := d.ws.AllocTempPath("gdb")
	if err != nil {
		return result.DebugResult{}, err
	}
	scriptPath := base + ".gdb"
	if err := d.ws.WriteFile(scriptPath, []byte(scriptText)); err != nil {
		return result.DebugResult{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, debugTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, gdb, "-x", scriptPath, target, "--batch")
	cmd.Dir = d.ws.Dir("execute")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	res := result.DebugResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		logger.Warn(ctx, "debug session timed out",
			zap.String("target", target),
			zap.Duration("timeout", debugTimeout))
		return res, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return result.DebugResult{}, appErr.Wrapf(runErr, appErr.DebugFailed, "launch gdb: %v", runErr)
	}

	res.OK = true
	logger.Debug(ctx, "debug session finished", zap.String("target", target))
	return res, nil
}
