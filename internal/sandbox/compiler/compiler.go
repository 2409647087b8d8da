// Package compiler invokes the C++ toolchain against untrusted source
// text. The flag set is fixed at construction time and never derived
// from caller data; the source text is the only untrusted input that
// reaches the toolchain.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
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

// compileTimeout is the fixed compile-phase watchdog. Not caller
// configurable.
const compileTimeout = 30 * time.Second

// Config holds toolchain settings loaded once at startup.
type Config struct {
	CompilerPath string `yaml:"path"`
	Standard     string `yaml:"standard"`
	Optimization string `yaml:"optimization"`
}

// Compiler writes sources into the workspace and runs the toolchain.
type Compiler struct {
	ws  *workspace.Workspace
	cfg Config
}

// New creates a compiler bound to the workspace.
func New(ws *workspace.Workspace, cfg Config) *Compiler {
	if cfg.Standard == "" {
		cfg.Standard = "c++17"
	}
	if cfg.Optimization == "" {
		cfg.Optimization = "-O2"
	}
	return &Compiler{ws: ws, cfg: cfg}
}

// Compile writes sourceText to the workspace and invokes the toolchain.
// A non-empty name places the source under sources/ and the binary under
// execute/ using the sanitized name; otherwise a fresh temp path under
// the compile category is allocated. The source file is always left on
// disk for later debugging; no binary remains after a failed compile.
func (c *Compiler) Compile(ctx context.Context, sourceText, name string) (result.CompileResult, error) {
	sourcePath, binaryPath, err := c.targetPaths(name)
	if err != nil {
		return result.CompileResult{}, err
	}
	if err := c.ws.WriteFile(sourcePath, []byte(sourceText)); err != nil {
		return result.CompileResult{}, err
	}

	args := []string{
		sourcePath,
		"-std=" + c.cfg.Standard,
		c.cfg.Optimization,
		"-o", binaryPath,
		"-Wall",
		"-Wextra",
		"-Werror",
	}

	cctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, c.cfg.CompilerPath, args...)
	cmd.Dir = filepath.Dir(sourcePath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := result.CompileResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if cctx.Err() != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		res.Stderr = appErr.CompileTimeout.Message()
		removeBinary(binaryPath)
		logger.Warn(ctx, "compile timed out",
			zap.String("source", sourcePath),
			zap.Duration("after", compileTimeout))
		return res, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			removeBinary(binaryPath)
			return res, appErr.Wrapf(runErr, appErr.CompileFailed, "invoke toolchain: %v", runErr)
		}
	}

	if res.ExitCode == 0 && runErr == nil {
		res.OK = true
		res.BinaryPath = binaryPath
	} else {
		removeBinary(binaryPath)
	}

	logger.Debug(ctx, "compile finished",
		zap.Bool("ok", res.OK),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", elapsed))
	return res, nil
}

func (c *Compiler) targetPaths(name string) (string, string, error) {
	if safe := security.SanitizeName(name); safe != "" {
		return c.ws.SourcePath(safe), c.ws.BinaryPath(safe), nil
	}
	base, err := c.ws.AllocTempPath("compile")
	if err != nil {
		return "", "", err
	}
	return base + ".cpp", base + ".exe", nil
}

// removeBinary drops a partially written binary so a failed compile
// never leaves an executable behind.
func removeBinary(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}
