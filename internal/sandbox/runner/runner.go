// Package runner is the facade the front ends talk to. It wires the
// workspace, path guard, compiler, executor, comparator, and debugger
// into one object and adds the test case store on top.
package runner

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/comparator"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/compiler"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/debugger"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/engine"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/security"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/workspace"
	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

// builtinCases are always available, independent of the workspace
// contents. Files under tests/ take priority over them.
var builtinCases = map[string]result.TestCase{
	"a+b": {
		ID:          "a+b",
		Input:       "3 5\n",
		Output:      "8\n",
		Description: "Read two integers and print their sum.",
	},
	"fibonacci": {
		ID:          "fibonacci",
		Input:       "10\n",
		Output:      "55\n",
		Description: "Print the nth Fibonacci number, 0-indexed from fib(0)=0.",
	},
}

// Config aggregates the sandbox component configurations.
type Config struct {
	WorkspaceRoot     string          `yaml:"workspaceRoot"`
	ForbiddenCommands []string        `yaml:"forbiddenCommands"`
	Compiler          compiler.Config `yaml:"compiler"`
	Execution         engine.Config   `yaml:"execution"`
	Debugger          debugger.Config `yaml:"debugger"`
}

// Runner owns the sandbox components for one workspace.
type Runner struct {
	ws       *workspace.Workspace
	guard    *security.Guard
	compiler *compiler.Compiler
	engine   *engine.Engine
	debugger *debugger.Debugger
}

// RunReport is the combined outcome of a compile-and-run request.
type RunReport struct {
	Compile result.CompileResult    `json:"compile"`
	Run     *result.ExecutionResult `json:"run,omitempty"`
}

// New builds a runner rooted at cfg.WorkspaceRoot, creating the
// workspace layout if needed.
func New(cfg Config) (*Runner, error) {
	ws, err := workspace.New(cfg.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	guard, err := security.NewGuard(ws.Root(), cfg.Debugger.ToolchainRoot, cfg.ForbiddenCommands)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceUnavailable, "init path guard: %v", err)
	}
	return &Runner{
		ws:       ws,
		guard:    guard,
		compiler: compiler.New(ws, cfg.Compiler),
		engine:   engine.New(ws, guard, cfg.Execution),
		debugger: debugger.New(ws, guard, cfg.Debugger),
	}, nil
}

// Workspace exposes the underlying workspace for callers that need to
// place files, such as test fixtures.
func (r *Runner) Workspace() *workspace.Workspace { return r.ws }

// Compile builds sourceText into a binary named after name.
func (r *Runner) Compile(ctx context.Context, sourceText, name string) (result.CompileResult, error) {
	return r.compiler.Compile(ctx, sourceText, name)
}

// Execute runs a previously compiled binary under resource limits.
func (r *Runner) Execute(ctx context.Context, binaryPath, stdin string, timeLimitMs, memoryLimitMB int64) (result.ExecutionResult, error) {
	return r.engine.Execute(ctx, binaryPath, stdin, timeLimitMs, memoryLimitMB)
}

// CompileAndRun compiles sourceText and, when compilation succeeds, runs
// the binary with stdin under the given limits. A failed compile is not
// an error: the report carries the compiler diagnostics and no run.
func (r *Runner) CompileAndRun(ctx context.Context, sourceText, name, stdin string, timeLimitMs, memoryLimitMB int64) (RunReport, error) {
	compileRes, err := r.compiler.Compile(ctx, sourceText, name)
	if err != nil {
		return RunReport{}, err
	}
	report := RunReport{Compile: compileRes}
	if !compileRes.OK {
		return report, nil
	}
	runRes, err := r.engine.Execute(ctx, compileRes.BinaryPath, stdin, timeLimitMs, memoryLimitMB)
	if err != nil {
		return RunReport{}, err
	}
	report.Run = &runRes
	return report, nil
}

// SanitizeName maps an untrusted identifier to a filesystem-safe name.
func (r *Runner) SanitizeName(raw string) string {
	return security.SanitizeName(raw)
}

// Compare checks program output against the expected text.
func (r *Runner) Compare(actual, expected string, ignoreWhitespace, ignoreCase bool) result.ComparisonResult {
	return comparator.Compare(actual, expected, ignoreWhitespace, ignoreCase)
}

// Debug runs a gdb batch session over a compiled binary.
func (r *Runner) Debug(ctx context.Context, targetPath, script string) (result.DebugResult, error) {
	return r.debugger.Debug(ctx, targetPath, script)
}

// ReadTestCase loads a test case by identifier. A file named
// tests/<id>.txt wins over the built-in set; the file format is the
// input up to a line containing only "---", then the expected output.
func (r *Runner) ReadTestCase(ctx context.Context, id string) (result.TestCase, error) {
	safe := security.SanitizeName(id)
	if safe == "" {
		return result.TestCase{}, appErr.New(appErr.TestCaseReadFailed).WithDetail("id", id)
	}

	path := r.ws.TestCasePath(safe)
	if data, err := os.ReadFile(path); err == nil {
		tc, perr := parseTestCaseFile(safe, string(data))
		if perr != nil {
			return result.TestCase{}, perr
		}
		logger.Debug(ctx, "test case loaded from file", zap.String("id", safe))
		return tc, nil
	}

	if tc, ok := builtinCases[safe]; ok {
		return tc, nil
	}
	return result.TestCase{}, appErr.New(appErr.TestCaseNotFound).WithDetail("id", safe)
}

// parseTestCaseFile splits a stored test case into input and expected
// output around the first "---" separator line. A file without the
// separator is all input with no expected output.
func parseTestCaseFile(id, text string) (result.TestCase, error) {
	if strings.TrimSpace(text) == "" {
		return result.TestCase{}, appErr.New(appErr.TestCaseReadFailed).WithDetail("id", id)
	}
	tc := result.TestCase{ID: id, FromFile: true}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			tc.Input = strings.Join(lines[:i], "\n") + "\n"
			tc.Output = strings.Join(lines[i+1:], "\n")
			return tc, nil
		}
	}
	tc.Input = text
	return tc, nil
}
