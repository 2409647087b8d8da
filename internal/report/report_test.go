package report

import (
	"strings"
	"testing"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
)

func TestRunReportCompileFailure(t *testing.T) {
	rep := runner.RunReport{
		Compile: result.CompileResult{Stderr: "error: expected ';'"},
	}
	out := Run("solution", rep)
	if !strings.Contains(out, "Compilation failed") {
		t.Errorf("missing failure banner: %q", out)
	}
	if !strings.Contains(out, "expected ';'") {
		t.Errorf("missing compiler diagnostics: %q", out)
	}
	if strings.Contains(out, "Standard Output") {
		t.Error("compile failure must not render a run section")
	}
}

func TestRunReportSuccess(t *testing.T) {
	rep := runner.RunReport{
		Compile: result.CompileResult{OK: true},
		Run: &result.ExecutionResult{
			OK: true, Stdout: "8\n", TimeMs: 12, MemoryKB: 1024,
		},
	}
	out := Run("solution", rep)
	if !strings.Contains(out, "12 ms") || !strings.Contains(out, "1024 KB") {
		t.Errorf("missing metrics: %q", out)
	}
	if !strings.Contains(out, "8\n") {
		t.Errorf("missing stdout: %q", out)
	}
}

func TestRunReportTimeout(t *testing.T) {
	rep := runner.RunReport{
		Compile: result.CompileResult{OK: true},
		Run:     &result.ExecutionResult{TimedOut: true, TimeMs: 5000, ExitCode: -1},
	}
	out := Run("solution", rep)
	if !strings.Contains(out, "timed out after 5000 ms") {
		t.Errorf("missing timeout banner: %q", out)
	}
}

func TestRunReportTruncatedMarker(t *testing.T) {
	rep := runner.RunReport{
		Compile: result.CompileResult{OK: true},
		Run:     &result.ExecutionResult{OK: true, Stdout: "x", Truncated: true},
	}
	out := Run("solution", rep)
	if !strings.Contains(out, "truncated") {
		t.Errorf("missing truncation note: %q", out)
	}
}

func TestCompareReport(t *testing.T) {
	out := Compare(result.ComparisonResult{Match: true})
	if !strings.Contains(out, "Outputs match") {
		t.Errorf("match report: %q", out)
	}

	out = Compare(result.ComparisonResult{
		Differences: []result.Difference{{Line: 2, Actual: "9", Expected: "8"}},
	})
	if !strings.Contains(out, "Line 2") || !strings.Contains(out, "`9`") {
		t.Errorf("diff report: %q", out)
	}
}

func TestDebugReport(t *testing.T) {
	out := Debug("solution", result.DebugResult{OK: true, Stdout: "#0 main ()"})
	if !strings.Contains(out, "#0 main ()") {
		t.Errorf("missing backtrace: %q", out)
	}

	out = Debug("solution", result.DebugResult{TimedOut: true})
	if !strings.Contains(out, "timed out") {
		t.Errorf("missing timeout banner: %q", out)
	}
}

func TestTestCaseReport(t *testing.T) {
	out := TestCase(result.TestCase{
		ID: "a+b", Input: "3 5\n", Output: "8\n",
		Description: "Read two integers and print their sum.",
	})
	for _, want := range []string{"a+b", "3 5", "8", "their sum"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q: %q", want, out)
		}
	}
}
