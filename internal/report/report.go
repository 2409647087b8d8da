// Package report renders tool results as markdown. The HTTP and stdio
// front ends both hand these strings to a language model, so the layout
// favors short labeled sections over tables.
package report

import (
	"fmt"
	"strings"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
)

func codeBlock(b *strings.Builder, body string) {
	b.WriteString("```\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}

// Run renders a compile-and-run outcome.
func Run(name string, rep runner.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Run Report: %s\n\n", name)

	if !rep.Compile.OK {
		if rep.Compile.TimedOut {
			b.WriteString("**Compilation timed out.**\n\n")
		} else {
			b.WriteString("**Compilation failed.**\n\n")
		}
		if rep.Compile.Stderr != "" {
			b.WriteString("### Compiler Output\n")
			codeBlock(&b, rep.Compile.Stderr)
		}
		return b.String()
	}

	b.WriteString("Compilation succeeded.\n\n")
	run := rep.Run
	if run == nil {
		return b.String()
	}

	if run.TimedOut {
		fmt.Fprintf(&b, "**Execution timed out after %d ms.**\n\n", run.TimeMs)
	} else if run.OK {
		fmt.Fprintf(&b, "Execution finished in %d ms", run.TimeMs)
		if run.MemoryKB > 0 {
			fmt.Fprintf(&b, ", peak memory %d KB", run.MemoryKB)
		}
		b.WriteString(".\n\n")
	} else {
		fmt.Fprintf(&b, "**Execution failed with exit code %d** after %d ms.\n\n", run.ExitCode, run.TimeMs)
	}

	if run.Stdout != "" {
		b.WriteString("### Standard Output\n")
		codeBlock(&b, run.Stdout)
		if run.Truncated {
			b.WriteString("_Output was truncated._\n")
		}
	}
	if run.Stderr != "" {
		b.WriteString("### Standard Error\n")
		codeBlock(&b, run.Stderr)
	}
	return b.String()
}

// Debug renders a gdb batch session outcome.
func Debug(target string, res result.DebugResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Debug Report: %s\n\n", target)

	if res.TimedOut {
		b.WriteString("**Debug session timed out.**\n\n")
	} else if !res.OK {
		fmt.Fprintf(&b, "**Debugger exited with code %d.**\n\n", res.ExitCode)
	}

	if res.Stdout != "" {
		b.WriteString("### Debugger Output\n")
		codeBlock(&b, res.Stdout)
	}
	if res.Stderr != "" {
		b.WriteString("### Debugger Errors\n")
		codeBlock(&b, res.Stderr)
	}
	return b.String()
}

// Compare renders an output comparison, listing the first mismatching
// lines when the outputs differ.
func Compare(res result.ComparisonResult) string {
	var b strings.Builder
	b.WriteString("## Comparison Report\n\n")

	if res.Match {
		b.WriteString("Outputs match.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Outputs differ** (%d line(s)):\n\n", len(res.Differences))
	fmt.Fprintf(&b, "Actual lines: %d, expected lines: %d\n\n", res.ActualLines, res.ExpectedLines)
	const maxShown = 20
	for i, d := range res.Differences {
		if i == maxShown {
			fmt.Fprintf(&b, "... and %d more difference(s).\n", len(res.Differences)-maxShown)
			break
		}
		fmt.Fprintf(&b, "- Line %d: got `%s`, expected `%s`\n", d.Line, d.Actual, d.Expected)
	}
	return b.String()
}

// TestCase renders a stored test case for display.
func TestCase(tc result.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Test Case: %s\n\n", tc.ID)
	if tc.Description != "" {
		b.WriteString(tc.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("### Input\n")
	codeBlock(&b, tc.Input)
	if tc.Output != "" {
		b.WriteString("### Expected Output\n")
		codeBlock(&b, tc.Output)
	}
	return b.String()
}
