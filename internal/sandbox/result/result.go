// Package result defines the structured outcomes of sandbox operations.
package result

// CompileResult contains compilation outcomes. BinaryPath is set iff the
// compiler exited zero; the source file stays on disk either way so a
// later debug call can find it.
type CompileResult struct {
	OK         bool   `json:"ok"`
	BinaryPath string `json:"binary_path,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ExitCode   int    `json:"exit_code"`
	TimedOut   bool   `json:"timed_out,omitempty"`
}

// ExecutionResult captures one run of a compiled binary. OK means the
// process exited zero without hitting the wall-clock watchdog.
type ExecutionResult struct {
	OK        bool   `json:"ok"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	TimeMs    int64  `json:"time_ms"`
	MemoryKB  int64  `json:"memory_kb"`
	ExitCode  int    `json:"exit_code"`
	TimedOut  bool   `json:"timed_out"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Difference is one unequal line pair, 1-indexed.
type Difference struct {
	Line     int    `json:"line"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

// ComparisonResult is the outcome of diffing two text streams.
type ComparisonResult struct {
	Match         bool         `json:"match"`
	Differences   []Difference `json:"differences,omitempty"`
	ActualLines   int          `json:"actual_line_count"`
	ExpectedLines int          `json:"expected_line_count"`
}

// DebugResult captures one batch debugger run.
type DebugResult struct {
	OK       bool   `json:"ok"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

// TestCase is a named input/output pair, either built in or read from
// the workspace tests directory.
type TestCase struct {
	ID          string `json:"id"`
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
	Description string `json:"description,omitempty"`
	FromFile    bool   `json:"from_file,omitempty"`
}
