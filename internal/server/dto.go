package server

import (
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
)

type CompileAndRunRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
	TimeLimitMs    int64  `json:"time_limit_ms"`
	MemoryLimitMB  int64  `json:"memory_limit_mb"`
}

type CompileAndRunResponse struct {
	Compile    result.CompileResult     `json:"compile"`
	Run        *result.ExecutionResult  `json:"run,omitempty"`
	Comparison *result.ComparisonResult `json:"comparison,omitempty"`
	Report     string                   `json:"report"`
}

type DebugRequest struct {
	BinaryPath string `json:"binary_path" binding:"required"`
	Script     string `json:"script"`
}

type DebugResponse struct {
	Result result.DebugResult `json:"result"`
	Report string             `json:"report"`
}

// IgnoreWhitespace is a pointer so an omitted field is distinguishable
// from an explicit false; omitted means true.
type CompareRequest struct {
	Actual           string `json:"actual"`
	Expected         string `json:"expected"`
	IgnoreWhitespace *bool  `json:"ignore_whitespace"`
	IgnoreCase       bool   `json:"ignore_case"`
}

type CompareResponse struct {
	Result result.ComparisonResult `json:"result"`
	Report string                  `json:"report"`
}

type ReadTestCaseRequest struct {
	ID string `json:"id" binding:"required"`
}

type ReadTestCaseResponse struct {
	TestCase result.TestCase `json:"test_case"`
	Report   string          `json:"report"`
}
