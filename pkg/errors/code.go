package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Workspace errors
// 13000-13999: Compile, Execute & Debug errors
// 14000-14999: Test case errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Timeout             ErrorCode = 10004
	ServiceUnavailable  ErrorCode = 10005

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Workspace Errors (12000-12999) ==========

	WorkspaceIOError     ErrorCode = 12000
	WorkspaceUnavailable ErrorCode = 12001

	// ========== Compile, Execute & Debug Errors (13000-13999) ==========

	// Compile (13000-13099)
	CompileFailed  ErrorCode = 13000
	CompileTimeout ErrorCode = 13001

	// Execute (13200-13299)
	UnsafeCommand    ErrorCode = 13200
	ExecutionTimeout ErrorCode = 13201
	ExecutionFailed  ErrorCode = 13202

	// Debug (13400-13499)
	DebuggerMisconfigured ErrorCode = 13400
	DebugTimeout          ErrorCode = 13401
	DebugFailed           ErrorCode = 13402

	// ========== Test Case Errors (14000-14999) ==========

	TestCaseNotFound   ErrorCode = 14000
	TestCaseReadFailed ErrorCode = 14001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Timeout:             "Request timeout",
	ServiceUnavailable:  "Service temporarily unavailable",

	// Validation
	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	// Workspace
	WorkspaceIOError:     "Workspace file operation failed",
	WorkspaceUnavailable: "Workspace root is not usable",

	// Compile
	CompileFailed:  "Compilation failed",
	CompileTimeout: "Compilation timed out",

	// Execute
	UnsafeCommand:    "Unsafe command or path rejected",
	ExecutionTimeout: "Execution time limit exceeded",
	ExecutionFailed:  "Execution failed",

	// Debug
	DebuggerMisconfigured: "Debugger toolchain root is not configured",
	DebugTimeout:          "Debugger session timed out",
	DebugFailed:           "Debugger run failed",

	// Test cases
	TestCaseNotFound:   "Test case not found",
	TestCaseReadFailed: "Failed to read test case file",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case Success:
		return 200
	case InvalidParams, ValidationFailed, RequiredFieldEmpty:
		return 400
	case UnsafeCommand:
		return 403
	case NotFound, TestCaseNotFound:
		return 404
	case Timeout, CompileTimeout, ExecutionTimeout, DebugTimeout:
		return 408
	case ServiceUnavailable, WorkspaceUnavailable:
		return 503
	default:
		return 500
	}
}
