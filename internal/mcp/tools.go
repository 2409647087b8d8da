package mcp

import "encoding/json"

// Tool describes one callable tool in a tools/list response.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// TextContent is the single content block type the server emits.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the result payload of a tools/call response.
type CallResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func textResult(text string) CallResult {
	return CallResult{Content: []TextContent{{Type: "text", Text: text}}}
}

func errorResult(text string) CallResult {
	return CallResult{Content: []TextContent{{Type: "text", Text: text}}, IsError: true}
}

var toolList = []Tool{
	{
		Name:        "compile_and_run",
		Description: "Compile C++ source code and run it with the given input under time and memory limits.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "C++ source code"},
				"input": {"type": "string", "description": "Data fed to standard input"},
				"expected_output": {"type": "string", "description": "Expected output to compare against (optional)"},
				"filename": {"type": "string", "description": "Program name (optional)"},
				"time_limit": {"type": "integer", "description": "Time limit in milliseconds"},
				"memory_limit": {"type": "integer", "description": "Memory limit in MB"}
			},
			"required": ["code", "input"]
		}`),
	},
	{
		Name:        "debug_with_gdb",
		Description: "Compile C++ source code and run it under gdb in batch mode.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "C++ source code"},
				"gdb_script": {"type": "string", "description": "gdb batch script (optional)"}
			},
			"required": ["code"]
		}`),
	},
	{
		Name:        "compare_outputs",
		Description: "Compare actual program output against the expected output line by line.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"actual": {"type": "string", "description": "Actual output"},
				"expected": {"type": "string", "description": "Expected output"},
				"ignore_whitespace": {"type": "boolean", "description": "Fold whitespace before comparing", "default": true},
				"ignore_case": {"type": "boolean", "description": "Ignore letter case", "default": false}
			},
			"required": ["actual", "expected"]
		}`),
	},
	{
		Name:        "read_test_case",
		Description: "Load a stored or built-in test case by identifier.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"test_case_id": {"type": "string", "description": "Test case identifier"}
			},
			"required": ["test_case_id"]
		}`),
	},
}

type compileAndRunArgs struct {
	Code           string `json:"code"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Filename       string `json:"filename"`
	TimeLimit      int64  `json:"time_limit"`
	MemoryLimit    int64  `json:"memory_limit"`
}

type debugArgs struct {
	Code      string `json:"code"`
	GDBScript string `json:"gdb_script"`
}

type compareArgs struct {
	Actual           string `json:"actual"`
	Expected         string `json:"expected"`
	IgnoreWhitespace *bool  `json:"ignore_whitespace"`
	IgnoreCase       bool   `json:"ignore_case"`
}

type readTestCaseArgs struct {
	TestCaseID string `json:"test_case_id"`
}
