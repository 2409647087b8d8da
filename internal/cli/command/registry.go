package command

import (
	"encoding/json"
	"fmt"
)

// Registry returns all CLI commands keyed by command name.
func Registry() map[string]Command {
	commands := []Command{
		{
			Name:   "run",
			Method: "POST",
			Path:   "/tools/compile_and_run",
			Fields: []Field{
				{Name: "code_file", Aliases: []string{"file", "source"}, Prompt: "path to C++ source file", Type: FieldFile, Required: true},
				{Name: "name", Prompt: "program name", Type: FieldString, Required: false},
				{Name: "stdin", Aliases: []string{"input"}, Prompt: "program input", Type: FieldString, Required: false},
				{Name: "input_file", Type: FieldFile, Required: false},
				{Name: "expected", Aliases: []string{"expected_output"}, Type: FieldString, Required: false},
				{Name: "expected_file", Type: FieldFile, Required: false},
				{Name: "time_limit", Type: FieldInt64, Required: false},
				{Name: "memory_limit", Type: FieldInt64, Required: false},
			},
		},
		{
			Name:   "debug",
			Method: "POST",
			Path:   "/tools/debug_with_gdb",
			Fields: []Field{
				{Name: "binary_path", Aliases: []string{"binary"}, Prompt: "path to compiled binary", Type: FieldString, Required: true},
				{Name: "script", Type: FieldString, Required: false},
				{Name: "script_file", Type: FieldFile, Required: false},
			},
		},
		{
			Name:   "compare",
			Method: "POST",
			Path:   "/tools/compare_outputs",
			Fields: []Field{
				{Name: "actual", Prompt: "actual output", Type: FieldString, Required: true},
				{Name: "expected", Prompt: "expected output", Type: FieldString, Required: true},
				{Name: "ignore_whitespace", Type: FieldBool, Required: false},
				{Name: "ignore_case", Type: FieldBool, Required: false},
			},
		},
		{
			Name:   "testcase",
			Method: "POST",
			Path:   "/tools/read_test_case",
			Fields: []Field{
				{Name: "id", Prompt: "test case id", Type: FieldString, Required: true},
			},
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		result[cmd.Name] = cmd
	}
	return result
}

// BuildRequest assembles the HTTP request for one command invocation.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)

	payload, err := buildPayload(cmd, params)
	if err != nil {
		return RequestSpec{}, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
	}

	return RequestSpec{
		Method: cmd.Method,
		Path:   cmd.Path,
		Body:   body,
	}, nil
}

func buildPayload(cmd Command, params Params) (interface{}, error) {
	switch cmd.Name {
	case "run":
		return buildRunPayload(params)
	case "debug":
		return buildDebugPayload(params)
	case "compare":
		return buildComparePayload(params)
	case "testcase":
		if params.Get("id") == "" {
			return nil, fmt.Errorf("id is required")
		}
		return map[string]string{"id": params.Get("id")}, nil
	}
	return nil, fmt.Errorf("unknown command: %s", cmd.Name)
}

func buildRunPayload(params Params) (interface{}, error) {
	code, err := ReadFile(params.Get("code_file"))
	if err != nil {
		return nil, err
	}

	stdin := params.Get("stdin")
	if stdin == "" && params.Get("input_file") != "" {
		stdin, err = ReadFile(params.Get("input_file"))
		if err != nil {
			return nil, err
		}
	}

	expected := params.Get("expected")
	if expected == "" && params.Get("expected_file") != "" {
		expected, err = ReadFile(params.Get("expected_file"))
		if err != nil {
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"code":  code,
		"name":  params.Get("name"),
		"stdin": stdin,
	}
	if expected != "" {
		payload["expected_output"] = expected
	}
	if params.Get("time_limit") != "" {
		limit, err := ParseInt64(params.Get("time_limit"))
		if err != nil {
			return nil, fmt.Errorf("invalid time_limit: %w", err)
		}
		payload["time_limit_ms"] = limit
	}
	if params.Get("memory_limit") != "" {
		limit, err := ParseInt64(params.Get("memory_limit"))
		if err != nil {
			return nil, fmt.Errorf("invalid memory_limit: %w", err)
		}
		payload["memory_limit_mb"] = limit
	}
	return payload, nil
}

func buildDebugPayload(params Params) (interface{}, error) {
	if params.Get("binary_path") == "" {
		return nil, fmt.Errorf("binary_path is required")
	}

	script := params.Get("script")
	if script == "" && params.Get("script_file") != "" {
		var err error
		script, err = ReadFile(params.Get("script_file"))
		if err != nil {
			return nil, err
		}
	}

	return map[string]string{
		"binary_path": params.Get("binary_path"),
		"script":      script,
	}, nil
}

func buildComparePayload(params Params) (interface{}, error) {
	payload := map[string]interface{}{
		"actual":   params.Get("actual"),
		"expected": params.Get("expected"),
	}
	if params.Get("ignore_whitespace") != "" {
		v, err := ParseBool(params.Get("ignore_whitespace"))
		if err != nil {
			return nil, fmt.Errorf("invalid ignore_whitespace: %w", err)
		}
		payload["ignore_whitespace"] = v
	}
	if params.Get("ignore_case") != "" {
		v, err := ParseBool(params.Get("ignore_case"))
		if err != nil {
			return nil, fmt.Errorf("invalid ignore_case: %w", err)
		}
		payload["ignore_case"] = v
	}
	return payload, nil
}
