// Package mcp serves the sandbox tools over the Model Context Protocol
// stdio transport. Messages are newline-delimited JSON-RPC 2.0; stdout
// carries responses only, so all logging goes through the structured
// logger configured for stderr or a file.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/internal/report"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
	"github.com/hiturf/ow-oi-assistant/internal/session"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

const (
	serverName      = "oi-assistant"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// maxLineBytes bounds one incoming message. Source files dominate the
// traffic, so the ceiling is generous.
const maxLineBytes = 8 << 20

// ToolRunner is the sandbox surface the stdio server dispatches to.
type ToolRunner interface {
	CompileAndRun(ctx context.Context, sourceText, name, stdin string, timeLimitMs, memoryLimitMB int64) (runner.RunReport, error)
	Compile(ctx context.Context, sourceText, name string) (result.CompileResult, error)
	Debug(ctx context.Context, targetPath, script string) (result.DebugResult, error)
	Compare(actual, expected string, ignoreWhitespace, ignoreCase bool) result.ComparisonResult
	ReadTestCase(ctx context.Context, id string) (result.TestCase, error)
}

// Server handles one MCP connection over a reader/writer pair.
type Server struct {
	runner   ToolRunner
	sessions *session.Registry

	mu  sync.Mutex
	out *bufio.Writer
}

func NewServer(r ToolRunner) *Server {
	return &Server{runner: r, sessions: session.NewRegistry()}
}

// Serve reads requests from in until EOF or ctx cancellation, writing
// one response line per request. Malformed lines get a parse error
// response rather than terminating the connection.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.write(errorResponse(nil, codeParseError, "parse error"))
			continue
		}

		resp, reply := s.dispatch(ctx, &req)
		if reply {
			s.write(resp)
		}
	}
	return scanner.Err()
}

func (s *Server) write(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error(context.Background(), "marshal response", zap.Error(err))
		return
	}
	s.out.Write(data)
	s.out.WriteByte('\n')
	s.out.Flush()
}

func (s *Server) dispatch(ctx context.Context, req *Request) (Response, bool) {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
			"serverInfo":      map[string]string{"name": serverName, "version": serverVersion},
		}), true
	case "notifications/initialized":
		return Response{}, false
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{}), true
	case "tools/list":
		return resultResponse(req.ID, map[string]interface{}{"tools": toolList}), true
	case "tools/call":
		return s.callTool(ctx, req), true
	default:
		if req.IsNotification() {
			return Response{}, false
		}
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)), true
	}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) callTool(ctx context.Context, req *Request) Response {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid tool call params")
	}

	id := s.sessions.Begin(ctx, params.Name)
	defer s.sessions.End(ctx, id)
	logger.Info(ctx, "tool call", zap.String("tool", params.Name), zap.String("session_id", id))

	var (
		res CallResult
		err error
	)
	switch params.Name {
	case "compile_and_run":
		res, err = s.toolCompileAndRun(ctx, params.Arguments)
	case "debug_with_gdb":
		res, err = s.toolDebug(ctx, params.Arguments)
	case "compare_outputs":
		res, err = s.toolCompare(params.Arguments)
	case "read_test_case":
		res, err = s.toolReadTestCase(ctx, params.Arguments)
	default:
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
	}
	if err != nil {
		logger.Warn(ctx, "tool failed", zap.String("tool", params.Name), zap.Error(err))
		return resultResponse(req.ID, errorResult(err.Error()))
	}
	return resultResponse(req.ID, res)
}

func (s *Server) toolCompileAndRun(ctx context.Context, raw json.RawMessage) (CallResult, error) {
	var args compileAndRunArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	rep, err := s.runner.CompileAndRun(ctx, args.Code, args.Filename, args.Input, args.TimeLimit, args.MemoryLimit)
	if err != nil {
		return CallResult{}, err
	}

	text := report.Run(args.Filename, rep)
	if args.ExpectedOutput != "" && rep.Run != nil {
		cmp := s.runner.Compare(rep.Run.Stdout, args.ExpectedOutput, true, false)
		text += "\n" + report.Compare(cmp)
	}
	return textResult(text), nil
}

func (s *Server) toolDebug(ctx context.Context, raw json.RawMessage) (CallResult, error) {
	var args debugArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	compileRes, err := s.runner.Compile(ctx, args.Code, "")
	if err != nil {
		return CallResult{}, err
	}
	if !compileRes.OK {
		return errorResult("Compilation failed:\n" + compileRes.Stderr), nil
	}

	debugRes, err := s.runner.Debug(ctx, compileRes.BinaryPath, args.GDBScript)
	if err != nil {
		return CallResult{}, err
	}
	return textResult(report.Debug(compileRes.BinaryPath, debugRes)), nil
}

func (s *Server) toolCompare(raw json.RawMessage) (CallResult, error) {
	var args compareArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	ignoreWS := true
	if args.IgnoreWhitespace != nil {
		ignoreWS = *args.IgnoreWhitespace
	}
	res := s.runner.Compare(args.Actual, args.Expected, ignoreWS, args.IgnoreCase)
	return textResult(report.Compare(res)), nil
}

func (s *Server) toolReadTestCase(ctx context.Context, raw json.RawMessage) (CallResult, error) {
	var args readTestCaseArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	tc, err := s.runner.ReadTestCase(ctx, args.TestCaseID)
	if err != nil {
		return CallResult{}, err
	}
	return textResult(report.TestCase(tc)), nil
}
