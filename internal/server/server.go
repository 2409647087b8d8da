// Package server exposes the sandbox tools over HTTP. Routes live under
// /tools and return both the structured result and a markdown rendering
// so callers can pick whichever form suits them.
package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hiturf/ow-oi-assistant/internal/report"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
	"github.com/hiturf/ow-oi-assistant/internal/session"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/response"
)

// ToolRunner is the sandbox surface the server dispatches to.
type ToolRunner interface {
	CompileAndRun(ctx context.Context, sourceText, name, stdin string, timeLimitMs, memoryLimitMB int64) (runner.RunReport, error)
	Debug(ctx context.Context, targetPath, script string) (result.DebugResult, error)
	Compare(actual, expected string, ignoreWhitespace, ignoreCase bool) result.ComparisonResult
	ReadTestCase(ctx context.Context, id string) (result.TestCase, error)
}

// Server dispatches tool requests to the runner and tracks sessions.
type Server struct {
	runner   ToolRunner
	sessions *session.Registry
}

// New creates the server and its gin engine with all routes registered.
func New(r ToolRunner, cors CORSConfig) (*Server, *gin.Engine) {
	s := &Server{runner: r, sessions: session.NewRegistry()}

	engine := gin.New()
	engine.Use(gin.Recovery(), TraceMiddleware(), AccessLogMiddleware(), CORSMiddleware(cors))

	engine.GET("/", s.handleIndex)
	engine.GET("/health", s.handleHealth)
	engine.GET("/sessions", s.handleSessions)

	tools := engine.Group("/tools")
	{
		tools.POST("/compile_and_run", s.handleCompileAndRun)
		tools.POST("/debug_with_gdb", s.handleDebug)
		tools.POST("/compare_outputs", s.handleCompare)
		tools.POST("/read_test_case", s.handleReadTestCase)
	}

	v1 := engine.Group("/v1")
	{
		v1.GET("/models", s.handleListModels)
		v1.POST("/chat/completions", s.handleChatCompletions)
	}

	return s, engine
}

func (s *Server) handleIndex(c *gin.Context) {
	response.Success(c, gin.H{
		"service": "oi-assistant",
		"tools": []string{
			"compile_and_run",
			"debug_with_gdb",
			"compare_outputs",
			"read_test_case",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (s *Server) handleSessions(c *gin.Context) {
	response.Success(c, gin.H{"active": s.sessions.Active()})
}

func (s *Server) handleCompileAndRun(c *gin.Context) {
	var req CompileAndRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := s.sessions.Begin(ctx, "compile_and_run")
	defer s.sessions.End(ctx, id)

	rep, err := s.runner.CompileAndRun(ctx, req.Code, req.Name, req.Stdin, req.TimeLimitMs, req.MemoryLimitMB)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := CompileAndRunResponse{
		Compile: rep.Compile,
		Run:     rep.Run,
		Report:  report.Run(req.Name, rep),
	}
	if req.ExpectedOutput != "" && rep.Run != nil {
		cmp := s.runner.Compare(rep.Run.Stdout, req.ExpectedOutput, true, false)
		resp.Comparison = &cmp
		resp.Report += "\n" + report.Compare(cmp)
	}
	response.Success(c, resp)
}

func (s *Server) handleDebug(c *gin.Context) {
	var req DebugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := s.sessions.Begin(ctx, "debug_with_gdb")
	defer s.sessions.End(ctx, id)

	res, err := s.runner.Debug(ctx, req.BinaryPath, req.Script)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, DebugResponse{
		Result: res,
		Report: report.Debug(req.BinaryPath, res),
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := s.sessions.Begin(ctx, "compare_outputs")
	defer s.sessions.End(ctx, id)

	ignoreWS := true
	if req.IgnoreWhitespace != nil {
		ignoreWS = *req.IgnoreWhitespace
	}
	res := s.runner.Compare(req.Actual, req.Expected, ignoreWS, req.IgnoreCase)
	response.Success(c, CompareResponse{
		Result: res,
		Report: report.Compare(res),
	})
}

func (s *Server) handleReadTestCase(c *gin.Context) {
	var req ReadTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := s.sessions.Begin(ctx, "read_test_case")
	defer s.sessions.End(ctx, id)

	tc, err := s.runner.ReadTestCase(ctx, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ReadTestCaseResponse{
		TestCase: tc,
		Report:   report.TestCase(tc),
	})
}
