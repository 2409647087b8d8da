package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
)

type fakeRunner struct {
	runReport runner.RunReport
	runErr    error
	debugRes  result.DebugResult
	debugErr  error
	testCase  result.TestCase
	tcErr     error

	lastSource   string
	lastStdin    string
	lastTarget   string
	lastIgnoreWS bool
	lastIgnoreCS bool
}

func (f *fakeRunner) CompileAndRun(_ context.Context, sourceText, name, stdin string, timeLimitMs, memoryLimitMB int64) (runner.RunReport, error) {
	f.lastSource = sourceText
	f.lastStdin = stdin
	return f.runReport, f.runErr
}

func (f *fakeRunner) Debug(_ context.Context, targetPath, script string) (result.DebugResult, error) {
	f.lastTarget = targetPath
	return f.debugRes, f.debugErr
}

func (f *fakeRunner) Compare(actual, expected string, ignoreWhitespace, ignoreCase bool) result.ComparisonResult {
	f.lastIgnoreWS = ignoreWhitespace
	f.lastIgnoreCS = ignoreCase
	if actual == expected {
		return result.ComparisonResult{Match: true}
	}
	return result.ComparisonResult{
		Differences: []result.Difference{{Line: 1, Actual: actual, Expected: expected}},
	}
}

func (f *fakeRunner) ReadTestCase(_ context.Context, id string) (result.TestCase, error) {
	return f.testCase, f.tcErr
}

func newTestServer(t *testing.T, f *fakeRunner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_, engine := New(f, CORSConfig{})
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})
	w := doJSON(t, engine, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestIndexListsTools(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})
	w := doJSON(t, engine, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, tool := range []string{"compile_and_run", "debug_with_gdb", "compare_outputs", "read_test_case"} {
		if !strings.Contains(w.Body.String(), tool) {
			t.Errorf("missing tool %q in %s", tool, w.Body.String())
		}
	}
}

func TestCompileAndRunSuccess(t *testing.T) {
	f := &fakeRunner{
		runReport: runner.RunReport{
			Compile: result.CompileResult{OK: true, BinaryPath: "/ws/execute/solution.exe"},
			Run:     &result.ExecutionResult{OK: true, Stdout: "8\n", TimeMs: 10},
		},
	}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/compile_and_run", CompileAndRunRequest{
		Code: "int main(){}", Name: "solution", Stdin: "3 5\n",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if f.lastSource != "int main(){}" || f.lastStdin != "3 5\n" {
		t.Errorf("runner got %q / %q", f.lastSource, f.lastStdin)
	}
	if !strings.Contains(w.Body.String(), "Run Report") {
		t.Errorf("missing markdown report: %s", w.Body.String())
	}
}

func TestCompileAndRunRequiresCode(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})
	w := doJSON(t, engine, http.MethodPost, "/tools/compile_and_run", map[string]string{"name": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCompileAndRunUnsafePathIsForbidden(t *testing.T) {
	f := &fakeRunner{runErr: appErr.New(appErr.UnsafeCommand)}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/compile_and_run", CompileAndRunRequest{Code: "x"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != int(appErr.UnsafeCommand) {
		t.Errorf("code = %d, want UnsafeCommand", resp.Code)
	}
}

func TestDebugRoute(t *testing.T) {
	f := &fakeRunner{debugRes: result.DebugResult{OK: true, Stdout: "#0 main"}}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/debug_with_gdb", DebugRequest{
		BinaryPath: "/ws/execute/solution.exe",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if f.lastTarget != "/ws/execute/solution.exe" {
		t.Errorf("target = %q", f.lastTarget)
	}
	if !strings.Contains(w.Body.String(), "#0 main") {
		t.Errorf("missing debugger output: %s", w.Body.String())
	}
}

func TestCompareRoute(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})

	w := doJSON(t, engine, http.MethodPost, "/tools/compare_outputs", CompareRequest{
		Actual: "8", Expected: "8",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Outputs match") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCompileAndRunComparesExpectedOutput(t *testing.T) {
	f := &fakeRunner{
		runReport: runner.RunReport{
			Compile: result.CompileResult{OK: true, BinaryPath: "/ws/execute/solution.exe"},
			Run:     &result.ExecutionResult{OK: true, Stdout: "8\n", TimeMs: 10},
		},
	}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/compile_and_run", CompileAndRunRequest{
		Code: "int main(){}", Stdin: "3 5\n", ExpectedOutput: "8\n",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !f.lastIgnoreWS {
		t.Errorf("inline comparison should ignore whitespace")
	}
	body := w.Body.String()
	if !strings.Contains(body, "Outputs match") {
		t.Errorf("report missing comparison section: %s", body)
	}
	if !strings.Contains(body, `"comparison"`) {
		t.Errorf("response missing comparison field: %s", body)
	}
}

func TestCompareDefaultsToIgnoreWhitespace(t *testing.T) {
	f := &fakeRunner{}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/compare_outputs", map[string]string{
		"actual": "8\n", "expected": "8",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !f.lastIgnoreWS {
		t.Errorf("omitted ignore_whitespace should default to true")
	}
}

func TestCompareExplicitWhitespaceSensitive(t *testing.T) {
	f := &fakeRunner{}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/compare_outputs", map[string]any{
		"actual": "8\n", "expected": "8", "ignore_whitespace": false,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if f.lastIgnoreWS {
		t.Errorf("explicit false should reach the comparator")
	}
}

func TestReadTestCaseNotFound(t *testing.T) {
	f := &fakeRunner{tcErr: appErr.New(appErr.TestCaseNotFound)}
	engine := newTestServer(t, f)

	w := doJSON(t, engine, http.MethodPost, "/tools/read_test_case", ReadTestCaseRequest{ID: "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListModels(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})

	w := doJSON(t, engine, http.MethodGet, "/v1/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"object":"list"`) || !strings.Contains(body, "oi-assistant") {
		t.Errorf("body = %s", body)
	}
}

func TestChatCompletionsEchoesTools(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})

	w := doJSON(t, engine, http.MethodPost, "/v1/chat/completions", ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "run my solution"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Object != "chat.completion" || len(resp.Choices) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	content := resp.Choices[0].Message.Content
	if !strings.Contains(content, "run my solution") {
		t.Errorf("missing echoed message: %s", content)
	}
	for _, tool := range []string{"compile_and_run", "debug_with_gdb", "compare_outputs", "read_test_case"} {
		if !strings.Contains(content, tool) {
			t.Errorf("missing tool %q in %s", tool, content)
		}
	}
}

func TestTraceIDPropagatesToResponse(t *testing.T) {
	engine := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get("X-Trace-Id"); got != "trace-123" {
		t.Errorf("header trace id = %q", got)
	}
	if !strings.Contains(w.Body.String(), "trace-123") {
		t.Errorf("body missing trace id: %s", w.Body.String())
	}
}
