package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hiturf/ow-oi-assistant/pkg/utils/response"
)

// The /v1 routes speak the OpenAI wire format directly, without the
// response envelope, so OpenWebUI can register the service as an
// external tool provider.

const modelID = "oi-assistant"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages" binding:"required"`
	Temperature *float64      `json:"temperature"`
}

type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
}

func (s *Server) handleListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data": []gin.H{{
			"id":       modelID,
			"object":   "model",
			"created":  time.Now().Unix(),
			"owned_by": modelID,
		}},
	})
}

func (s *Server) handleChatCompletions(c *gin.Context) {
	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userMessage := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			userMessage = req.Messages[i].Content
			break
		}
	}

	model := req.Model
	if model == "" {
		model = modelID
	}

	text := fmt.Sprintf("Request received: %s\n\n", userMessage) +
		"Use the tool endpoints to work with code:\n" +
		"- compile_and_run: compile and run C++ code\n" +
		"- debug_with_gdb: inspect a binary under gdb\n" +
		"- compare_outputs: compare actual and expected output\n" +
		"- read_test_case: fetch a stored test case"

	c.JSON(http.StatusOK, ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.New().String()[:8],
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatCompletionChoice{{
			Index:        0,
			Message:      ChatMessage{Role: "assistant", Content: text},
			FinishReason: "stop",
		}},
	})
}
