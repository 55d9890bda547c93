package ollama

import (
	"encoding/json"

	"github.com/ollamadesk/ollamadesk/src/envelope"
)

// ModelInfo describes one locally installed model, as reported by /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Digest     string `json:"digest"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// GenerateRequest is the request body for /api/generate. Context is the
// opaque continuation token from a previous response, round-tripped verbatim.
type GenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Context json.RawMessage `json:"context,omitempty"`
}

// GenerateResponse is one /api/generate frame. In streaming mode the timing
// fields arrive only on the final frame.
type GenerateResponse struct {
	Model              string          `json:"model"`
	CreatedAt          string          `json:"created_at"`
	Response           string          `json:"response"`
	Done               bool            `json:"done"`
	Context            json.RawMessage `json:"context,omitempty"`
	TotalDuration      int64           `json:"total_duration,omitempty"`
	LoadDuration       int64           `json:"load_duration,omitempty"`
	PromptEvalCount    int             `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64           `json:"prompt_eval_duration,omitempty"`
	EvalCount          int             `json:"eval_count,omitempty"`
	EvalDuration       int64           `json:"eval_duration,omitempty"`
}

// Metrics extracts the timing data from a response, or nil when the server
// returned none.
func (r *GenerateResponse) Metrics() *envelope.Metrics {
	if r.TotalDuration == 0 && r.EvalCount == 0 && r.PromptEvalCount == 0 {
		return nil
	}
	return &envelope.Metrics{
		TotalDuration:      r.TotalDuration,
		LoadDuration:       r.LoadDuration,
		PromptEvalCount:    r.PromptEvalCount,
		PromptEvalDuration: r.PromptEvalDuration,
		EvalCount:          r.EvalCount,
		EvalDuration:       r.EvalDuration,
	}
}

// ChatMessage is one turn in a /api/chat exchange.
type ChatMessage struct {
	Role      string              `json:"role"` // "user", "assistant", "system", "tool"
	Content   string              `json:"content"`
	ToolCalls []envelope.ToolCall `json:"tool_calls,omitempty"`
}

// Tool is a tool definition advertised to the model for function calling.
type Tool struct {
	Type     string       `json:"type"` // always "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the name, description, and JSON schema of a tool.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Tools    []Tool        `json:"tools,omitempty"`
}

// ChatResponse is the non-streaming response from /api/chat.
type ChatResponse struct {
	Model              string      `json:"model"`
	CreatedAt          string      `json:"created_at"`
	Message            ChatMessage `json:"message"`
	Done               bool        `json:"done"`
	TotalDuration      int64       `json:"total_duration,omitempty"`
	LoadDuration       int64       `json:"load_duration,omitempty"`
	PromptEvalCount    int         `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64       `json:"prompt_eval_duration,omitempty"`
	EvalCount          int         `json:"eval_count,omitempty"`
	EvalDuration       int64       `json:"eval_duration,omitempty"`
}

// Metrics extracts the timing data from a chat response, or nil when the
// server sent none.
func (r *ChatResponse) Metrics() *envelope.Metrics {
	if r.TotalDuration == 0 && r.EvalCount == 0 && r.PromptEvalCount == 0 {
		return nil
	}
	return &envelope.Metrics{
		TotalDuration:      r.TotalDuration,
		LoadDuration:       r.LoadDuration,
		PromptEvalCount:    r.PromptEvalCount,
		PromptEvalDuration: r.PromptEvalDuration,
		EvalCount:          r.EvalCount,
		EvalDuration:       r.EvalDuration,
	}
}

// PullProgress is one /api/pull (or /api/create) progress event.
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

type serverError struct {
	Error string `json:"error"`
}
