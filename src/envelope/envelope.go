// Package envelope encodes and decodes the JSON side-channel fields carried on
// message rows: tool calls, tool results, and response metrics. The primary
// message text never depends on these fields, so decoding degrades to nil on
// corrupted data instead of failing the read path.
package envelope

import (
	"encoding/json"
	"log/slog"
)

// ToolCallFunction is the function portion of a tool call emitted by the model.
type ToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCall is a structured request from the model to invoke a named tool.
type ToolCall struct {
	Function ToolCallFunction `json:"function"`
}

// ToolResult is the output of executing a tool call, correlated to the call by name.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	Content  string `json:"content"`
}

// Metrics holds the timing and token-count data the server returns with a
// completed generation. All fields are optional; durations are nanoseconds.
type Metrics struct {
	TotalDuration      int64 `json:"total_duration,omitempty"`
	LoadDuration       int64 `json:"load_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// EncodeToolCalls serializes tool calls for storage. Nil or empty input maps
// to a SQL NULL (nil pointer).
func EncodeToolCalls(calls []ToolCall) *string {
	if len(calls) == 0 {
		return nil
	}
	return marshal(calls)
}

// EncodeToolResults serializes tool results for storage.
func EncodeToolResults(results []ToolResult) *string {
	if len(results) == 0 {
		return nil
	}
	return marshal(results)
}

// EncodeMetrics serializes response metrics for storage. A nil metrics object
// maps to SQL NULL.
func EncodeMetrics(m *Metrics) *string {
	if m == nil {
		return nil
	}
	return marshal(m)
}

// DecodeToolCalls parses a stored tool_calls column. NULL, empty, or malformed
// values yield nil; malformed JSON is logged and otherwise ignored.
func DecodeToolCalls(raw *string) []ToolCall {
	if raw == nil || *raw == "" {
		return nil
	}
	var calls []ToolCall
	if err := json.Unmarshal([]byte(*raw), &calls); err != nil {
		slog.Warn("discarding malformed tool_calls payload", "error", err)
		return nil
	}
	return calls
}

// DecodeToolResults parses a stored tool_results column.
func DecodeToolResults(raw *string) []ToolResult {
	if raw == nil || *raw == "" {
		return nil
	}
	var results []ToolResult
	if err := json.Unmarshal([]byte(*raw), &results); err != nil {
		slog.Warn("discarding malformed tool_results payload", "error", err)
		return nil
	}
	return results
}

// DecodeMetrics parses a stored metrics column.
func DecodeMetrics(raw *string) *Metrics {
	if raw == nil || *raw == "" {
		return nil
	}
	var m Metrics
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		slog.Warn("discarding malformed metrics payload", "error", err)
		return nil
	}
	return &m
}

func marshal(v any) *string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable with unmarshalable values, which none of the
		// envelope types can contain.
		slog.Warn("failed to encode envelope field", "error", err)
		return nil
	}
	s := string(data)
	return &s
}
