package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/ollamadesk/ollamadesk/src/ollama"
)

// defaultMaxIterations bounds the tool loop so a model that keeps calling
// tools cannot spin forever.
const defaultMaxIterations = 8

// Runner drives the tool-calling loop: send the conversation with tool
// definitions, execute whatever the model calls, feed results back, repeat
// until the model answers in plain text.
type Runner struct {
	client        *ollama.Client
	toolbox       *Toolbox
	logger        *slog.Logger
	maxIterations int
}

// NewRunner builds a tool loop over a client and toolbox.
func NewRunner(client *ollama.Client, toolbox *Toolbox, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:        client,
		toolbox:       toolbox,
		logger:        logger.With("component", "tool_runner"),
		maxIterations: defaultMaxIterations,
	}
}

// Result is the outcome of one full tool loop.
type Result struct {
	// Content is the model's final plain-text answer.
	Content string
	// ToolCalls are all calls the model made across the loop, in order.
	ToolCalls []envelope.ToolCall
	// ToolResults are the corresponding results, in order.
	ToolResults []envelope.ToolResult
	// Metrics are the timing numbers from the final chat response, if any.
	Metrics *envelope.Metrics
}

// Run executes the loop for a conversation. The messages slice is not
// mutated; tool turns are appended to a copy.
func (r *Runner) Run(ctx context.Context, model string, messages []ollama.ChatMessage) (*Result, error) {
	defs, err := r.toolbox.Definitions()
	if err != nil {
		return nil, err
	}

	history := make([]ollama.ChatMessage, len(messages))
	copy(history, messages)

	result := &Result{}
	for i := 0; i < r.maxIterations; i++ {
		resp, err := r.client.Chat(ctx, model, history, defs)
		if err != nil {
			return nil, err
		}

		if len(resp.Message.ToolCalls) == 0 {
			result.Content = resp.Message.Content
			result.Metrics = resp.Metrics()
			return result, nil
		}

		history = append(history, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			call := call
			toolResp, err := r.toolbox.Execute(ctx, &call)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", call.Function.Name, err)
			}

			result.ToolCalls = append(result.ToolCalls, call)
			result.ToolResults = append(result.ToolResults, envelope.ToolResult{
				ToolName: call.Function.Name,
				Content:  toolResp.Content,
			})
			history = append(history, ollama.ChatMessage{
				Role:    "tool",
				Content: toolResp.Content,
			})
		}
		r.logger.Debug("tool round complete", "iteration", i+1, "calls", len(resp.Message.ToolCalls))
	}

	return nil, fmt.Errorf("tool loop did not settle after %d iterations", r.maxIterations)
}
