package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/ollamadesk/ollamadesk/src/ollama"
)

// Executor is a function type for tool execution.
type Executor func(ctx context.Context, call *envelope.ToolCall) (*Response, error)

// Middleware wraps an Executor to add functionality.
type Middleware func(next Executor) Executor

// Toolbox holds the registered tools and the middleware applied to every
// execution.
type Toolbox struct {
	tools      map[string]Tool
	middleware []Middleware
}

// NewToolbox creates an empty toolbox.
func NewToolbox() *Toolbox {
	return &Toolbox{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be unique.
func (tb *Toolbox) Register(tool Tool) error {
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := tb.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}
	tb.tools[tool.GetName()] = tool
	return nil
}

// Use registers middleware applied to all tool executions, first registered
// is the outermost layer.
func (tb *Toolbox) Use(mw Middleware) {
	tb.middleware = append(tb.middleware, mw)
}

// Get returns a specific tool by name.
func (tb *Toolbox) Get(name string) (Tool, bool) {
	tool, exists := tb.tools[name]
	return tool, exists
}

// Names returns the registered tool names, sorted.
func (tb *Toolbox) Names() []string {
	out := make([]string, 0, len(tb.tools))
	for name := range tb.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Definitions renders every registered tool as an Ollama chat API tool
// definition.
func (tb *Toolbox) Definitions() ([]ollama.Tool, error) {
	out := make([]ollama.Tool, 0, len(tb.tools))
	for _, name := range tb.Names() {
		tool := tb.tools[name]
		params, err := json.Marshal(tool.GetParameters())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema for tool %s: %w", name, err)
		}
		out = append(out, ollama.Tool{
			Type: tool.GetType(),
			Function: ollama.ToolFunction{
				Name:        tool.GetName(),
				Description: tool.GetDescription(),
				Parameters:  params,
			},
		})
	}
	return out, nil
}

// Execute runs a tool call with middleware applied. An unknown tool name is
// reported to the model as an error response, not a Go error.
func (tb *Toolbox) Execute(ctx context.Context, call *envelope.ToolCall) (*Response, error) {
	tool, exists := tb.tools[call.Function.Name]
	if !exists {
		return errorResponse(fmt.Sprintf("unknown tool %q", call.Function.Name)), nil
	}

	executor := Executor(tool.Execute)
	for i := len(tb.middleware) - 1; i >= 0; i-- {
		executor = tb.middleware[i](executor)
	}
	return executor(ctx, call)
}

// LoggingMiddleware logs tool execution details.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Executor) Executor {
		return func(ctx context.Context, call *envelope.ToolCall) (*Response, error) {
			logger.Info("executing tool", "tool", call.Function.Name)
			resp, err := next(ctx, call)
			switch {
			case err != nil:
				logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err)
			case resp != nil && resp.IsError:
				logger.Warn("tool reported error", "tool", call.Function.Name, "content", resp.Content)
			default:
				logger.Info("tool execution completed", "tool", call.Function.Name)
			}
			return resp, err
		}
	}
}
