// Package tools implements the function-calling tools exposed to the model
// and the loop that drives them. Tools are registered in a Toolbox and
// advertised to the Ollama chat endpoint as JSON schema function definitions.
package tools

import (
	"context"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/ollamadesk/ollamadesk/src/envelope"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// GetType returns the tool type (always "function" for now)
	GetType() string

	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// Execute runs the tool with the given call arguments
	Execute(ctx context.Context, call *envelope.ToolCall) (*Response, error)
}

// Response is the outcome of one tool execution. Content is what the model
// sees; execution failures are reported in-band as content so the model can
// recover, not as Go errors.
type Response struct {
	Content string
	IsError bool
}

func errorResponse(msg string) *Response {
	return &Response{Content: "Error: " + msg, IsError: true}
}
