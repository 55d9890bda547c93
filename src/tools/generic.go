package tools

import (
	"context"
	"encoding/json"
	"fmt"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/ollamadesk/ollamadesk/src/envelope"
)

// Handler is a type-safe tool handler. The returned string is the content
// shown to the model.
type Handler[TInput any] func(ctx context.Context, input TInput) (string, error)

// GenericTool adapts a typed handler to the Tool interface, generating the
// parameter schema from the input struct's tags.
type GenericTool[TInput any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	handler     Handler[TInput]
}

// New builds a tool from a typed handler with automatic schema generation.
func New[TInput any](name, description string, handler Handler[TInput]) (Tool, error) {
	var input TInput
	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for tool %s: %w", name, err)
	}
	return &GenericTool[TInput]{
		name:        name,
		description: description,
		schema:      &schema,
		handler:     handler,
	}, nil
}

// MustNew builds a tool and panics on error. Tool definitions are static, so
// a schema failure is a programming error.
func MustNew[TInput any](name, description string, handler Handler[TInput]) Tool {
	tool, err := New(name, description, handler)
	if err != nil {
		panic(err)
	}
	return tool
}

func (gt *GenericTool[TInput]) GetType() string { return "function" }

func (gt *GenericTool[TInput]) GetName() string { return gt.name }

func (gt *GenericTool[TInput]) GetDescription() string { return gt.description }

func (gt *GenericTool[TInput]) GetParameters() *jsonschema.Schema { return gt.schema }

// Execute parses the call arguments into the input type and runs the
// handler. Parse and handler failures come back as error responses so the
// model can see what went wrong.
func (gt *GenericTool[TInput]) Execute(ctx context.Context, call *envelope.ToolCall) (*Response, error) {
	raw, err := json.Marshal(call.Function.Arguments)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode arguments: %v", err)), nil
	}

	var input TInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return errorResponse(fmt.Sprintf("failed to parse arguments: %v", err)), nil
	}

	content, err := gt.handler(ctx, input)
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return &Response{Content: content}, nil
}

var _ Tool = (*GenericTool[struct{}])(nil)
