package ollama

import (
	"context"
	"encoding/json"
)

// Chat sends a chat exchange, optionally advertising tools the model may
// call. The returned assistant message carries tool_calls when the model
// decided to invoke one.
func (c *Client) Chat(ctx context.Context, model string, messages []ChatMessage, tools []Tool) (*ChatResponse, error) {
	if model == "" {
		model = c.config.DefaultModel
	}

	logger := c.logger.With("method", "Chat", "model", model, "tools", len(tools))
	logger.Debug("sending chat request")

	req := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Tools:    tools,
	}

	resp, err := c.post(ctx, "/api/chat", req, false)
	if err != nil {
		logger.Error("chat request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	logger.Info("chat complete", "tool_calls", len(result.Message.ToolCalls))
	return &result, nil
}
