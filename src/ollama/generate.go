package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// Generate sends a prompt and returns the complete response (non-streaming).
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}
	req.Stream = false

	logger := c.logger.With("method", "Generate", "model", req.Model)
	logger.Debug("sending generate request")

	resp, err := c.post(ctx, "/api/generate", req, false)
	if err != nil {
		logger.Error("generate request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	logger.Info("generate complete", "eval_count", result.EvalCount)
	return &result, nil
}

// GenerateStream sends a prompt and delivers response text incrementally.
// onChunk is called synchronously for each piece of text as it arrives. The
// returned response is the assembled final state: full text, continuation
// context, and metrics from the terminal frame. Cancelling the context stops
// the stream; text already delivered stays delivered.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, onChunk func(text string)) (*GenerateResponse, error) {
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}
	req.Stream = true

	resp, err := c.post(ctx, "/api/generate", req, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	final := &GenerateResponse{Model: req.Model}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame GenerateResponse
		if err := json.Unmarshal(line, &frame); err != nil {
			// Malformed frames are skipped; the stream itself decides
			// when it is done.
			c.logger.Warn("skipping malformed stream frame", "error", err)
			continue
		}

		if frame.Response != "" {
			final.Response += frame.Response
			if onChunk != nil {
				onChunk(frame.Response)
			}
		}
		if frame.Done {
			final.Done = true
			final.Context = frame.Context
			final.CreatedAt = frame.CreatedAt
			final.TotalDuration = frame.TotalDuration
			final.LoadDuration = frame.LoadDuration
			final.PromptEvalCount = frame.PromptEvalCount
			final.PromptEvalDuration = frame.PromptEvalDuration
			final.EvalCount = frame.EvalCount
			final.EvalDuration = frame.EvalDuration
			return final, nil
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "stream read failed", Cause: err}
	}

	// Server closed the stream without a done frame.
	return final, nil
}
