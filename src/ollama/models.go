package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ListModels retrieves all locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to list models: " + resp.Status}
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Models, nil
}

// ProgressFunc receives pull/create progress events.
type ProgressFunc func(PullProgress)

// Pull downloads a model, reporting progress through onProgress. Cancel the
// context to abort the download.
func (c *Client) Pull(ctx context.Context, name string, onProgress ProgressFunc) error {
	logger := c.logger.With("method", "Pull", "model", name)
	logger.Info("pulling model")

	body := struct {
		Name   string `json:"name"`
		Stream bool   `json:"stream"`
	}{Name: name, Stream: true}

	resp, err := c.post(ctx, "/api/pull", body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.consumeProgress(ctx, resp, onProgress)
}

// CreateModel builds a custom model from Modelfile text, reporting build
// progress through onProgress.
func (c *Client) CreateModel(ctx context.Context, name, modelfile string, onProgress ProgressFunc) error {
	logger := c.logger.With("method", "CreateModel", "model", name)
	logger.Info("creating model from modelfile")

	body := struct {
		Name      string `json:"name"`
		Modelfile string `json:"modelfile"`
		Stream    bool   `json:"stream"`
	}{Name: name, Modelfile: modelfile, Stream: true}

	resp, err := c.post(ctx, "/api/create", body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.consumeProgress(ctx, resp, onProgress)
}

// DeleteModel removes a locally installed model.
func (c *Client) DeleteModel(ctx context.Context, name string) error {
	body, err := json.Marshal(struct {
		Name string `json:"name"`
	}{Name: name})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.BaseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to delete model: " + resp.Status}
	}
	return nil
}

func (c *Client) consumeProgress(ctx context.Context, resp *http.Response, onProgress ProgressFunc) error {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event PullProgress
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		// The server reports failures mid-stream as {"error": "..."}.
		var serverErr serverError
		if json.Unmarshal(line, &serverErr) == nil && serverErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: serverErr.Error}
		}

		if onProgress != nil {
			onProgress(event)
		}
	}
	return scanner.Err()
}
