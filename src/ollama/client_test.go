package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL, DefaultModel: "llama3"})
	return client, server
}

func TestCheckRunning(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, client.CheckRunning(context.Background()))
}

func TestCheckRunningDown(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	err := client.CheckRunning(context.Background())
	assert.True(t, IsNotRunning(err))
}

func TestListModels(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3:latest", "digest": "abc123", "modified_at": "2024-05-01T00:00:00Z", "size": 4661224676},
			},
		})
	}))
	defer server.Close()

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3:latest", models[0].Name)
	assert.Equal(t, int64(4661224676), models[0].Size)
}

func TestGenerate(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.JSONEq(t, "[1,2,3]", string(req.Context))

		json.NewEncoder(w).Encode(GenerateResponse{
			Response:  "hi there",
			Done:      true,
			Context:   json.RawMessage("[4,5,6]"),
			EvalCount: 10,
		})
	}))
	defer server.Close()

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:  "hello",
		Context: json.RawMessage("[1,2,3]"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Response)
	assert.JSONEq(t, "[4,5,6]", string(resp.Context))

	m := resp.Metrics()
	require.NotNil(t, m)
	assert.Equal(t, 10, m.EvalCount)
}

func TestGenerateModelNotFound(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	assert.True(t, IsModelNotFound(err))
}

func TestGenerateServerError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model requires more memory"})
	}))
	defer server.Close()

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model requires more memory")
}

func TestGenerateStream(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, chunk := range []string{"hel", "lo ", "world"} {
			fmt.Fprintf(w, `{"response": %q, "done": false}`+"\n", chunk)
		}
		fmt.Fprintln(w, `{"response": "", "done": true, "context": [9,8,7], "eval_count": 3, "eval_duration": 1000}`)
	}))
	defer server.Close()

	var chunks []string
	resp, err := client.GenerateStream(context.Background(), GenerateRequest{Prompt: "hi"}, func(text string) {
		chunks = append(chunks, text)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"hel", "lo ", "world"}, chunks)
	assert.Equal(t, "hello world", resp.Response)
	assert.True(t, resp.Done)
	assert.JSONEq(t, "[9,8,7]", string(resp.Context))
	assert.Equal(t, 3, resp.EvalCount)
}

func TestGenerateStreamCancel(t *testing.T) {
	release := make(chan struct{})
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response": "first", "done": false}`)
		w.(http.Flusher).Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := client.GenerateStream(ctx, GenerateRequest{Prompt: "hi"}, func(string) {
		cancel()
	})
	assert.Error(t, err)
}

func TestPullProgress(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)
		fmt.Fprintln(w, `{"status": "pulling manifest"}`)
		fmt.Fprintln(w, `{"status": "downloading", "completed": 50, "total": 100}`)
		fmt.Fprintln(w, `{"status": "success"}`)
	}))
	defer server.Close()

	var events []PullProgress
	err := client.Pull(context.Background(), "llama3", func(p PullProgress) {
		events = append(events, p)
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(50), events[1].Completed)
	assert.Equal(t, "success", events[2].Status)
}

func TestPullServerErrorMidStream(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"status": "pulling manifest"}`)
		fmt.Fprintln(w, `{"error": "pull model manifest: file does not exist"}`)
	}))
	defer server.Close()

	err := client.Pull(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestChatWithToolCalls(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "execute_query", req.Tools[0].Function.Name)

		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": "", "tool_calls": [{"function": {"name": "execute_query", "arguments": {"query": "SELECT 1"}}}]}, "done": true}`)
	}))
	defer server.Close()

	tools := []Tool{{Type: "function", Function: ToolFunction{
		Name:       "execute_query",
		Parameters: json.RawMessage(`{"type":"object"}`),
	}}}

	resp, err := client.Chat(context.Background(), "", []ChatMessage{{Role: "user", Content: "show users"}}, tools)
	require.NoError(t, err)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "execute_query", resp.Message.ToolCalls[0].Function.Name)
	assert.Equal(t, "SELECT 1", resp.Message.ToolCalls[0].Function.Arguments["query"])
}

func TestToolCallSupport(t *testing.T) {
	assert.True(t, IsToolCallSupported("qwen2.5-coder:14b"))
	assert.True(t, IsToolCallSupported("Llama3.1:8b"))
	assert.False(t, IsToolCallSupported("codellama:7b"))
	assert.False(t, IsToolCallSupported(""))

	assert.Empty(t, ToolCallingWarning("mistral:latest"))
	assert.NotEmpty(t, ToolCallingWarning("codellama:7b"))
}
