package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ollamadesk/ollamadesk/src/dbconn"
	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/ollamadesk/ollamadesk/src/kvstore"
	"github.com/ollamadesk/ollamadesk/src/ollama"
)

type echoInput struct {
	Text string `json:"text" required:"true"`
}

func newEchoTool(t *testing.T) Tool {
	t.Helper()
	tool, err := New("echo", "Echo the input back",
		func(ctx context.Context, input echoInput) (string, error) {
			if input.Text == "boom" {
				return "", fmt.Errorf("refusing to echo boom")
			}
			return "echo: " + input.Text, nil
		})
	require.NoError(t, err)
	return tool
}

func call(name string, args map[string]any) *envelope.ToolCall {
	return &envelope.ToolCall{Function: envelope.ToolCallFunction{Name: name, Arguments: args}}
}

func TestToolboxExecute(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))
	require.Error(t, tb.Register(newEchoTool(t)))

	resp, err := tb.Execute(context.Background(), call("echo", map[string]any{"text": "hi"}))
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Equal(t, "echo: hi", resp.Content)
}

func TestToolboxUnknownTool(t *testing.T) {
	tb := NewToolbox()
	resp, err := tb.Execute(context.Background(), call("missing", nil))
	require.NoError(t, err)
	require.True(t, resp.IsError)
	require.Contains(t, resp.Content, "unknown tool")
}

func TestHandlerErrorBecomesErrorResponse(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	resp, err := tb.Execute(context.Background(), call("echo", map[string]any{"text": "boom"}))
	require.NoError(t, err)
	require.True(t, resp.IsError)
	require.Contains(t, resp.Content, "Error: refusing to echo boom")
}

func TestDefinitions(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	defs, err := tb.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "function", defs[0].Type)
	require.Equal(t, "echo", defs[0].Function.Name)
	require.Contains(t, string(defs[0].Function.Parameters), "text")
}

func newSQLiteFixture(t *testing.T) (*dbconn.Manager, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')`)
	require.NoError(t, err)

	manager := dbconn.NewManager(kvstore.NewMemStore(), slog.Default())
	added, err := manager.Add(dbconn.Connection{Name: "fixture", Type: dbconn.TypeSQLite, Database: path})
	require.NoError(t, err)
	require.NoError(t, manager.SetActive(added.ID))
	return manager, path
}

func TestExecuteQuery(t *testing.T) {
	manager, _ := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(),
		call("execute_query", map[string]any{"query": "SELECT id, name FROM users ORDER BY id"}))
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Contains(t, resp.Content, "Returned 2 row(s)")

	rows := envelope.ExtractTable(resp.Content)
	require.Len(t, rows, 2)
	require.Equal(t, "alice", rows[0]["name"])
}

func TestExecuteQueryLimit(t *testing.T) {
	manager, _ := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(),
		call("execute_query", map[string]any{"query": "SELECT * FROM users", "limit": 1}))
	require.NoError(t, err)
	require.Contains(t, resp.Content, "truncated to 1")
	require.Len(t, envelope.ExtractTable(resp.Content), 1)
}

func TestExecuteQueryNoActiveConnection(t *testing.T) {
	manager := dbconn.NewManager(kvstore.NewMemStore(), slog.Default())
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(),
		call("execute_query", map[string]any{"query": "SELECT 1"}))
	require.NoError(t, err)
	require.True(t, resp.IsError)
	require.Contains(t, resp.Content, "no active database connection")
}

func TestExecuteStatement(t *testing.T) {
	manager, path := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(),
		call("execute_query", map[string]any{"query": "DELETE FROM users WHERE id = 1"}))
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Contains(t, resp.Content, "1 row(s) affected")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	require.Equal(t, 1, n)
}

func TestSchemaInspection(t *testing.T) {
	manager, _ := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(), call("get_database_schema", map[string]any{}))
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Contains(t, resp.Content, "TABLE users")
	require.Contains(t, resp.Content, "name TEXT")
	require.Contains(t, resp.Content, "id INTEGER PRIMARY KEY")
}

func TestTransactionRollsBack(t *testing.T) {
	manager, path := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(), call("execute_transaction", map[string]any{
		"queries": []any{
			"INSERT INTO users (id, name) VALUES (3, 'carol')",
			"INSERT INTO users (id, name) VALUES (1, 'dup')",
		},
	}))
	require.NoError(t, err)
	require.True(t, resp.IsError)
	require.Contains(t, resp.Content, "rolled back")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	require.Equal(t, 2, n)
}

func TestTransactionCommits(t *testing.T) {
	manager, path := newSQLiteFixture(t)
	tb := NewToolbox()
	require.NoError(t, NewDatabaseTools(manager, slog.Default()).RegisterAll(tb))

	resp, err := tb.Execute(context.Background(), call("execute_transaction", map[string]any{
		"queries": []any{
			"INSERT INTO users (id, name) VALUES (3, 'carol')",
			"UPDATE users SET name = 'robert' WHERE id = 2",
		},
	}))
	require.NoError(t, err)
	require.False(t, resp.IsError)
	require.Contains(t, resp.Content, "Transaction committed")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM users WHERE id = 2").Scan(&name))
	require.Equal(t, "robert", name)
}

func TestRunnerToolLoop(t *testing.T) {
	round := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		round++
		w.Header().Set("Content-Type", "application/json")
		if round == 1 {
			fmt.Fprint(w, `{"model":"m","message":{"role":"assistant","content":"",
				"tool_calls":[{"function":{"name":"echo","arguments":{"text":"hi"}}}]},"done":true}`)
			return
		}
		// second round should include the tool result in the history
		msgs := req["messages"].([]any)
		last := msgs[len(msgs)-1].(map[string]any)
		require.Equal(t, "tool", last["role"])
		require.Equal(t, "echo: hi", last["content"])
		fmt.Fprint(w, `{"model":"m","message":{"role":"assistant","content":"all done"},"done":true}`)
	}))
	defer srv.Close()

	client := ollama.NewClient(ollama.Config{BaseURL: srv.URL})
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	runner := NewRunner(client, tb, slog.Default())
	result, err := runner.Run(context.Background(), "m",
		[]ollama.ChatMessage{{Role: "user", Content: "please echo hi"}})
	require.NoError(t, err)
	require.Equal(t, "all done", result.Content)
	require.Len(t, result.ToolCalls, 1)
	require.Equal(t, "echo", result.ToolCalls[0].Function.Name)
	require.Len(t, result.ToolResults, 1)
	require.Equal(t, "echo: hi", result.ToolResults[0].Content)
}

func TestRunnerIterationBound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"m","message":{"role":"assistant","content":"",
			"tool_calls":[{"function":{"name":"echo","arguments":{"text":"again"}}}]},"done":true}`)
	}))
	defer srv.Close()

	client := ollama.NewClient(ollama.Config{BaseURL: srv.URL})
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	_, err := NewRunner(client, tb, slog.Default()).Run(context.Background(), "m",
		[]ollama.ChatMessage{{Role: "user", Content: "loop"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not settle")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]map[string]any{
		{"id": 1, "name": "alice"},
		{"id": 2, "name": "bob"},
	})
	require.Contains(t, out, "alice")
	require.Contains(t, out, "bob")
	require.True(t, strings.Contains(strings.ToLower(out), "id"))

	require.Empty(t, RenderTable(nil))
}
