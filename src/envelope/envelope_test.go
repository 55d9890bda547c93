package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCallsRoundTrip(t *testing.T) {
	calls := []ToolCall{
		{Function: ToolCallFunction{
			Name:      "execute_query",
			Arguments: map[string]any{"query": "SELECT * FROM users", "limit": float64(50)},
		}},
		{Function: ToolCallFunction{
			Name:      "get_database_schema",
			Arguments: map[string]any{"table": "users"},
		}},
	}

	raw := EncodeToolCalls(calls)
	require.NotNil(t, raw)

	decoded := DecodeToolCalls(raw)
	assert.Equal(t, calls, decoded)
}

func TestToolResultsRoundTrip(t *testing.T) {
	results := []ToolResult{
		{ToolName: "execute_query", Content: `Returned 2 rows:\n[{"id":1},{"id":2}]`},
	}

	raw := EncodeToolResults(results)
	require.NotNil(t, raw)
	assert.Equal(t, results, DecodeToolResults(raw))
}

func TestMetricsRoundTrip(t *testing.T) {
	m := &Metrics{
		TotalDuration: 1200000000,
		EvalCount:     10,
		EvalDuration:  500000000,
	}

	raw := EncodeMetrics(m)
	require.NotNil(t, raw)
	assert.Equal(t, m, DecodeMetrics(raw))
}

func TestEncodeEmptyYieldsNull(t *testing.T) {
	assert.Nil(t, EncodeToolCalls(nil))
	assert.Nil(t, EncodeToolCalls([]ToolCall{}))
	assert.Nil(t, EncodeToolResults(nil))
	assert.Nil(t, EncodeMetrics(nil))
}

func TestDecodeAbsentYieldsNil(t *testing.T) {
	empty := ""
	assert.Nil(t, DecodeToolCalls(nil))
	assert.Nil(t, DecodeToolCalls(&empty))
	assert.Nil(t, DecodeToolResults(nil))
	assert.Nil(t, DecodeMetrics(nil))
	assert.Nil(t, DecodeMetrics(&empty))
}

func TestDecodeMalformedDoesNotPanic(t *testing.T) {
	garbage := `{"not": "an array"`
	assert.Nil(t, DecodeToolCalls(&garbage))
	assert.Nil(t, DecodeToolResults(&garbage))
	assert.Nil(t, DecodeMetrics(&garbage))
}

func TestExtractTable(t *testing.T) {
	content := `Query executed successfully. Returned 2 rows:
[{"id": 1, "name": "alice"}, {"id": 2, "name": "bob"}]`

	rows := ExtractTable(content)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, float64(2), rows[1]["id"])
}

func TestExtractTableSkipsNonObjectArrays(t *testing.T) {
	// The bracket expression is not an array of objects; the real result
	// set comes later in the content.
	content := `Columns [id, name] follow: [{"id": 7}]`
	rows := ExtractTable(content)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(7), rows[0]["id"])
}

func TestExtractTableNoTable(t *testing.T) {
	assert.Nil(t, ExtractTable("Query executed successfully. No rows returned."))
	assert.Nil(t, ExtractTable(""))
	assert.Nil(t, ExtractTable("malformed [ json"))
	assert.Nil(t, ExtractTable("[]"))
}
