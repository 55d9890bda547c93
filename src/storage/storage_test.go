package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newConversation(t *testing.T, db *DB, id string) *Conversation {
	t.Helper()
	conv := &Conversation{ID: id, Title: "T", Model: "llama3", CreatedAt: time.Now()}
	require.NoError(t, CreateConversation(context.Background(), db.DB(), conv))
	return conv
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Open already ran EnsureSchema once. Repeating it must neither fail
	// nor disturb existing data.
	newConversation(t, db, "c1")
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "hello",
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, db.EnsureSchema())
	}

	var cols []string
	require.NoError(t, sqlscan.Select(ctx, db.DB(), &cols,
		`SELECT name FROM pragma_table_info('conversation_messages')`))
	counts := map[string]int{}
	for _, c := range cols {
		counts[c]++
	}
	for _, col := range []string{"metrics", "tool_calls", "tool_results"} {
		assert.Equal(t, 1, counts[col], "column %s", col)
	}

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestCreateConversationDuplicateID(t *testing.T) {
	db := openTestDB(t)
	newConversation(t, db, "c1")

	err := CreateConversation(context.Background(), db.DB(), &Conversation{
		ID: "c1", Title: "other", Model: "llama3", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestUpsertIdentity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "first",
	}))
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "second", AiReplied: true,
	}))

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "second", msgs[0].Message)
	assert.True(t, msgs[0].AiReplied)
}

func TestUpsertOrphanRejected(t *testing.T) {
	db := openTestDB(t)

	err := UpsertMessage(context.Background(), db.DB(), &Message{
		ID: "m1", ConversationID: "nope", Message: "orphan",
	})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestCascadeDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	for _, id := range []string{"m1", "m2"} {
		require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
			ID: id, ConversationID: "c1", Message: id,
		}))
	}

	require.NoError(t, DeleteConversation(ctx, db.DB(), "c1"))

	_, err := GetConversation(ctx, db.DB(), "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAiRepliedNormalization(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	// Write the raw integer representation directly.
	for _, row := range []struct {
		id  string
		val int
	}{{"m0", 0}, {"m1", 1}} {
		_, err := db.DB().ExecContext(ctx,
			`INSERT INTO conversation_messages (id, conversation_id, message, created_at, ai_replied) VALUES (?, ?, ?, ?, ?)`,
			row.id, "c1", "x", time.Now(), row.val)
		require.NoError(t, err)
	}

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	byID := map[string]Message{}
	for _, m := range msgs {
		byID[m.ID] = m
	}
	assert.False(t, byID["m0"].AiReplied)
	assert.True(t, byID["m1"].AiReplied)
}

func TestGetMessagesDecodesEnvelopes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	base := time.Now()
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "hello", CreatedAt: base,
	}))
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m2", ConversationID: "c1", Message: "hi there", AiReplied: true,
		CreatedAt: base.Add(time.Second),
		Ctx:       "[1,2,3]",
		Metrics:   &envelope.Metrics{EvalCount: 10, EvalDuration: 500000000},
	}))

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "m1", msgs[0].ID)
	assert.Nil(t, msgs[0].Metrics)
	assert.Empty(t, msgs[0].Ctx)

	require.NotNil(t, msgs[1].Metrics)
	assert.Equal(t, 10, msgs[1].Metrics.EvalCount)
	assert.Equal(t, "[1,2,3]", msgs[1].Ctx)
}

func TestGetMessagesToleratesCorruptEnvelope(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	_, err := db.DB().ExecContext(ctx,
		`INSERT INTO conversation_messages (id, conversation_id, message, created_at, ai_replied, metrics) VALUES (?, ?, ?, ?, 1, ?)`,
		"m1", "c1", "still readable", time.Now(), `{"eval_count": `)
	require.NoError(t, err)

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "still readable", msgs[0].Message)
	assert.Nil(t, msgs[0].Metrics)
}

func TestToolCallEnvelopePersistence(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	calls := []envelope.ToolCall{{Function: envelope.ToolCallFunction{
		Name:      "execute_query",
		Arguments: map[string]any{"query": "SELECT 1"},
	}}}
	results := []envelope.ToolResult{{ToolName: "execute_query", Content: "[{\"1\": 1}]"}}

	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "done", AiReplied: true,
		ToolCalls: calls, ToolResults: results,
	}))

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, calls, msgs[0].ToolCalls)
	assert.Equal(t, results, msgs[0].ToolResults)
}

func TestRenameConversation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")

	require.NoError(t, RenameConversation(ctx, db.DB(), "c1", "renamed"))

	conv, err := GetConversation(ctx, db.DB(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", conv.Title)
	assert.Equal(t, "llama3", conv.Model)
}

func TestFlushAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "x",
	}))

	require.NoError(t, FlushAll(ctx, db.DB()))

	convs, err := ListConversations(ctx, db.DB())
	require.NoError(t, err)
	assert.Empty(t, convs)

	stats := GetStats(ctx, db.DB())
	assert.Equal(t, 0, stats.ConversationCount)
	assert.Equal(t, 0, stats.MessageCount)
	assert.Equal(t, "0 items", stats.TotalSize)
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	newConversation(t, db, "c1")
	newConversation(t, db, "c2")
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "x",
	}))

	stats := GetStats(ctx, db.DB())
	assert.Equal(t, 2, stats.ConversationCount)
	assert.Equal(t, 1, stats.MessageCount)
	assert.Equal(t, "3 items", stats.TotalSize)
}

func TestGetStatsResilience(t *testing.T) {
	db := openTestDB(t)
	// A closed handle fails every query; stats must still come back zeroed.
	require.NoError(t, db.Close())

	stats := GetStats(context.Background(), db.DB())
	assert.Equal(t, Stats{TotalSize: "0 items"}, stats)
}

func TestScenarioTwoPhaseConversation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, CreateConversation(ctx, db.DB(), &Conversation{
		ID: "c1", Title: "T", Model: "llama3", CreatedAt: now,
	}))
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m1", ConversationID: "c1", Message: "hello", CreatedAt: now,
	}))
	require.NoError(t, UpsertMessage(ctx, db.DB(), &Message{
		ID: "m2", ConversationID: "c1", Message: "hi there", AiReplied: true,
		CreatedAt: now.Add(time.Second),
		Metrics:   &envelope.Metrics{EvalCount: 10, EvalDuration: 500000000},
	}))

	msgs, err := GetMessages(ctx, db.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Message)
	require.NotNil(t, msgs[1].Metrics)
	assert.Equal(t, 10, msgs[1].Metrics.EvalCount)
}
