package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/ollamadesk/ollamadesk/src/envelope"
)

// GetMessages returns all messages for a conversation in creation order, with
// the JSON side-channel fields decoded into structured values. Corrupted
// side-channel data degrades to absent fields; the message text is always
// returned.
func GetMessages(ctx context.Context, db sqlscan.Querier, conversationID string) ([]Message, error) {
	query := `SELECT id, conversation_id, message, created_at, ai_replied, ctx, metrics, tool_calls, tool_results
		FROM conversation_messages WHERE conversation_id = ? ORDER BY created_at, id`
	var rows []messageRow
	if err := sqlscan.Select(ctx, db, &rows, query, conversationID); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, rows[i].toMessage())
	}
	return messages, nil
}

// UpsertMessage writes a message by id: a fresh id inserts a new row, an
// existing id updates the mutable fields in place (last write wins). Retrying
// a send with the same id therefore never duplicates the row. A
// conversation_id that references no conversation surfaces as ErrConstraint.
func UpsertMessage(ctx context.Context, db Execer, msg *Message) error {
	if msg.ID == "" {
		msg.ID = GenerateID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	var ctxVal *string
	if msg.Ctx != "" {
		ctxVal = &msg.Ctx
	}

	query := `INSERT INTO conversation_messages
		(id, conversation_id, message, created_at, ai_replied, ctx, metrics, tool_calls, tool_results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			message = excluded.message,
			ai_replied = excluded.ai_replied,
			ctx = excluded.ctx,
			metrics = excluded.metrics,
			tool_calls = excluded.tool_calls,
			tool_results = excluded.tool_results`

	_, err := db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.Message,
		msg.CreatedAt,
		boolToInt(msg.AiReplied),
		ctxVal,
		envelope.EncodeMetrics(msg.Metrics),
		envelope.EncodeToolCalls(msg.ToolCalls),
		envelope.EncodeToolResults(msg.ToolResults),
	)
	if err != nil {
		return wrapConstraint(err)
	}
	return nil
}

// ai_replied is stored as INTEGER 0/1.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
