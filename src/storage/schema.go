package storage

import "fmt"

const createConversationsTable = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at DATETIME NOT NULL
)`

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS conversation_messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	ai_replied INTEGER NOT NULL,
	ctx TEXT
)`

// sideChannelColumns were added after the initial release, so existing
// databases gain them through ALTER TABLE on startup.
var sideChannelColumns = []string{"metrics", "tool_calls", "tool_results"}

// EnsureSchema creates the two core tables and applies the additive column
// migrations. Migration is attempt-and-ignore: each ADD COLUMN that fails
// because the column already exists counts as success, so calling this any
// number of times leaves the schema identical to calling it once. Any other
// failure is fatal and propagates to the caller.
func (d *DB) EnsureSchema() error {
	if _, err := d.db.Exec(createConversationsTable); err != nil {
		return fmt.Errorf("failed to create conversations table: %w", err)
	}
	if _, err := d.db.Exec(createMessagesTable); err != nil {
		return fmt.Errorf("failed to create conversation_messages table: %w", err)
	}

	for _, col := range sideChannelColumns {
		stmt := fmt.Sprintf("ALTER TABLE conversation_messages ADD COLUMN %s TEXT", col)
		if _, err := d.db.Exec(stmt); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
	}

	return nil
}
