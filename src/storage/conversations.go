package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// CreateConversation inserts a new conversation row. An id collision surfaces
// as ErrConstraint; ids are generated client-side so the primary-key
// constraint is the only uniqueness check.
func CreateConversation(ctx context.Context, db Execer, conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = GenerateID()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	query := `INSERT INTO conversations (id, title, model, created_at) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, query, conv.ID, conv.Title, conv.Model, conv.CreatedAt); err != nil {
		return wrapConstraint(err)
	}
	return nil
}

// GetConversation retrieves a conversation by id, or ErrNotFound.
func GetConversation(ctx context.Context, db sqlscan.Querier, id string) (*Conversation, error) {
	query := `SELECT id, title, model, created_at FROM conversations WHERE id = ?`
	var conv Conversation
	if err := sqlscan.Get(ctx, db, &conv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all conversation rows. Ordering is a presentation
// concern and not part of this contract.
func ListConversations(ctx context.Context, db sqlscan.Querier) ([]Conversation, error) {
	query := `SELECT id, title, model, created_at FROM conversations`
	var convs []Conversation
	if err := sqlscan.Select(ctx, db, &convs, query); err != nil {
		return nil, err
	}
	return convs, nil
}

// RenameConversation updates only the title field.
func RenameConversation(ctx context.Context, db Execer, id, title string) error {
	query := `UPDATE conversations SET title = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, title, id)
	return err
}

// SetConversationModel changes the model associated with a conversation.
// History already written under the previous model is untouched.
func SetConversationModel(ctx context.Context, db Execer, id, model string) error {
	query := `UPDATE conversations SET model = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, model, id)
	return err
}

// DeleteConversation removes a conversation and all of its messages. Messages
// go first so the foreign-key relationship is never left dangling; both
// deletes run in one transaction.
func DeleteConversation(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_messages WHERE conversation_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id); err != nil {
		tx.Rollback()
		return wrapConstraint(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// FlushAll wipes both tables unconditionally. Irreversible; any confirmation
// happens at the caller, never here.
func FlushAll(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM conversation_messages`); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return err
	}
	return nil
}
