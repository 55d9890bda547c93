// Package chat holds the in-memory conversation state and the service that
// drives a prompt round trip against the model server and the store.
package chat

import (
	"log/slog"
	"sync"

	"github.com/ollamadesk/ollamadesk/src/storage"
)

// Cache mirrors the store for display: the conversation list plus the
// currently focused conversation and its messages. It is never the source of
// truth; it is rebuilt from the store at startup and reconciled after writes.
type Cache struct {
	mu sync.Mutex

	conversations []storage.Conversation
	focused       *storage.Conversation
	messages      []storage.Message

	logger *slog.Logger
}

// NewCache creates an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{logger: logger.With("component", "chat_cache")}
}

// SetFocused swaps the focused conversation and its messages in one step, so
// readers never observe messages from one conversation under another's
// metadata.
func (c *Cache) SetFocused(meta *storage.Conversation, messages []storage.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if meta == nil {
		c.focused = nil
		c.messages = nil
		return
	}
	copied := *meta
	c.focused = &copied
	c.messages = append([]storage.Message(nil), messages...)
}

// Focused returns the focused conversation metadata and messages, or nil when
// nothing is focused.
func (c *Cache) Focused() (*storage.Conversation, []storage.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.focused == nil {
		return nil, nil
	}
	copied := *c.focused
	return &copied, append([]storage.Message(nil), c.messages...)
}

// AppendMessage adds a message to the focused conversation. A message for a
// different conversation is dropped with a warning; focus may have moved
// while a reply was in flight.
func (c *Cache) AppendMessage(msg storage.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.focused == nil || msg.ConversationID != c.focused.ID {
		c.logger.Warn("dropping message for unfocused conversation",
			"message_conversation", msg.ConversationID)
		return
	}
	c.messages = append(c.messages, msg)
}

// PatchFocusedMeta merges non-empty title and model into the focused
// conversation's metadata. No-op when nothing is focused.
func (c *Cache) PatchFocusedMeta(title, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.focused == nil {
		return
	}
	if title != "" {
		c.focused.Title = title
	}
	if model != "" {
		c.focused.Model = model
	}
	for i := range c.conversations {
		if c.conversations[i].ID == c.focused.ID {
			c.conversations[i] = *c.focused
		}
	}
}

// Conversations returns the cached conversation list.
func (c *Cache) Conversations() []storage.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.Conversation(nil), c.conversations...)
}

// ReplaceConversations swaps the cached conversation list.
func (c *Cache) ReplaceConversations(conversations []storage.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversations = append([]storage.Conversation(nil), conversations...)
}

// AddConversation appends one conversation to the cached list.
func (c *Cache) AddConversation(conv storage.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversations = append(c.conversations, conv)
}

// RemoveConversation drops a conversation from the list and clears focus if
// it was the focused one.
func (c *Cache) RemoveConversation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.conversations[:0]
	for _, conv := range c.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	c.conversations = kept
	if c.focused != nil && c.focused.ID == id {
		c.focused = nil
		c.messages = nil
	}
}
