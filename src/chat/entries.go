package chat

import (
	"time"

	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/ollamadesk/ollamadesk/src/storage"
)

// Entry is one displayable turn. The store keeps a single flat row shape;
// the boundary splits it into the two variants so callers cannot read model
// fields off a user message.
type Entry interface {
	entryID() string
}

// UserMessage is a turn typed by the user.
type UserMessage struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

func (m UserMessage) entryID() string { return m.ID }

// AiMessage is a model reply, carrying the continuation token, timing
// metrics, and any tool activity from its round trip.
type AiMessage struct {
	ID          string
	Text        string
	CreatedAt   time.Time
	Ctx         string
	Metrics     *envelope.Metrics
	ToolCalls   []envelope.ToolCall
	ToolResults []envelope.ToolResult
}

func (m AiMessage) entryID() string { return m.ID }

// Entries converts stored messages into tagged turns.
func Entries(messages []storage.Message) []Entry {
	out := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		if msg.AiReplied {
			out = append(out, AiMessage{
				ID:          msg.ID,
				Text:        msg.Message,
				CreatedAt:   msg.CreatedAt,
				Ctx:         msg.Ctx,
				Metrics:     msg.Metrics,
				ToolCalls:   msg.ToolCalls,
				ToolResults: msg.ToolResults,
			})
			continue
		}
		out = append(out, UserMessage{ID: msg.ID, Text: msg.Message, CreatedAt: msg.CreatedAt})
	}
	return out
}
