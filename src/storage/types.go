package storage

import (
	"time"

	"github.com/ollamadesk/ollamadesk/src/envelope"
)

// Conversation is the metadata row for one chat thread. Only Title and Model
// are mutable after creation.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Model     string    `json:"model" db:"model"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message is one turn in a conversation. AiReplied discriminates the two
// variants sharing this shape: user messages carry only the text, model
// messages additionally carry the continuation token, metrics, and any tool
// activity.
type Message struct {
	ID             string                `json:"id"`
	ConversationID string                `json:"conversation_id"`
	Message        string                `json:"message"`
	CreatedAt      time.Time             `json:"created_at"`
	AiReplied      bool                  `json:"ai_replied"`
	Ctx            string                `json:"ctx,omitempty"`
	Metrics        *envelope.Metrics     `json:"metrics,omitempty"`
	ToolCalls      []envelope.ToolCall   `json:"tool_calls,omitempty"`
	ToolResults    []envelope.ToolResult `json:"tool_results,omitempty"`
}

// messageRow is the flat storage representation of Message. The side-channel
// fields stay as nullable JSON text until decoded by the envelope package.
type messageRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Message        string    `db:"message"`
	CreatedAt      time.Time `db:"created_at"`
	AiReplied      bool      `db:"ai_replied"`
	Ctx            *string   `db:"ctx"`
	Metrics        *string   `db:"metrics"`
	ToolCalls      *string   `db:"tool_calls"`
	ToolResults    *string   `db:"tool_results"`
}

func (r *messageRow) toMessage() Message {
	msg := Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Message:        r.Message,
		CreatedAt:      r.CreatedAt,
		AiReplied:      r.AiReplied,
		Metrics:        envelope.DecodeMetrics(r.Metrics),
		ToolCalls:      envelope.DecodeToolCalls(r.ToolCalls),
		ToolResults:    envelope.DecodeToolResults(r.ToolResults),
	}
	if r.Ctx != nil {
		msg.Ctx = *r.Ctx
	}
	return msg
}

// Stats summarizes the store contents for the settings display.
type Stats struct {
	ConversationCount int    `json:"conversation_count"`
	MessageCount      int    `json:"message_count"`
	TotalSize         string `json:"total_size"`
}
