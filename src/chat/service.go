package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ollamadesk/ollamadesk/src/ollama"
	"github.com/ollamadesk/ollamadesk/src/storage"
	"github.com/ollamadesk/ollamadesk/src/tools"
)

// titleLimit is how much of the first user message becomes the conversation
// title.
const titleLimit = 20

// Service drives the prompt round trip: persist the user message, call the
// model, persist the reply, and keep the cache in step. Writes that complete
// before a cancellation stay committed; there are no retries.
type Service struct {
	db     *storage.DB
	client *ollama.Client
	cache  *Cache
	runner *tools.Runner
	logger *slog.Logger
}

// NewService wires the service. runner may be nil to disable tool calling.
func NewService(db *storage.DB, client *ollama.Client, cache *Cache, runner *tools.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		client: client,
		cache:  cache,
		runner: runner,
		logger: logger.With("component", "chat_service"),
	}
}

// Cache exposes the display cache.
func (s *Service) Cache() *Cache { return s.cache }

// Refresh reloads the conversation list from the store.
func (s *Service) Refresh(ctx context.Context) error {
	conversations, err := storage.ListConversations(ctx, s.db.DB())
	if err != nil {
		return err
	}
	s.cache.ReplaceConversations(conversations)
	return nil
}

// Focus loads a conversation and its messages into the cache.
func (s *Service) Focus(ctx context.Context, id string) error {
	meta, err := storage.GetConversation(ctx, s.db.DB(), id)
	if err != nil {
		return err
	}
	messages, err := storage.GetMessages(ctx, s.db.DB(), id)
	if err != nil {
		return err
	}
	s.cache.SetFocused(meta, messages)
	return nil
}

// NewConversation creates and focuses an empty conversation. The placeholder
// title is replaced by the first prompt.
func (s *Service) NewConversation(ctx context.Context, model string) (*storage.Conversation, error) {
	if model == "" {
		model = s.client.DefaultModel()
	}
	conv := &storage.Conversation{
		Title: fmt.Sprintf("Conversation %d", len(s.cache.Conversations())+1),
		Model: model,
	}
	if err := storage.CreateConversation(ctx, s.db.DB(), conv); err != nil {
		return nil, err
	}
	s.cache.AddConversation(*conv)
	s.cache.SetFocused(conv, nil)
	s.logger.Info("conversation created", "id", conv.ID, "model", conv.Model)
	return conv, nil
}

// Rename updates a conversation title in the store and cache.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	if err := storage.RenameConversation(ctx, s.db.DB(), id, title); err != nil {
		return err
	}
	if meta, _ := s.cache.Focused(); meta != nil && meta.ID == id {
		s.cache.PatchFocusedMeta(title, "")
	} else if err := s.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// SetModel switches the model a conversation talks to.
func (s *Service) SetModel(ctx context.Context, id, model string) error {
	if err := storage.SetConversationModel(ctx, s.db.DB(), id, model); err != nil {
		return err
	}
	if meta, _ := s.cache.Focused(); meta != nil && meta.ID == id {
		s.cache.PatchFocusedMeta("", model)
	}
	return nil
}

// Delete removes a conversation and its messages.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := storage.DeleteConversation(ctx, s.db.DB(), id); err != nil {
		return err
	}
	s.cache.RemoveConversation(id)
	return nil
}

// SendPrompt runs one full round trip in the focused conversation, creating
// one implicitly when nothing is focused. onChunk streams partial reply text
// when non-nil; tool-capable models go through the tool loop instead, which
// does not stream.
func (s *Service) SendPrompt(ctx context.Context, prompt string, onChunk func(text string)) (*AiMessage, error) {
	meta, prior := s.cache.Focused()
	if meta == nil {
		conv, err := s.NewConversation(ctx, "")
		if err != nil {
			return nil, err
		}
		meta, prior = conv, nil
	}

	user := storage.Message{
		ID:             storage.GenerateID(),
		ConversationID: meta.ID,
		Message:        prompt,
		CreatedAt:      time.Now(),
	}
	if err := storage.UpsertMessage(ctx, s.db.DB(), &user); err != nil {
		return nil, err
	}
	s.cache.AppendMessage(user)

	if firstUserMessage(prior) {
		title := truncateTitle(prompt)
		if err := storage.RenameConversation(ctx, s.db.DB(), meta.ID, title); err != nil {
			s.logger.Warn("failed to retitle conversation", "id", meta.ID, "error", err)
		} else {
			s.cache.PatchFocusedMeta(title, "")
		}
	}

	reply, err := s.generateReply(ctx, meta, prior, prompt, onChunk)
	if err != nil {
		return nil, err
	}

	if err := storage.UpsertMessage(ctx, s.db.DB(), reply); err != nil {
		return nil, err
	}
	s.cache.AppendMessage(*reply)

	entry := Entries([]storage.Message{*reply})[0].(AiMessage)
	return &entry, nil
}

func (s *Service) generateReply(ctx context.Context, meta *storage.Conversation, prior []storage.Message, prompt string, onChunk func(string)) (*storage.Message, error) {
	reply := &storage.Message{
		ID:             storage.GenerateID(),
		ConversationID: meta.ID,
		CreatedAt:      time.Now(),
		AiReplied:      true,
	}

	if s.runner != nil && ollama.IsToolCallSupported(meta.Model) {
		history := chatHistory(prior, prompt)
		result, err := s.runner.Run(ctx, meta.Model, history)
		if err != nil {
			return nil, err
		}
		reply.Message = result.Content
		reply.Metrics = result.Metrics
		reply.ToolCalls = result.ToolCalls
		reply.ToolResults = result.ToolResults
		return reply, nil
	}

	req := ollama.GenerateRequest{
		Model:  meta.Model,
		Prompt: prompt,
	}
	if prev := lastContext(prior); prev != "" {
		req.Context = json.RawMessage(prev)
	}

	var (
		resp *ollama.GenerateResponse
		err  error
	)
	if onChunk != nil {
		resp, err = s.client.GenerateStream(ctx, req, onChunk)
	} else {
		resp, err = s.client.Generate(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	reply.Message = resp.Response
	reply.Metrics = resp.Metrics()
	if len(resp.Context) > 0 {
		reply.Ctx = string(resp.Context)
	}
	return reply, nil
}

// chatHistory flattens stored turns into chat roles for the tool loop.
func chatHistory(prior []storage.Message, prompt string) []ollama.ChatMessage {
	history := make([]ollama.ChatMessage, 0, len(prior)+1)
	for _, msg := range prior {
		role := "user"
		if msg.AiReplied {
			role = "assistant"
		}
		history = append(history, ollama.ChatMessage{Role: role, Content: msg.Message})
	}
	return append(history, ollama.ChatMessage{Role: "user", Content: prompt})
}

// lastContext finds the continuation token of the most recent model reply.
func lastContext(messages []storage.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].AiReplied && messages[i].Ctx != "" {
			return messages[i].Ctx
		}
	}
	return ""
}

func firstUserMessage(prior []storage.Message) bool {
	for _, msg := range prior {
		if !msg.AiReplied {
			return false
		}
	}
	return true
}

func truncateTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= titleLimit {
		return prompt
	}
	return string(runes[:titleLimit])
}
