package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ollamadesk/ollamadesk/src/chat"
	"github.com/ollamadesk/ollamadesk/src/storage"
)

// ConversationsCmd manages stored conversations.
type ConversationsCmd struct {
	List   ConversationsListCmd   `cmd:"" default:"1" help:"List conversations"`
	Rename ConversationsRenameCmd `cmd:"" help:"Rename a conversation"`
	Delete ConversationsDeleteCmd `cmd:"" help:"Delete a conversation and its messages"`
}

// ConversationsListCmd lists conversations.
type ConversationsListCmd struct{}

// Run executes the list command.
func (c *ConversationsListCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	conversations, err := storage.ListConversations(context.Background(), a.Store.DB())
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMODEL\tCREATED")
	for _, conv := range conversations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			conv.ID, truncate(conv.Title, 40), conv.Model,
			conv.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// ConversationsRenameCmd renames a conversation.
type ConversationsRenameCmd struct {
	ID    string `arg:"" help:"Conversation id"`
	Title string `arg:"" help:"New title"`
}

// Run executes the rename command.
func (c *ConversationsRenameCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Chat.Rename(context.Background(), c.ID, c.Title); err != nil {
		return err
	}
	fmt.Printf("Renamed %s to %q\n", c.ID, c.Title)
	return nil
}

// ConversationsDeleteCmd deletes a conversation.
type ConversationsDeleteCmd struct {
	ID  string `arg:"" help:"Conversation id"`
	Yes bool   `help:"Skip the confirmation prompt"`
}

// Run executes the delete command.
func (c *ConversationsDeleteCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if !c.Yes && !confirm(fmt.Sprintf("Delete conversation %s and all its messages?", c.ID)) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := a.Chat.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", c.ID)
	return nil
}

// MessagesCmd prints the messages of one conversation.
type MessagesCmd struct {
	ID string `arg:"" help:"Conversation id"`
}

// Run executes the messages command.
func (c *MessagesCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	messages, err := storage.GetMessages(ctx, a.Store.DB(), c.ID)
	if err != nil {
		return err
	}

	for _, entry := range chat.Entries(messages) {
		switch m := entry.(type) {
		case chat.UserMessage:
			fmt.Printf("[user] %s\n", m.Text)
		case chat.AiMessage:
			fmt.Printf("[assistant] %s\n", m.Text)
			for _, call := range m.ToolCalls {
				fmt.Printf("  (called %s)\n", call.Function.Name)
			}
		}
	}
	return nil
}
