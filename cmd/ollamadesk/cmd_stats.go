package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ollamadesk/ollamadesk/src/shell"
	"github.com/ollamadesk/ollamadesk/src/storage"
)

// StatsCmd shows storage statistics.
type StatsCmd struct {
	Open bool `help:"Reveal the database file in the system file manager"`
}

// Run executes the stats command.
func (c *StatsCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	stats := storage.GetStats(context.Background(), a.Store.DB())
	fmt.Printf("Conversations: %d\n", stats.ConversationCount)
	fmt.Printf("Messages:      %d\n", stats.MessageCount)
	fmt.Printf("Total:         %s\n", stats.TotalSize)
	fmt.Printf("Database:      %s\n", a.Store.Path())

	if c.Open {
		return shell.OpenPath(filepath.Dir(a.Store.Path()))
	}
	return nil
}

// FlushCmd deletes everything in the conversation store.
type FlushCmd struct {
	Yes bool `help:"Skip the confirmation prompt"`
}

// Run executes the flush command.
func (c *FlushCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	stats := storage.GetStats(ctx, a.Store.DB())
	if !c.Yes && !confirm(fmt.Sprintf("Delete %d conversation(s) and %d message(s)?",
		stats.ConversationCount, stats.MessageCount)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := storage.FlushAll(ctx, a.Store.DB()); err != nil {
		return err
	}
	a.Cache.ReplaceConversations(nil)
	a.Cache.SetFocused(nil, nil)
	fmt.Println("Store flushed.")
	return nil
}
