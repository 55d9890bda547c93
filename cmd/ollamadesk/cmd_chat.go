package main

import (
	"context"
	"fmt"

	"github.com/ollamadesk/ollamadesk/src/envelope"
	"github.com/ollamadesk/ollamadesk/src/ollama"
	"github.com/ollamadesk/ollamadesk/src/shell"
	"github.com/ollamadesk/ollamadesk/src/tools"
)

// ChatCmd sends one prompt through the full round trip.
type ChatCmd struct {
	Prompt       string `arg:"" help:"The prompt to send, or - to read it from the clipboard"`
	Conversation string `help:"Continue an existing conversation by id"`
	Model        string `help:"Model for a new conversation"`
	NoStream     bool   `help:"Wait for the full reply instead of streaming"`
	Metrics      bool   `help:"Print timing metrics after the reply"`
	Copy         bool   `help:"Copy the reply to the clipboard"`
}

// Run executes the chat command.
func (c *ChatCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	prompt := c.Prompt
	if prompt == "-" {
		if prompt, err = shell.ReadClipboard(); err != nil {
			return fmt.Errorf("failed to read prompt from clipboard: %w", err)
		}
	}

	ctx := context.Background()
	if err := a.Chat.Refresh(ctx); err != nil {
		return err
	}

	if c.Conversation != "" {
		if err := a.Chat.Focus(ctx, c.Conversation); err != nil {
			return err
		}
	} else if c.Model != "" {
		if _, err := a.Chat.NewConversation(ctx, c.Model); err != nil {
			return err
		}
	}

	if meta, _ := a.Cache.Focused(); meta != nil && !ollama.IsToolCallSupported(meta.Model) && !cli.NoTools {
		fmt.Println(ollama.ToolCallingWarning(meta.Model))
	}

	// The tool loop never streams, so the reply may arrive whole even when
	// streaming was requested.
	streamed := false
	var onChunk func(string)
	if !c.NoStream {
		onChunk = func(text string) {
			streamed = true
			fmt.Print(text)
		}
	}

	reply, err := a.Chat.SendPrompt(ctx, prompt, onChunk)
	if err != nil {
		return err
	}

	if streamed {
		fmt.Println()
	} else {
		fmt.Println(reply.Text)
	}

	for _, result := range reply.ToolResults {
		if rows := envelope.ExtractTable(result.Content); rows != nil {
			fmt.Printf("\n[%s]\n%s", result.ToolName, tools.RenderTable(rows))
		}
	}

	if c.Copy {
		if err := shell.CopyToClipboard(reply.Text); err != nil {
			a.Logger.Warn("failed to copy reply to clipboard", "error", err)
		}
	}

	if c.Metrics || a.Config.ShowMetrics {
		printMetrics(reply.Metrics)
	}

	meta, _ := a.Cache.Focused()
	if meta != nil {
		fmt.Printf("\nconversation: %s\n", meta.ID)
	}
	return nil
}

func printMetrics(m *envelope.Metrics) {
	if m == nil {
		return
	}
	fmt.Printf("\ntokens: %d prompt, %d eval  total: %.2fs  eval rate: %.1f tok/s\n",
		m.PromptEvalCount, m.EvalCount,
		float64(m.TotalDuration)/1e9,
		tokensPerSecond(m.EvalCount, m.EvalDuration))
}

func tokensPerSecond(count int, durationNs int64) float64 {
	if durationNs == 0 {
		return 0
	}
	return float64(count) / (float64(durationNs) / 1e9)
}
