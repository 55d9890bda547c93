package main

import (
	"github.com/alecthomas/kong"
)

// CLI is the top-level command structure.
type CLI struct {
	ServerHost string `help:"Model server base URL" env:"OLLAMADESK_HOST"`
	Database   string `help:"Path to the conversation database"`
	LogLevel   string `default:"warn" help:"Log level (debug, info, warn, error)"`
	NoTools    bool   `help:"Disable database query tools"`

	Chat          ChatCmd          `cmd:"" help:"Send a prompt and print the reply"`
	Conversations ConversationsCmd `cmd:"" help:"Manage stored conversations"`
	Messages      MessagesCmd      `cmd:"" help:"Print the messages of a conversation"`
	Models        ModelsCmd        `cmd:"" help:"Manage models on the server"`
	Connections   ConnectionsCmd   `cmd:"" help:"Manage external database connections"`
	Stats         StatsCmd         `cmd:"" help:"Show storage statistics"`
	Flush         FlushCmd         `cmd:"" help:"Delete all conversations and messages"`
	Status        StatusCmd        `cmd:"" help:"Show model server status"`
	Serve         ServeCmd         `cmd:"" help:"Start the model server in the background"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ollamadesk"),
		kong.Description("Chat client for a locally running Ollama server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logger := createCLILogger(cli.LogLevel)
	if err := ctx.Run(&cli); err != nil {
		NewErrorHandler(logger).HandleError(err)
	}
}
