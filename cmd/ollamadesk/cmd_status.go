package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ollamadesk/ollamadesk/src/ollama"
	"github.com/ollamadesk/ollamadesk/src/shell"
)

// StatusCmd reports whether the model server is installed, running, and
// reachable.
type StatusCmd struct {
	Open bool `help:"Open the server address in the browser"`
}

// Run executes the status command.
func (c *StatusCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	status := shell.Status(ctx)

	fmt.Printf("Installed: %v", status.Installed)
	if status.Path != "" {
		fmt.Printf(" (%s)", status.Path)
	}
	fmt.Println()
	fmt.Printf("Running:   %v\n", status.Running)

	if err := a.Client.CheckRunning(ctx); err != nil {
		fmt.Printf("Reachable: false (%s)\n", a.Client.BaseURL())
		return nil
	}
	fmt.Printf("Reachable: true (%s)\n", a.Client.BaseURL())

	if c.Open {
		return shell.OpenURL(a.Client.BaseURL())
	}
	return nil
}

// ServeCmd starts the model server as a detached background process.
type ServeCmd struct {
	Host string `help:"OLLAMA_HOST value for the spawned server"`
	Wait bool   `help:"Wait until the server answers before returning"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Client.CheckRunning(ctx); err == nil {
		fmt.Println("Server already running.")
		return nil
	}

	if err := shell.StartServer(ctx, c.Host); err != nil {
		return err
	}
	fmt.Println("Server starting.")

	if !c.Wait {
		return nil
	}
	for i := 0; i < 30; i++ {
		if err := a.Client.CheckRunning(ctx); err == nil {
			fmt.Println("Server ready.")
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return ollama.ErrNotRunning
}
