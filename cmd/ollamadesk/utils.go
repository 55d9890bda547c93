package main

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/ollamadesk/ollamadesk/src/app"
	"github.com/ollamadesk/ollamadesk/src/config"
)

// buildApp loads the config file, applies CLI overrides, and wires the
// application services.
func buildApp(cli *CLI) (*app.App, error) {
	loader := config.NewLoader(afero.NewOsFs())
	cfg, err := loader.Load(config.GetDefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if cli.ServerHost != "" {
		cfg.ServerHost = cli.ServerHost
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	return app.New(app.Options{
		Config:       cfg,
		Logger:       createCLILogger(cfg.LogLevel),
		DatabasePath: cli.Database,
		DisableTools: cli.NoTools,
	})
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
