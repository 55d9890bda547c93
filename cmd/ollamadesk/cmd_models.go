package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ollamadesk/ollamadesk/src/modelfile"
	"github.com/ollamadesk/ollamadesk/src/ollama"
)

// ModelsCmd manages models on the server.
type ModelsCmd struct {
	List   ModelsListCmd   `cmd:"" default:"1" help:"List installed models"`
	Pull   ModelsPullCmd   `cmd:"" help:"Download a model"`
	Rm     ModelsRmCmd     `cmd:"" help:"Delete a model"`
	Create ModelsCreateCmd `cmd:"" help:"Build a custom model from a Modelfile"`
}

// ModelsListCmd lists installed models.
type ModelsListCmd struct{}

// Run executes the models list command.
func (c *ModelsListCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.Client.ListModels(context.Background())
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No models installed.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tTOOLS\tMODIFIED")
	for _, m := range models {
		tools := ""
		if ollama.IsToolCallSupported(m.Name) {
			tools = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, formatSize(m.Size), tools, m.ModifiedAt)
	}
	return w.Flush()
}

// ModelsPullCmd downloads a model from the registry.
type ModelsPullCmd struct {
	Name string `arg:"" help:"Model name, e.g. llama3:8b"`
}

// Run executes the models pull command.
func (c *ModelsPullCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.Client.Pull(context.Background(), c.Name, printProgress)
	if err != nil {
		return err
	}
	fmt.Printf("\nPulled %s\n", c.Name)
	return nil
}

// ModelsRmCmd deletes an installed model.
type ModelsRmCmd struct {
	Name string `arg:"" help:"Model name"`
}

// Run executes the models rm command.
func (c *ModelsRmCmd) Run(cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Client.DeleteModel(context.Background(), c.Name); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", c.Name)
	return nil
}

// ModelsCreateCmd builds a custom model, either from a Modelfile on disk or
// from flags.
type ModelsCreateCmd struct {
	Name      string   `arg:"" help:"Name for the new model"`
	File      string   `help:"Path to an existing Modelfile" type:"existingfile"`
	From      string   `help:"Base model when building from flags"`
	System    string   `help:"System prompt"`
	Template  string   `help:"Prompt template"`
	Parameter []string `help:"Model parameters as name=value, repeatable"`
}

// Run executes the models create command.
func (c *ModelsCreateCmd) Run(cli *CLI) error {
	text, err := c.modelfileText()
	if err != nil {
		return err
	}

	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Client.CreateModel(context.Background(), c.Name, text, printProgress); err != nil {
		return err
	}
	fmt.Printf("\nCreated %s\n", c.Name)
	return nil
}

func (c *ModelsCreateCmd) modelfileText() (string, error) {
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return "", err
		}
		if _, err := modelfile.BaseModel(string(data)); err != nil {
			return "", err
		}
		return string(data), nil
	}

	mf := modelfile.Modelfile{
		From:     c.From,
		System:   c.System,
		Template: c.Template,
	}
	for _, p := range c.Parameter {
		name, value, found := strings.Cut(p, "=")
		if !found {
			return "", fmt.Errorf("invalid parameter %q, expected name=value", p)
		}
		mf.Parameters = append(mf.Parameters, modelfile.Parameter{Name: name, Value: value})
	}
	return mf.Render()
}

func printProgress(p ollama.PullProgress) {
	if p.Total > 0 {
		fmt.Printf("\r%s %3d%%", p.Status, p.Completed*100/p.Total)
		return
	}
	fmt.Printf("\r%s", p.Status)
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
