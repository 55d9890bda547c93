// Package modelfile builds Ollama Modelfile text for the custom model
// editor. The rendered output feeds the model server's create endpoint.
package modelfile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Parameter is one PARAMETER line, e.g. temperature 0.7.
type Parameter struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Message is one MESSAGE line seeding the model's history.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// Modelfile describes a custom model derived from a base model. Only From is
// required.
type Modelfile struct {
	From       string      `json:"from" validate:"required"`
	Parameters []Parameter `json:"parameters,omitempty" validate:"dive"`
	Template   string      `json:"template,omitempty"`
	System     string      `json:"system,omitempty"`
	Adapter    string      `json:"adapter,omitempty"`
	License    string      `json:"license,omitempty"`
	Messages   []Message   `json:"messages,omitempty" validate:"dive"`
}

var validate = validator.New()

// Validate checks the modelfile is renderable.
func (m *Modelfile) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid modelfile: %w", err)
	}
	return nil
}

// Render emits the Modelfile text. Multi-line values are wrapped in triple
// quotes the way the Ollama format expects.
func (m *Modelfile) Render() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", m.From)

	for _, p := range m.Parameters {
		fmt.Fprintf(&b, "PARAMETER %s %s\n", p.Name, p.Value)
	}
	if m.Template != "" {
		fmt.Fprintf(&b, "TEMPLATE %s\n", quote(m.Template))
	}
	if m.System != "" {
		fmt.Fprintf(&b, "SYSTEM %s\n", quote(m.System))
	}
	if m.Adapter != "" {
		fmt.Fprintf(&b, "ADAPTER %s\n", m.Adapter)
	}
	if m.License != "" {
		fmt.Fprintf(&b, "LICENSE %s\n", quote(m.License))
	}
	for _, msg := range m.Messages {
		fmt.Fprintf(&b, "MESSAGE %s %s\n", msg.Role, quote(msg.Content))
	}
	return b.String(), nil
}

// BaseModel extracts the FROM line of rendered Modelfile text. Used to sanity
// check round trips and user-pasted files.
func BaseModel(text string) (string, error) {
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && strings.EqualFold(fields[0], "FROM") {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("modelfile has no FROM line")
}

// quote wraps a value in triple quotes when it spans lines or contains
// spaces, matching how the Ollama CLI writes these fields.
func quote(v string) string {
	if strings.ContainsAny(v, "\n\" ") {
		return `"""` + v + `"""`
	}
	return v
}
