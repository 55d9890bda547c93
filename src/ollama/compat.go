package ollama

import (
	"fmt"
	"strings"
)

// toolCallingModels are the model families known to emit structured tool
// calls. Matching is by substring on the lowercased model name, so tags like
// "qwen2.5-coder:14b" match "qwen2.5".
var toolCallingModels = []string{
	"qwen2.5",
	"qwen2",
	"qwen",
	"mistral",
	"neural-chat",
	"dolphin-mixtral",
	"openchat",
	"llama3",
	"llama3.1",
	"command-r",
	"command-r-plus",
}

// IsToolCallSupported reports whether a model is expected to support tool
// calling.
func IsToolCallSupported(modelName string) bool {
	if modelName == "" {
		return false
	}
	lower := strings.ToLower(modelName)
	for _, supported := range toolCallingModels {
		if strings.Contains(lower, supported) {
			return true
		}
	}
	return false
}

// ToolCallingWarning returns a user-facing warning for unsupported models, or
// empty when the model is fine.
func ToolCallingWarning(modelName string) string {
	if IsToolCallSupported(modelName) {
		return ""
	}
	return fmt.Sprintf("The model %q does not support tool calling. Use a model like Qwen, Mistral, Llama3, or Command-R for tool calling support.", modelName)
}

// ToolCallingModels returns the supported model family list.
func ToolCallingModels() []string {
	out := make([]string, len(toolCallingModels))
	copy(out, toolCallingModels)
	return out
}
