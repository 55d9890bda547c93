// Package config loads and persists the application configuration.
package config

// Config is the user-editable application configuration, stored as JSON in
// the XDG config directory.
type Config struct {
	// ServerHost is the base URL of the model server.
	ServerHost string `json:"server_host" validate:"required,url"`

	// DefaultModel is used for new conversations until the user picks one.
	DefaultModel string `json:"default_model"`

	// ShowMetrics toggles the per-reply timing display.
	ShowMetrics bool `json:"show_metrics"`

	// DatabasePath overrides the default conversation store location.
	DatabasePath string `json:"database_path,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" validate:"oneof=debug info warn error"`
}
