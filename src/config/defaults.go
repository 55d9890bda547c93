package config

// DefaultConfig returns the configuration used before the user has saved
// anything.
func DefaultConfig() *Config {
	return &Config{
		ServerHost:  "http://127.0.0.1:11434",
		ShowMetrics: false,
		LogLevel:    "info",
	}
}
