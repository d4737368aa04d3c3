package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with values from the environment or defaults
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("PLACEMENT_SERVER", "http://localhost:8080"),
		TokenFile: getEnvOrDefault("PLACEMENT_TOKEN_FILE", defaultTokenFile()),
		Output:    getEnvOrDefault("PLACEMENT_OUTPUT", "text"),
		Verbose:   false,
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".placement", "token")
	}
	return filepath.Join(home, ".placement", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
