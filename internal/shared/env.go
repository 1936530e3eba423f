package shared

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override credentials from the config file.
const (
	EnvCanvasAPIKey  = "CANVAS_API_KEY"
	EnvCanvasAPIURL  = "CANVAS_API_URL"
	EnvTodoistAPIKey = "TODOIST_API_KEY"
)

// ApplyEnv loads the given dotenv files (".env" when none are given) and lets
// the credential environment variables override values already in c.
//
// Missing dotenv files are not an error; a dotenv file that cannot be parsed is.
func ApplyEnv(c *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, f, err)
		}
	}

	if v := os.Getenv(EnvCanvasAPIKey); v != "" {
		c.Credentials.Canvas.APIKey = v
	}
	if v := os.Getenv(EnvCanvasAPIURL); v != "" {
		c.Credentials.Canvas.BaseURL = v
	}
	if v := os.Getenv(EnvTodoistAPIKey); v != "" {
		c.Credentials.Todoist.APIKey = v
	}
	return nil
}
