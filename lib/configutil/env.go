package configutil

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads the given dotenv files (".env" when none are given) into
// the process environment. Missing files are skipped and variables that
// are already set are left alone.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		slog.Debug("loaded environment file", "file", f)
	}
	return nil
}

// OverrideFromEnv replaces *dst with the value of the environment variable
// key when it is set and non-empty.
func OverrideFromEnv(dst *string, key string) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return
	}
	*dst = value
}
