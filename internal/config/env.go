package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFile loads dir/.env into the process environment. Variables already
// set are left alone and a missing file is not an error.
func loadEnvFile(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}
