package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

const sqlTemplate = `-- +goose Up

-- +goose Down
`

// CreateSQLMigration writes a timestamped empty SQL migration into dir.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensuring migrations dir: %w", err)
	}

	version := time.Now().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, normalizeName(name))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(sqlTemplate), 0o644); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}
	return path, nil
}

// ValidateDir checks that the migrations in dir parse and are well ordered.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := goose.CollectMigrations(dir, 0, goose.MaxVersion); err != nil {
		return fmt.Errorf("collect migrations: %w", err)
	}
	return nil
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}
