package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// The database connection string is delivered by the surrounding secret
// store as a JSON document mounted into the container. resolveDatabaseDSN
// prefers an explicit DB_DSN, then the mounted secret, then falls back to
// composing a DSN from the individual DB_* settings. The second return
// value reports whether the DSN came from an explicit source.
func resolveDatabaseDSN(db *DatabaseConfig) (string, bool, error) {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn, true, nil
	}

	if path := os.Getenv("DB_SECRET_FILE"); path != "" {
		dsn, err := readSecretDSN(path, getEnv("DB_SECRET_KEY", "connection_string"))
		if err != nil {
			return "", false, fmt.Errorf("failed to resolve database secret: %w", err)
		}
		return dsn, true, nil
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
	return dsn, false, nil
}

func readSecretDSN(path, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	payload := strings.TrimSpace(string(data))

	// Secrets are either a bare connection string or a JSON document with
	// the DSN under the configured key.
	if !strings.HasPrefix(payload, "{") {
		return payload, nil
	}

	var secret map[string]string
	if err := json.Unmarshal([]byte(payload), &secret); err != nil {
		return "", fmt.Errorf("secret %s is not valid JSON: %w", path, err)
	}

	dsn, ok := secret[key]
	if !ok || dsn == "" {
		return "", fmt.Errorf("secret %s has no %q entry", path, key)
	}

	return dsn, nil
}
