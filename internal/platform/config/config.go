package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// SMTPConfig configures the transactional-email collaborator.
//
// These values are deployment-provided; local development normally leaves
// MAILER=log and never touches them.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func LoadSMTPConfigFromEnv() (SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return SMTPConfig{}, fmt.Errorf("missing required env vars: SMTP_HOST, SMTP_FROM")
	}

	cfg := SMTPConfig{
		Host:     host,
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
		FromName: Getenv("SMTP_FROM_NAME", "Cascade Randonneurs"),
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return SMTPConfig{}, fmt.Errorf("SMTP_PORT must be an integer: %w", err)
		}
		cfg.Port = p
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file when one is present. Missing files are fine:
// deployed environments configure through real env vars.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// GetenvInt reads an integer env var, falling back to def when the variable
// is unset or unparseable.
func GetenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
