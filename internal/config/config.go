// Package config reads service settings from the environment. A .env file in
// the working directory, when present, is loaded first and never overrides
// variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the given files, or .env when none are given. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Required(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return v, nil
}

func String(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func Duration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// List splits a comma separated variable, dropping empty entries.
func List(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type Storefront struct {
	Port         string
	PostgresURL  string
	JWTSecret    string
	TokenTTL     time.Duration
	KafkaBrokers []string
}

func LoadStorefront() (Storefront, error) {
	var (
		cfg Storefront
		err error
	)

	if cfg.PostgresURL, err = Required("POSTGRES_URL"); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret, err = Required("JWT_SECRET"); err != nil {
		return cfg, err
	}
	if cfg.TokenTTL, err = Duration("TOKEN_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	cfg.Port = String("PORT", "8080")
	cfg.KafkaBrokers = List("KAFKA_BROKERS")

	return cfg, nil
}

type Notifier struct {
	KafkaBrokers []string
	MailerURL    string
	GroupID      string
}

func LoadNotifier() (Notifier, error) {
	cfg := Notifier{
		KafkaBrokers: List("KAFKA_BROKERS"),
		GroupID:      String("CONSUMER_GROUP", "order-notifier"),
	}
	if len(cfg.KafkaBrokers) == 0 {
		return cfg, errors.New("KAFKA_BROKERS environment variable is required")
	}

	var err error
	if cfg.MailerURL, err = Required("MAILER_URL"); err != nil {
		return cfg, err
	}
	return cfg, nil
}
