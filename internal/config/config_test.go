package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStorefront(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/storefront")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")

	cfg, err := LoadStorefront()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadStorefront_missingSecret(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/storefront")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadStorefront()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "90m")
	d, err := Duration("TOKEN_TTL", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	t.Setenv("TOKEN_TTL", "soon")
	_, err = Duration("TOKEN_TTL", time.Hour)
	assert.Error(t, err)

	t.Setenv("TOKEN_TTL", "-1h")
	_, err = Duration("TOKEN_TTL", time.Hour)
	assert.Error(t, err)
}

func TestLoadNotifier(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := LoadNotifier()
	assert.ErrorContains(t, err, "KAFKA_BROKERS")

	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("MAILER_URL", "http://mailer:8083")
	t.Setenv("CONSUMER_GROUP", "")
	cfg, err := LoadNotifier()
	require.NoError(t, err)
	assert.Equal(t, "order-notifier", cfg.GroupID)
	assert.Equal(t, "http://mailer:8083", cfg.MailerURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_DOTENV_A=from-file\nSTOREFRONT_DOTENV_B=from-file\n"), 0o600))

	t.Setenv("STOREFRONT_DOTENV_A", "from-env")
	t.Setenv("STOREFRONT_DOTENV_B", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_DOTENV_B"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-env", os.Getenv("STOREFRONT_DOTENV_A"))
	assert.Equal(t, "from-file", os.Getenv("STOREFRONT_DOTENV_B"))
}
