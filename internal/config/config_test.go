package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "HTTP_PORT", "DEMO_DATA_ENABLED", "REQUEST_TIMEOUT", "SESSION_TTL", "MAX_UPLOAD_BYTES", "KAFKA_BROKERS", "KAFKA_TOPIC_TRACKER", "KAFKA_TOPIC_TICKET"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8098", cfg.HTTPPort)
	assert.False(t, cfg.DemoData)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(32<<20), cfg.UploadLimit)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "tracker.events", cfg.Kafka.Topic)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("APP_PORT", "")
	t.Setenv("DEMO_DATA_ENABLED", "true")
	t.Setenv("REQUEST_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("FRESHDESK_SUBDOMAIN", "acme")
	t.Setenv("FRESHDESK_API_KEY", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.True(t, cfg.DemoData)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(1024), cfg.UploadLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "acme", cfg.IParams()["freshdesk_subdomain"])
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{HTTPPort: "8098", AppEnv: "production", RequestTimeout: time.Second, UploadLimit: 1}
	assert.Error(t, cfg.Validate())

	cfg.Freshdesk.Subdomain = "acme"
	cfg.Freshdesk.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.DemoData = true
	assert.Error(t, cfg.Validate())
}

func TestValidateLimits(t *testing.T) {
	cfg := &Config{HTTPPort: "8098", RequestTimeout: time.Second, UploadLimit: 1024}
	assert.NoError(t, cfg.Validate())

	cfg.SessionTTL = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "SESSION_TTL")

	cfg.SessionTTL = 0
	cfg.UploadLimit = 0
	assert.ErrorContains(t, cfg.Validate(), "MAX_UPLOAD_BYTES")
}
