package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/psds-microservice/tracker-service/internal/kafka"
	"github.com/psds-microservice/tracker-service/internal/sdk"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// DemoData: разрешает POST /sessions/:id/demo (заполнение демо-данными).
	DemoData bool
	// RequestTimeout: таймаут HTTP-запросов к Freshdesk и ожидания популяторов.
	RequestTimeout time.Duration
	// SessionTTL: простой сессии до закрытия, 0 отключает.
	SessionTTL time.Duration
	// UploadLimit: предел тела запроса с вложением, в байтах.
	UploadLimit int64

	Freshdesk struct {
		Subdomain string
		APIKey    string
	}

	Kafka struct {
		Brokers []string
		Topic   string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:        getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:       firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DemoData:       getBool("DEMO_DATA_ENABLED", false),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 15*time.Second),
		SessionTTL:     getDuration("SESSION_TTL", 30*time.Minute),
		UploadLimit:    getInt64("MAX_UPLOAD_BYTES", 32<<20),
	}
	cfg.Freshdesk.Subdomain = firstEnv("FRESHDESK_SUBDOMAIN", "FRESHDESK_DOMAIN", "")
	cfg.Freshdesk.APIKey = getEnv("FRESHDESK_API_KEY", "")
	cfg.Kafka.Brokers = kafka.ParseBrokers(getEnv("KAFKA_BROKERS", ""))
	cfg.Kafka.Topic = firstEnv("KAFKA_TOPIC_TRACKER", "KAFKA_TOPIC_TICKET", "tracker.events")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("config: HTTP_PORT is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	if c.SessionTTL < 0 {
		return errors.New("config: SESSION_TTL must not be negative")
	}
	if c.UploadLimit <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	if c.AppEnv == "production" {
		if c.Freshdesk.Subdomain == "" || c.Freshdesk.APIKey == "" {
			return errors.New("config: in production FRESHDESK_SUBDOMAIN and FRESHDESK_API_KEY are required")
		}
		if c.DemoData {
			return errors.New("config: DEMO_DATA_ENABLED is not allowed in production")
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// IParams: installation parameters, как их видит SDK.
func (c *Config) IParams() sdk.StaticIParams {
	return sdk.StaticIParams{
		sdk.IParamSubdomain: c.Freshdesk.Subdomain,
		sdk.IParamAPIKey:    c.Freshdesk.APIKey,
	}
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// getDuration принимает "15s" или число секунд.
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
