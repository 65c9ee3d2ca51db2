package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig is the PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig is the Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig is the broker configuration. An empty Broker disables MQTT
// entirely (no telemetry consumer, no MQTT notifier).
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	HTTP struct {
		Addr string
	}

	Ingest struct {
		TelemetryTopic    string // MQTT subscription for inbound telemetry
		NotifyTopicPrefix string // MQTT prefix for outbound notifications
		WebhookURL        string // optional webhook notifier endpoint
		AlertStatePrefix  string // debounce state key prefix
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with local-dev
// defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "telemetry")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "telemetry-ingest")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Ingest.TelemetryTopic = getEnv("TELEMETRY_TOPIC", "telemetry/+/data")
	cfg.Ingest.NotifyTopicPrefix = getEnv("NOTIFY_TOPIC_PREFIX", "telemetry/events")
	cfg.Ingest.WebhookURL = getEnv("WEBHOOK_URL", "")
	cfg.Ingest.AlertStatePrefix = getEnv("ALERT_STATE_PREFIX", "alert:state:")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
