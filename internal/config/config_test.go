package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"telemetry-ingest/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Empty(t, cfg.MQTT.Broker, "MQTT is disabled by default")
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "telemetry/+/data", cfg.Ingest.TelemetryTopic)
	require.Equal(t, "telemetry/events", cfg.Ingest.NotifyTopicPrefix)
	require.Equal(t, "alert:state:", cfg.Ingest.AlertStatePrefix)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("TELEMETRY_TOPIC", "sensors/+/raw")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/telemetry")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 6432, cfg.Database.Port)
	require.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	require.Equal(t, byte(2), cfg.MQTT.QoS)
	require.Equal(t, "sensors/+/raw", cfg.Ingest.TelemetryTopic)
	require.Equal(t, "https://hooks.example.com/telemetry", cfg.Ingest.WebhookURL)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestGetDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		Database: "telemetry", SSLMode: "disable",
	}
	require.Equal(t,
		"host=localhost port=5432 user=u password=p dbname=telemetry sslmode=disable",
		cfg.GetDSN())
}
