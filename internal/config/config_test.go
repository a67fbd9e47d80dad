package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBConfig.Host)
	assert.Equal(t, 5432, cfg.DBConfig.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.GetKafkaBrokers())
	assert.Equal(t, []string{
		"events.account.created",
		"events.account.deposited",
		"events.account.withdrawn",
	}, cfg.GetKafkaTopics())
	assert.Equal(t, 8083, cfg.HTTPPort)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKER_URL", "broker-1:9092,broker-2:9092")
	t.Setenv("READMODEL_DB_PORT", "5433")
	t.Setenv("READMODEL_DB_SSLMODE", "require")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.GetKafkaBrokers())
	assert.Equal(t, 5433, cfg.DBConfig.Port)
	assert.Contains(t, cfg.GetDBMigrationConnectionString(), "sslmode=require")
	assert.Contains(t, cfg.GetDBMigrationConnectionString(), ":5433/")
}
