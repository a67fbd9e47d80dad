package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBConfig struct {
		Host     string `env:"READMODEL_DB_HOST" envDefault:"localhost"`
		Port     int    `env:"READMODEL_DB_PORT" envDefault:"5432"`
		User     string `env:"READMODEL_DB_USER" envDefault:"user"`
		Password string `env:"READMODEL_DB_PASSWORD" envDefault:"password"`
		Name     string `env:"READMODEL_DB_NAME" envDefault:"readmodel_db"`
		SSLMode  string `env:"READMODEL_DB_SSLMODE" envDefault:"disable"`
	}

	KafkaBrokerURL           string `env:"KAFKA_BROKER_URL" envDefault:"localhost:9092"`
	KafkaAccountCreatedTopic string `env:"KAFKA_ACCOUNT_CREATED_TOPIC" envDefault:"events.account.created"`
	KafkaMoneyDepositedTopic string `env:"KAFKA_MONEY_DEPOSITED_TOPIC" envDefault:"events.account.deposited"`
	KafkaMoneyWithdrawnTopic string `env:"KAFKA_MONEY_WITHDRAWN_TOPIC" envDefault:"events.account.withdrawn"`
	KafkaConsumerGroup       string `env:"KAFKA_CONSUMER_GROUP" envDefault:"readmodel-projection-group"`

	HTTPPort       int    `env:"READMODEL_HTTP_PORT" envDefault:"8083"`
	MigrationsPath string `env:"READMODEL_MIGRATIONS_PATH" envDefault:"file://migrations"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

// GetKafkaTopics lists every topic the projection subscribes to.
func (c *Config) GetKafkaTopics() []string {
	return []string{
		c.KafkaAccountCreatedTopic,
		c.KafkaMoneyDepositedTopic,
		c.KafkaMoneyWithdrawnTopic,
	}
}
