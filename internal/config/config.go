package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Consumer ConsumerConfig
	Sites    SitesConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string

	// Connection pool limits
	MaxOpenConns int
	MaxIdleConns int
}

type RabbitMQConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// ConsumerConfig configures the queue publish notifications arrive on
type ConsumerConfig struct {
	Queue         string
	PrefetchCount int
}

// SitesConfig points at the YAML file holding the site definitions
type SitesConfig struct {
	File string
}

// Load reads the infrastructure configuration from the environment.
// The indexing tenant settings are loaded separately by LoadTenant, because an
// invalid tenant disables processing instead of stopping the service.
func Load() (*Config, error) {
	var missing []string
	var invalid []string

	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	getInt := func(key string, def int) int {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			invalid = append(invalid, key)
			return def
		}
		return n
	}

	config := &Config{
		Server: ServerConfig{
			Port: get("SERVER_PORT"),
			Host: get("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:           get("DB_HOST"),
			Port:           get("DB_PORT"),
			User:           get("DB_USER"),
			Password:       get("DB_PASSWORD"),
			DBName:         get("DB_NAME"),
			SSLMode:        get("DB_SSLMODE"),
			MigrationsPath: getOrDefault("DB_MIGRATIONS_PATH", "file://db/migrations"),
			MaxOpenConns:   getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   getInt("DB_MAX_IDLE_CONNS", 2),
		},
		Consumer: ConsumerConfig{
			Queue:         get("PUBLISH_QUEUE"),
			PrefetchCount: getInt("PUBLISH_PREFETCH_COUNT", 10),
		},
		Sites: SitesConfig{
			File: getOrDefault("SITES_FILE", "config/sites.yaml"),
		},
	}

	// A full RABBITMQ_URL replaces the individual connection settings
	config.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	if config.RabbitMQ.URL == "" {
		config.RabbitMQ.Host = get("RABBITMQ_HOST")
		config.RabbitMQ.Port = get("RABBITMQ_PORT")
		config.RabbitMQ.User = get("RABBITMQ_USER")
		config.RabbitMQ.Password = get("RABBITMQ_PASSWORD")
		config.RabbitMQ.VHost = get("RABBITMQ_VHOST")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid integer environment variables: %v", invalid)
	}

	return config, nil
}

func getOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// ConnectionString returns a DSN string for GORM
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// MigrationURL returns the postgres URL golang-migrate expects
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s%s",
		c.User, c.Password, c.Host, c.Port, c.VHost)
}
