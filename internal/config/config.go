package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/forgo/dinmore/api/internal/database"
	"gopkg.in/yaml.v3"
)

// Supported store backends
const (
	BackendSurrealDB = "surrealdb"
	BackendSQLite    = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port" env:"SERVER_PORT"`
	Env             string        `yaml:"env" env:"SERVER_ENV"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// StoreConfig selects the table store backend and names the tables
type StoreConfig struct {
	Backend         string `yaml:"backend" env:"STORE_BACKEND"`
	PageSize        int    `yaml:"page_size" env:"TABLE_PAGE_SIZE"`
	DeviceTable     string `yaml:"device_table" env:"DEVICE_TABLE"`
	PatronTable     string `yaml:"patron_table" env:"PATRON_TABLE"`
	DevicePartition string `yaml:"device_partition" env:"DEVICE_PARTITION"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `yaml:"host" env:"DB_HOST"`
	Port      string `yaml:"port" env:"DB_PORT"`
	Namespace string `yaml:"namespace" env:"DB_NAMESPACE"`
	Database  string `yaml:"database" env:"DB_DATABASE"`
	User      string `yaml:"user" env:"DB_USER"`
	Password  string `yaml:"password" env:"DB_PASSWORD"`
}

// SQLiteConfig holds the embedded SQLite backend settings
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

// AuthConfig holds the admin key hash guarding device management
type AuthConfig struct {
	AdminKeyHash string `yaml:"admin_key_hash" env:"ADMIN_KEY_HASH"`
}

// RateLimitConfig limits sighting ingestion per client
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" env:"PATRON_RATE_LIMIT_ENABLED"`
	Rate    int           `yaml:"rate" env:"PATRON_RATE_LIMIT"`
	Window  time.Duration `yaml:"window" env:"PATRON_RATE_WINDOW"`
	Burst   int           `yaml:"burst" env:"PATRON_RATE_BURST"`
}

// MQTTConfig holds the sighting ingestion broker settings
type MQTTConfig struct {
	Enabled     bool          `yaml:"enabled" env:"MQTT_ENABLED"`
	Host        string        `yaml:"host" env:"MQTT_HOST"`
	Port        int           `yaml:"port" env:"MQTT_PORT"`
	TLS         bool          `yaml:"tls" env:"MQTT_TLS"`
	ClientID    string        `yaml:"client_id" env:"MQTT_CLIENT_ID"`
	Username    string        `yaml:"username" env:"MQTT_USERNAME"`
	Password    string        `yaml:"password" env:"MQTT_PASSWORD"`
	QoS         int           `yaml:"qos" env:"MQTT_QOS"`
	TopicPrefix string        `yaml:"topic_prefix" env:"MQTT_TOPIC_PREFIX"`
	MaxDelay    time.Duration `yaml:"max_reconnect_delay" env:"MQTT_MAX_RECONNECT_DELAY"`
}

// InfluxDBConfig holds the sighting telemetry sink settings
type InfluxDBConfig struct {
	Enabled       bool          `yaml:"enabled" env:"INFLUXDB_ENABLED"`
	URL           string        `yaml:"url" env:"INFLUXDB_URL"`
	Token         string        `yaml:"token" env:"INFLUXDB_TOKEN"`
	Org           string        `yaml:"org" env:"INFLUXDB_ORG"`
	Bucket        string        `yaml:"bucket" env:"INFLUXDB_BUCKET"`
	BatchSize     uint          `yaml:"batch_size" env:"INFLUXDB_BATCH_SIZE"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"INFLUXDB_FLUSH_INTERVAL"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables. Call Validate afterwards.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Backend:         BackendSurrealDB,
			PageSize:        database.MaxPageSize,
			DeviceTable:     "devices",
			PatronTable:     "patrons",
			DevicePartition: "device",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "dinmore",
			Database:  "main",
			User:      "root",
			Password:  "root",
		},
		SQLite: SQLiteConfig{
			Path: "./data/dinmore.db",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Rate:    60,
			Window:  time.Minute,
			Burst:   10,
		},
		MQTT: MQTTConfig{
			Host:        "localhost",
			Port:        1883,
			ClientID:    "dinmore-api",
			QoS:         1,
			TopicPrefix: "dinmore/sightings",
			MaxDelay:    time.Minute,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "sightings",
			BatchSize:     100,
			FlushInterval: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if !slices.Contains([]string{"development", "production", "test"}, c.Server.Env) {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	errs = append(errs, c.Store.validate()...)

	switch c.Store.Backend {
	case BackendSurrealDB:
		errs = append(errs, c.Database.validate()...)
	case BackendSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	}

	if c.IsProduction() && c.Auth.AdminKeyHash == "" {
		errs = append(errs, errors.New("ADMIN_KEY_HASH is required in production"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			errs = append(errs, errors.New("PATRON_RATE_LIMIT must be positive"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("PATRON_RATE_WINDOW must be positive"))
		}
	}

	if c.MQTT.Enabled {
		errs = append(errs, c.MQTT.validate()...)
	}
	if c.InfluxDB.Enabled {
		errs = append(errs, c.InfluxDB.validate()...)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got '%s'", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got '%s'", c.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s StoreConfig) validate() []error {
	var errs []error
	if s.Backend != BackendSurrealDB && s.Backend != BackendSQLite {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be '%s' or '%s', got '%s'", BackendSurrealDB, BackendSQLite, s.Backend))
	}
	if s.PageSize < 1 || s.PageSize > database.MaxPageSize {
		errs = append(errs, fmt.Errorf("TABLE_PAGE_SIZE must be between 1 and %d", database.MaxPageSize))
	}
	if err := database.ValidateTableName(s.DeviceTable); err != nil {
		errs = append(errs, fmt.Errorf("DEVICE_TABLE: %w", err))
	}
	if err := database.ValidateTableName(s.PatronTable); err != nil {
		errs = append(errs, fmt.Errorf("PATRON_TABLE: %w", err))
	}
	if s.DeviceTable != "" && s.DeviceTable == s.PatronTable {
		errs = append(errs, errors.New("DEVICE_TABLE and PATRON_TABLE must differ"))
	}
	if s.DevicePartition == "" {
		errs = append(errs, errors.New("DEVICE_PARTITION is required"))
	}
	return errs
}

func (d DatabaseConfig) validate() []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if d.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if d.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}
	return errs
}

func (m MQTTConfig) validate() []error {
	var errs []error
	if m.Host == "" {
		errs = append(errs, errors.New("MQTT_HOST is required when MQTT is enabled"))
	}
	if m.Port < 1 || m.Port > 65535 {
		errs = append(errs, fmt.Errorf("MQTT_PORT must be between 1 and 65535, got %d", m.Port))
	}
	if m.QoS < 0 || m.QoS > 2 {
		errs = append(errs, fmt.Errorf("MQTT_QOS must be 0, 1, or 2, got %d", m.QoS))
	}
	if m.TopicPrefix == "" {
		errs = append(errs, errors.New("MQTT_TOPIC_PREFIX is required when MQTT is enabled"))
	}
	return errs
}

func (i InfluxDBConfig) validate() []error {
	var missing []string
	if i.URL == "" {
		missing = append(missing, "INFLUXDB_URL")
	}
	if i.Token == "" {
		missing = append(missing, "INFLUXDB_TOKEN")
	}
	if i.Org == "" {
		missing = append(missing, "INFLUXDB_ORG")
	}
	if i.Bucket == "" {
		missing = append(missing, "INFLUXDB_BUCKET")
	}
	if len(missing) > 0 {
		return []error{fmt.Errorf("InfluxDB is enabled but missing: %s", strings.Join(missing, ", "))}
	}
	return nil
}

// SurrealConfig returns the SurrealDB connection settings
func (c *Config) SurrealConfig() database.Config {
	return database.Config{
		Host:      c.Database.Host,
		Port:      c.Database.Port,
		User:      c.Database.User,
		Password:  c.Database.Password,
		Namespace: c.Database.Namespace,
		Database:  c.Database.Database,
	}
}
