package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// DataDirEnv overrides the directory holding the store's migrations.
	DataDirEnv = "DATA_DIR"

	// StoreNameEnv is the banner shown on the catalog page.
	StoreNameEnv = "STORE_NAME"

	// AdminPasswordEnv is the shared secret gating product creation.
	AdminPasswordEnv = "ADMIN_PASSWORD"

	// SessionSecretEnv is the key used to sign the flash message cookie.
	SessionSecretEnv = "SESSION_SECRET"

	// RecentSalesLimitEnv is the number of sales shown on the admin page.
	RecentSalesLimitEnv = "RECENT_SALES_LIMIT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// OutboxIntervalEnv is the polling interval of the outbox worker.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"
)

const (
	DefaultHTTPServerPort    = "5000"
	DefaultMetricsServerPort = "9090"
	DefaultStoreName         = "Supermarket"
	DefaultRecentSalesLimit  = 20
	DefaultOutboxInterval    = 2 * time.Second

	defaultDataDir = "/var/data"
	migrationsDir  = "migrations"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	DataDir       string
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Store         Store
	AWS           AWSConfig
}

// Store holds the settings of the shop front and the admin form.
type Store struct {
	Name             string
	AdminPassword    string
	SessionSecret    string
	RecentSalesLimit int
}

// AWSConfig represents AWS-specific configuration settings.
// Sale and product events are only published when SQSQueueURL is set.
type AWSConfig struct {
	Region         string
	Endpoint       string
	SQSQueueURL    string
	OutboxInterval time.Duration
}

// OutboxEnabled reports whether events should be written to the outbox and published.
func (a AWSConfig) OutboxEnabled() bool {
	return a.SQSQueueURL != ""
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// MigrationsPath returns the directory golang-migrate reads the schema from.
func (c *Config) MigrationsPath() string {
	return filepath.Join(c.DataDir, migrationsDir)
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		AdminPasswordEnv: c.Store.AdminPassword,
		SessionSecretEnv: c.Store.SessionSecret,
	}); err != nil {
		return fmt.Errorf("store configuration incomplete: %w", err)
	}

	if c.Store.RecentSalesLimit <= 0 {
		return fmt.Errorf("%s must be positive, got %d", RecentSalesLimitEnv, c.Store.RecentSalesLimit)
	}

	if c.AWS.OutboxEnabled() && c.AWS.OutboxInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", OutboxIntervalEnv, c.AWS.OutboxInterval)
	}

	return nil
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

// defaultDataDirectory mirrors the deployment layout: a mounted /var/data volume wins,
// otherwise the working directory is used.
func defaultDataDirectory() string {
	if info, err := os.Stat(defaultDataDir); err == nil && info.IsDir() {
		return defaultDataDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func loadEnvFile() {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}
}

func loadAWSConfig() AWSConfig {
	return AWSConfig{
		Region:         os.Getenv(AWSRegionEnv),
		Endpoint:       os.Getenv(AWSEndpointEnv),
		SQSQueueURL:    os.Getenv(SQSQueueURLEnv),
		OutboxInterval: getEnvAsDuration(OutboxIntervalEnv, DefaultOutboxInterval),
	}
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	loadEnvFile()

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		DataDir:   getEnv(DataDirEnv, defaultDataDirectory()),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     os.Getenv(DBPortEnv),
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, DefaultHTTPServerPort),
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, DefaultMetricsServerPort),
		},
		Store: Store{
			Name:             getEnv(StoreNameEnv, DefaultStoreName),
			AdminPassword:    os.Getenv(AdminPasswordEnv),
			SessionSecret:    os.Getenv(SessionSecretEnv),
			RecentSalesLimit: getEnvAsInt(RecentSalesLimitEnv, DefaultRecentSalesLimit),
		},
		AWS: loadAWSConfig(),
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadNotifierFromEnv loads the subset of the configuration the notification
// service needs. The queue URL is mandatory there.
func LoadNotifierFromEnv() (*Config, error) {
	loadEnvFile()

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		AWS:       loadAWSConfig(),
	}

	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:   conf.AWS.Region,
		SQSQueueURLEnv: conf.AWS.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
