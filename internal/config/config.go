package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the service, read from the environment.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`

	StorageDriver           string `mapstructure:"STORAGE_DRIVER"`
	ServiceRequestsTable    string `mapstructure:"SERVICE_REQUESTS_TABLE"`
	DatabaseDSN             string `mapstructure:"DATABASE_DSN"`
	SQLitePath              string `mapstructure:"SQLITE_PATH"`
	StrictPendingUniqueness bool   `mapstructure:"STRICT_PENDING_UNIQUENESS"`

	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	DynamoDBEndpoint   string `mapstructure:"DYNAMODB_ENDPOINT"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	PendingCountTTL time.Duration `mapstructure:"PENDING_COUNT_TTL"`

	NATSURL           string `mapstructure:"NATS_URL"`
	NATSSubjectPrefix string `mapstructure:"NATS_SUBJECT_PREFIX"`

	SMTPHost       string   `mapstructure:"SMTP_HOST"`
	SMTPPort       int      `mapstructure:"SMTP_PORT"`
	SMTPUsername   string   `mapstructure:"SMTP_USERNAME"`
	SMTPPassword   string   `mapstructure:"SMTP_PASSWORD"`
	SMTPSender     string   `mapstructure:"SMTP_SENDER"`
	SMTPEncryption string   `mapstructure:"SMTP_ENCRYPTION"`
	NotifyEmailTo  []string `mapstructure:"NOTIFY_EMAIL_TO"`

	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	// ServiceTimezone is the IANA zone service dates are entered and compared in.
	ServiceTimezone string `mapstructure:"SERVICE_TIMEZONE"`
	location        *time.Location

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"SERVICE_NAME":              "service-requests",
	"HTTP_PORT":                 "8080",
	"STORAGE_DRIVER":            DriverDynamoDB,
	"SERVICE_REQUESTS_TABLE":    "service_requests",
	"DATABASE_DSN":              "",
	"SQLITE_PATH":               "service_requests.db",
	"STRICT_PENDING_UNIQUENESS": false,
	"AWS_REGION":                "us-east-1",
	"AWS_ACCESS_KEY_ID":         "local",
	"AWS_SECRET_ACCESS_KEY":     "local",
	"DYNAMODB_ENDPOINT":         "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"PENDING_COUNT_TTL":         "30s",
	"NATS_URL":                  "",
	"NATS_SUBJECT_PREFIX":       "service_requests",
	"SMTP_HOST":                 "",
	"SMTP_PORT":                 587,
	"SMTP_USERNAME":             "",
	"SMTP_PASSWORD":             "",
	"SMTP_SENDER":               "",
	"SMTP_ENCRYPTION":           "starttls",
	"NOTIFY_EMAIL_TO":           "",
	"NOTIFY_TIMEOUT":            "2s",
	"SERVICE_TIMEZONE":          "America/Lima",
	"JWT_SECRET":                "",
	"METRICS_ENABLED":           true,
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
}

// Load reads the configuration from environment variables on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.NotifyEmailTo = splitList(cfg.NotifyEmailTo)
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverDynamoDB:
		if c.ServiceRequestsTable == "" {
			return fmt.Errorf("SERVICE_REQUESTS_TABLE is required for the %s driver", c.StorageDriver)
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s driver", c.StorageDriver)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s driver", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	loc, err := time.LoadLocation(c.ServiceTimezone)
	if err != nil {
		return fmt.Errorf("invalid SERVICE_TIMEZONE %q: %w", c.ServiceTimezone, err)
	}
	c.location = loc
	return nil
}

// Location returns the service time zone, UTC until Validate has resolved one.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// EmailEnabled reports whether the SMTP notification channel can be built.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != "" && len(c.NotifyEmailTo) > 0
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
