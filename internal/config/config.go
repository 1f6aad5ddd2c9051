package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"emailscheduler/internal/clock"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Mail transports.
const (
	MailSMTP    = "smtp"
	MailWebhook = "webhook"
	MailLog     = "log"
)

// Config captures all runtime configuration for the service.
type Config struct {
	HTTP      HTTPConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Mail      MailConfig
	Server    ServerConfig
	Log       LogConfig
}

// HTTPConfig holds HTTP server related configuration.
type HTTPConfig struct {
	Port string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the formatted connection string for pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// SQLiteConfig holds the embedded database location.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds redis connection settings. An empty Addr disables
// delivery receipts.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	ReceiptTTL time.Duration
}

// SchedulerConfig holds scheduling settings.
type SchedulerConfig struct {
	Interval  time.Duration
	Timezone  string
	AutoStart bool
}

// MailConfig selects and configures the mail transport.
type MailConfig struct {
	Transport    string
	From         string
	SendTimeout  time.Duration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	WebhookURL   string
	WebhookKey   string
}

// ServerConfig stores general server runtime configuration.
type ServerConfig struct {
	ShutdownTimeout time.Duration
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string
	Format string
}

// Load builds configuration by reading environment variables with sane defaults.
func Load() (*Config, error) {
	pgPort, err := getInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	receiptTTL, err := getDuration("RECEIPT_TTL", "168h")
	if err != nil {
		return nil, fmt.Errorf("invalid RECEIPT_TTL: %w", err)
	}

	interval, err := getDuration("SCHEDULER_INTERVAL", "60s")
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
	}
	if interval < time.Second {
		interval = time.Second
	}

	autoStart, err := getBool("SCHEDULER_AUTOSTART", true)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_AUTOSTART: %w", err)
	}

	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	sendTimeout, err := getDuration("MAIL_SEND_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_SEND_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SERVER_SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port: getString("HTTP_PORT", "5000"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getString("STORE_DRIVER", StorePostgres)),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "postgres"),
			Port:     pgPort,
			User:     getString("POSTGRES_USER", "appuser"),
			Password: getString("POSTGRES_PASSWORD", "appsecret"),
			DBName:   getString("POSTGRES_DB", "emailscheduler"),
			SSLMode:  getString("POSTGRES_SSLMODE", "disable"),
		},
		SQLite: SQLiteConfig{
			Path: getString("SQLITE_PATH", "emailscheduler.db"),
		},
		Redis: RedisConfig{
			Addr:       getString("REDIS_ADDR", ""),
			Password:   getString("REDIS_PASSWORD", ""),
			DB:         redisDB,
			ReceiptTTL: receiptTTL,
		},
		Scheduler: SchedulerConfig{
			Interval:  interval,
			Timezone:  getString("TIMEZONE", clock.DefaultZone),
			AutoStart: autoStart,
		},
		Mail: MailConfig{
			Transport:    strings.ToLower(getString("MAIL_TRANSPORT", MailSMTP)),
			From:         getString("MAIL_FROM", ""),
			SendTimeout:  sendTimeout,
			SMTPHost:     getString("SMTP_HOST", ""),
			SMTPPort:     smtpPort,
			SMTPUsername: getString("SMTP_USERNAME", ""),
			SMTPPassword: getString("SMTP_PASSWORD", ""),
			WebhookURL:   getString("MAIL_WEBHOOK_URL", ""),
			WebhookKey:   getString("MAIL_WEBHOOK_AUTH_KEY", ""),
		},
		Server: ServerConfig{
			ShutdownTimeout: shutdownTimeout,
		},
		Log: LogConfig{
			Level:  getString("LOG_LEVEL", "info"),
			Format: strings.ToLower(getString("LOG_FORMAT", "json")),
		},
	}

	return cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StorePostgres, StoreMemory:
	case StoreSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("SQLITE_PATH must be set for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if _, err := clock.Load(c.Scheduler.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE: %w", err))
	}

	switch c.Mail.Transport {
	case MailSMTP:
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST must be set for the smtp transport"))
		}
		if c.Mail.SMTPUsername != "" && c.Mail.SMTPPassword == "" {
			errs = append(errs, errors.New("SMTP_PASSWORD must be set when SMTP_USERNAME is"))
		}
	case MailWebhook:
		if c.Mail.WebhookURL == "" {
			errs = append(errs, errors.New("MAIL_WEBHOOK_URL must be set for the webhook transport"))
		}
	case MailLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Mail.Transport))
	}
	if c.Mail.Transport != MailLog && c.Mail.From == "" {
		errs = append(errs, errors.New("MAIL_FROM must be set"))
	}

	return errors.Join(errs...)
}

func getString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) (int, error) {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	}
	return def, nil
}

func getDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getString(key, def))
}

func getBool(key string, def bool) (bool, error) {
	if val := os.Getenv(key); val != "" {
		return strconv.ParseBool(val)
	}
	return def, nil
}
