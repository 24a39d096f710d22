// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported telemetry exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterGRPC   = "grpc"
	ExporterHTTP   = "http"
)

const (
	defaultCheckInterval = time.Hour
	defaultTimezone      = "America/Sao_Paulo"
	defaultHTTPAddr      = ":8080"
	defaultAMQPExchange  = "backoffice"
	defaultAMQPRouting   = "archive.monthly"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	HTTPAddr    string

	ArchiveEnabled       bool
	ArchiveCheckInterval time.Duration
	ArchiveTimezone      string

	TelegramBotToken     string
	TelegramAdminChatIDs []int64

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	OTelExporter string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AMQPURL:          os.Getenv("AMQP_URL"),
	}

	cfg.HTTPAddr = defaultHTTPAddr
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	cfg.ArchiveEnabled = os.Getenv("ARCHIVE_ENABLED") != "false"
	cfg.ArchiveCheckInterval = defaultCheckInterval
	if s := os.Getenv("ARCHIVE_CHECK_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			cfg.ArchiveCheckInterval = d
		}
	}
	cfg.ArchiveTimezone = defaultTimezone
	if tz := os.Getenv("ARCHIVE_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.ArchiveTimezone = tz
		}
	}

	chatIDs := os.Getenv("TELEGRAM_ADMIN_CHAT_IDS")
	if chatIDs != "" {
		for idStr := range strings.SplitSeq(chatIDs, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				continue
			}
			cfg.TelegramAdminChatIDs = append(cfg.TelegramAdminChatIDs, id)
		}
	}

	cfg.AMQPExchange = defaultAMQPExchange
	if ex := os.Getenv("AMQP_EXCHANGE"); ex != "" {
		cfg.AMQPExchange = ex
	}
	cfg.AMQPRoutingKey = defaultAMQPRouting
	if rk := os.Getenv("AMQP_ROUTING_KEY"); rk != "" {
		cfg.AMQPRoutingKey = rk
	}

	cfg.OTelExporter = strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER")))
	if cfg.OTelExporter == "" {
		cfg.OTelExporter = ExporterNone
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.TelegramBotToken != "" && len(c.TelegramAdminChatIDs) == 0 {
		errs = append(errs, "TELEGRAM_ADMIN_CHAT_IDS is required when TELEGRAM_BOT_TOKEN is set")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterGRPC, ExporterHTTP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, grpc, http (got %q)", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the timezone the archive schedule is evaluated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ArchiveTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TelegramEnabled reports whether archive notifications go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && len(c.TelegramAdminChatIDs) > 0
}
