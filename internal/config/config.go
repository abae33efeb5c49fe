package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SpoolDir     string
	SpoolDoneDir string

	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize    int
	PollInterval time.Duration

	// Assembly settings.
	Authority            string
	DefaultNetwork       string
	DefaultChannelPrefix string
	VerboseWarnings      bool

	// Optional station inventory (TOML) for channel-id resolution.
	InventoryPath string
	// Optional SQLite catalog; empty disables the catalog sink.
	CatalogDB string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SpoolDir:     os.Getenv("SPOOL_DIR"),
		SpoolDoneDir: envOrDefault("SPOOL_DONE_DIR", ""),

		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "seismic-events"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:    batchSize,
		PollInterval: pollInterval,

		Authority:            envOrDefault("AUTHORITY", "local"),
		DefaultNetwork:       envOrDefault("DEFAULT_NETWORK", "UK"),
		DefaultChannelPrefix: envOrDefault("DEFAULT_CHANNEL_PREFIX", "BH"),
		VerboseWarnings:      os.Getenv("VERBOSE_WARNINGS") == "true",

		InventoryPath: os.Getenv("INVENTORY_PATH"),
		CatalogDB:     os.Getenv("CATALOG_DB"),
	}

	if cfg.SpoolDir == "" {
		return nil, errors.New("SPOOL_DIR is required")
	}
	if cfg.SpoolDoneDir == "" {
		cfg.SpoolDoneDir = cfg.SpoolDir + "/.done"
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
