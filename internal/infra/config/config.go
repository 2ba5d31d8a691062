package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates application configuration loaded from environment variables.
type Config struct {
	Env            string
	HTTPAddr       string
	StorageMode    string
	MongoURI       string
	MongoDB        string
	MessageStore   string
	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaTimeout  time.Duration
	BusMode        string
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaGroupID   string
	S3Endpoint     string
	S3PublicURL    string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	SessionTTL     time.Duration
}

// Load parses configuration from the current environment. Memory modes need
// no external services; mongo/scylla/kafka modes validate their settings.
func Load() (Config, error) {
	cfg := Config{
		Env:            getEnv("APP_ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		StorageMode:    strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDB:        getEnv("MONGO_DB", "freebie"),
		MessageStore:   strings.ToLower(getEnv("MESSAGE_STORE", "memory")),
		ScyllaHosts:    splitAndTrim(getEnv("SCYLLA_HOSTS", "localhost")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "freebie_chat"),
		BusMode:        strings.ToLower(getEnv("BUS_MODE", "memory")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "room-events"),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "freebie-server"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:    getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:       getEnv("S3_BUCKET", "freebie-photos"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	scyllaTimeout, err := parseDurationEnv("SCYLLA_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ScyllaTimeout = scyllaTimeout

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicURL == "" {
		cfg.S3PublicURL = cfg.S3Endpoint
	}

	switch cfg.StorageMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_MODE: %s", cfg.StorageMode)
	}
	switch cfg.MessageStore {
	case "memory":
	case "scylla":
		if len(cfg.ScyllaHosts) == 0 {
			return Config{}, fmt.Errorf("SCYLLA_HOSTS is required when MESSAGE_STORE=scylla")
		}
	default:
		return Config{}, fmt.Errorf("unsupported MESSAGE_STORE: %s", cfg.MessageStore)
	}
	switch cfg.BusMode {
	case "memory":
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when BUS_MODE=kafka")
		}
	default:
		return Config{}, fmt.Errorf("unsupported BUS_MODE: %s", cfg.BusMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
