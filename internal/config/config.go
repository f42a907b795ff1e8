package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host                string
	Port                int
	ModelPath           string
	LabelsPath          string // Empty means the built-in COCO table
	ModelInputSize      int    // Square network input, e.g. 640 for yolov8n
	ConfidenceThreshold float64
	IOUThreshold        float64
	MaxBodyBytes        int64
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	CORSOrigins         []string
	StreamEnabled       bool
	MetricsEnabled      bool
	HistoryDB           string // SQLite path; history is off when empty
	LogLevel            string
	LogFormat           string
	LogDirectory        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:                getEnv("HOST", "0.0.0.0"),
		Port:                getEnvAsInt("PORT", 5000),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8n.onnx")),
		LabelsPath:          getEnv("LABELS_PATH", ""),
		ModelInputSize:      getEnvAsInt("MODEL_INPUT_SIZE", 640),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		IOUThreshold:        getEnvAsFloat("IOU_THRESHOLD", 0.7),
		MaxBodyBytes:        getEnvAsInt64("MAX_BODY_BYTES", 20<<20),
		ReadTimeout:         getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        getEnvAsDuration("WRITE_TIMEOUT", 60*time.Second),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		StreamEnabled:       getEnvAsBool("STREAM_ENABLED", false),
		MetricsEnabled:      getEnvAsBool("METRICS_ENABLED", false),
		HistoryDB:           getEnv("HISTORY_DB", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		LogDirectory:        getEnv("LOG_DIR", ""),
	}
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
