package config

import (
	_ "embed"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed classes.yaml
var classesYAML []byte

type Config struct {
	Database DatabaseConfig
	Camera   CameraConfig
	Encoder  EncoderConfig
	Matching MatchingConfig
	Capture  CaptureConfig
	Web      WebConfig
	LogLevel string
	Classes  ClassesConfig
}

type DatabaseConfig struct {
	Driver       string // "postgres" (default) or "mariadb"
	URL          string // PostgreSQL URL or MariaDB DSN (user:pass@tcp(host:3306)/db)
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

type CameraConfig struct {
	Source   string        // directory of frames or http(s) snapshot URL
	Loop     bool          // replay directory frames forever
	Interval time.Duration // pause between frames
}

type EncoderConfig struct {
	URL     string // face embedding server, defaults to http://localhost:8000
	MaxSize int    // frames are downscaled to this many pixels on the long side (default 1280)
}

type MatchingConfig struct {
	Threshold float64 // Euclidean distance threshold (default 0.45)
	Dim       int     // encoding dimension (default 128)
}

type CaptureConfig struct {
	Timeout time.Duration // 0 waits for the operator forever
}

type WebConfig struct {
	Host           string
	Port           int
	Token          string   // bearer token for /api/v1, empty disables auth
	AllowedOrigins []string // CORS origins besides localhost
}

type ClassesConfig struct {
	Names []string `yaml:"classes"`
}

// Contains reports whether name is one of the configured classes (exact match).
func (c ClassesConfig) Contains(name string) bool {
	return slices.Contains(c.Names, name)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// envDuration accepts Go durations ("30s", "2m"); anything unparsable or negative is the default.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var classes ClassesConfig
	if err := yaml.Unmarshal(classesYAML, &classes); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded classes.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:       strings.ToLower(envString("DATABASE_DRIVER", "postgres")),
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Camera: CameraConfig{
			Source:   os.Getenv("CAMERA_SOURCE"),
			Loop:     envBool("CAMERA_LOOP"),
			Interval: time.Duration(envInt("CAMERA_INTERVAL_MS", 100)) * time.Millisecond,
		},
		Encoder: EncoderConfig{
			URL:     os.Getenv("EMBEDDING_URL"),
			MaxSize: envInt("EMBEDDING_MAX_SIZE", 1280),
		},
		Matching: MatchingConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0.45),
			Dim:       envInt("ENCODING_DIM", 128),
		},
		Capture: CaptureConfig{
			Timeout: envDuration("CAPTURE_TIMEOUT", 0),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			Token:          os.Getenv("WEB_API_TOKEN"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
		Classes:  classes,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
