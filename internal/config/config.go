package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Backends de historial soportados.
const (
	HistoryBackendMemory   = "memory"
	HistoryBackendRedis    = "redis"
	HistoryBackendPostgres = "postgres"
	HistoryBackendSQLite   = "sqlite"
)

var (
	ErrUnknownHistoryBackend = errors.New("unknown history backend")
	ErrMissingDatabaseURL    = errors.New("DATABASE_URL is required for the postgres history backend")
	ErrMissingRedisAddr      = errors.New("REDIS_ADDR is required for the redis history backend")
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string `env:"HTTP_PORT" envDefault:"8080"`
	DetectionURL    string `env:"DETECTION_URL" envDefault:"http://localhost:8501"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"ecovision.db"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MockAnalysisDelay time.Duration `env:"MOCK_ANALYSIS_DELAY" envDefault:"3s"`
	MockWeatherDelay  time.Duration `env:"MOCK_WEATHER_DELAY" envDefault:"1s"`
	ChatReplyDelay    time.Duration `env:"CHAT_REPLY_DELAY" envDefault:"600ms"`

	SolutionsCSV   string `env:"SOLUTIONS_CSV"`
	TTSCommand     string `env:"TTS_COMMAND"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.HistoryBackend = strings.ToLower(strings.TrimSpace(cfg.HistoryBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	switch c.HistoryBackend {
	case HistoryBackendMemory, HistoryBackendSQLite:
	case HistoryBackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return ErrMissingDatabaseURL
		}
	case HistoryBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHistoryBackend, c.HistoryBackend)
	}
	return nil
}
