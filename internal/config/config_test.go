package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

// unsetEnv borra la variable durante el test y la restaura al terminar.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"HISTORY_BACKEND", "HTTP_PORT", "DETECTION_URL", "MOCK_ANALYSIS_DELAY", "MOCK_WEATHER_DELAY", "CHAT_REPLY_DELAY"} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.DetectionURL != "http://localhost:8501" {
		t.Fatalf("unexpected detection url %q", cfg.DetectionURL)
	}
	if cfg.HistoryBackend != HistoryBackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.HistoryBackend)
	}
	if cfg.MockAnalysisDelay != 3*time.Second || cfg.MockWeatherDelay != time.Second {
		t.Fatalf("unexpected mock delays %v %v", cfg.MockAnalysisDelay, cfg.MockWeatherDelay)
	}
	if cfg.ChatReplyDelay != 600*time.Millisecond {
		t.Fatalf("unexpected chat delay %v", cfg.ChatReplyDelay)
	}
}

func TestLoadConfigBackendNormalized(t *testing.T) {
	t.Setenv("HISTORY_BACKEND", "  SQLite ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HistoryBackend != HistoryBackendSQLite {
		t.Fatalf("expected sqlite, got %q", cfg.HistoryBackend)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "memory", cfg: Config{HistoryBackend: HistoryBackendMemory}},
		{name: "postgres sin url", cfg: Config{HistoryBackend: HistoryBackendPostgres}, want: ErrMissingDatabaseURL},
		{name: "postgres con url", cfg: Config{HistoryBackend: HistoryBackendPostgres, DatabaseURL: "postgres://x"}},
		{name: "redis sin addr", cfg: Config{HistoryBackend: HistoryBackendRedis}, want: ErrMissingRedisAddr},
		{name: "desconocido", cfg: Config{HistoryBackend: "mongo"}, want: ErrUnknownHistoryBackend},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
