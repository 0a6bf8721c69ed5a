package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "fantasy-racing-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected memory storage by default, got %q", cfg.StorageDriver)
	}
	if cfg.AuthMode != AuthModeAnubis {
		t.Fatalf("expected anubis auth by default, got %q", cfg.AuthMode)
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit defaults: %v %v %d", cfg.RateLimitEnabled, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.LogFormat != LogFormatConsole {
		t.Fatalf("expected console log format in dev, got %q", cfg.LogFormat)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
	if !cfg.ScoringCircuit.Enabled || cfg.ScoringCircuit.FailureThreshold != 5 || cfg.ScoringCircuit.OpenTimeout != 15*time.Second {
		t.Fatalf("unexpected scoring circuit defaults: %+v", cfg.ScoringCircuit)
	}
	if !cfg.DBSeedOnStart {
		t.Fatalf("expected seeding enabled outside prod")
	}
}

func TestLoad_ProdDefaultsToJSONAndNoSeed(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("expected json log format in prod, got %q", cfg.LogFormat)
	}
	if cfg.DBSeedOnStart {
		t.Fatalf("expected seeding disabled in prod")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "redis"}},
		{name: "unknown auth mode", env: map[string]string{"AUTH_MODE": "basic"}},
		{name: "jwt without secret", env: map[string]string{"AUTH_MODE": AuthModeJWT}},
		{name: "scoring without base url", env: map[string]string{"SCORING_ENABLED": "true"}},
		{name: "leaderboard without token", env: map[string]string{"LEADERBOARD_ENABLED": "true", "LEADERBOARD_TARGET_BASE_URL": "https://api.example.com", "INTERNAL_JOB_TOKEN": "job"}},
		{name: "leaderboard without target", env: map[string]string{"LEADERBOARD_ENABLED": "true", "QSTASH_TOKEN": "q", "INTERNAL_JOB_TOKEN": "job"}},
		{name: "leaderboard without job token", env: map[string]string{"LEADERBOARD_ENABLED": "true", "QSTASH_TOKEN": "q", "LEADERBOARD_TARGET_BASE_URL": "https://api.example.com"}},
		{name: "zero workers", env: map[string]string{"LEADERBOARD_WORKERS": "0"}},
		{name: "negative rps", env: map[string]string{"RATE_LIMIT_RPS": "-1"}},
		{name: "zero burst", env: map[string]string{"RATE_LIMIT_BURST": "0"}},
		{name: "bad circuit threshold", env: map[string]string{"SCORING_CIRCUIT_FAILURE_COUNT": "0"}},
		{name: "bad timeout", env: map[string]string{"APP_READ_TIMEOUT": "soon"}},
		{name: "bad seed", env: map[string]string{"CARD_DRAW_SEED": "abc"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "uptrace without dsn", env: map[string]string{"UPTRACE_ENABLED": "true"}},
		{name: "pyroscope without server", env: map[string]string{"PYROSCOPE_ENABLED": "true"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_JWTAndIntegrations(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("AUTH_MODE", "JWT")
	t.Setenv("JWT_SECRET", "shh")
	t.Setenv("JWT_ISSUER", "paddock-auth")
	t.Setenv("JWT_LEEWAY", "1m")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("SCORING_ENABLED", "true")
	t.Setenv("SCORING_BASE_URL", "https://scoring.internal")
	t.Setenv("SCORING_MAX_RETRIES", "2")
	t.Setenv("SCORING_CIRCUIT_ENABLED", "false")
	t.Setenv("LEADERBOARD_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qstash-token")
	t.Setenv("LEADERBOARD_TARGET_BASE_URL", "https://api.fantasy-racing.app")
	t.Setenv("INTERNAL_JOB_TOKEN", "job-token")
	t.Setenv("LEADERBOARD_WORKERS", "8")
	t.Setenv("CARD_DRAW_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AuthMode != AuthModeJWT || cfg.JWTSecret != "shh" || cfg.JWTIssuer != "paddock-auth" || cfg.JWTLeeway != time.Minute {
		t.Fatalf("unexpected jwt config: %q %q %q %s", cfg.AuthMode, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLeeway)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected StorageDriver: %q", cfg.StorageDriver)
	}
	if !cfg.ScoringEnabled || cfg.ScoringMaxRetries != 2 || cfg.ScoringCircuit.Enabled {
		t.Fatalf("unexpected scoring config: %+v", cfg)
	}
	if !cfg.LeaderboardEnabled || cfg.LeaderboardWorkers != 8 {
		t.Fatalf("unexpected leaderboard config: enabled=%v workers=%d", cfg.LeaderboardEnabled, cfg.LeaderboardWorkers)
	}
	if cfg.CardDrawSeed != 42 {
		t.Fatalf("unexpected CardDrawSeed: %d", cfg.CardDrawSeed)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("expected json log format in stage, got %q", cfg.LogFormat)
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_SERVICE_NAME=paddock-api\nRATE_LIMIT_BURST=7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ENV_FILE", path)
	// godotenv writes through os.Setenv; register the keys so they are restored.
	t.Setenv("APP_SERVICE_NAME", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	os.Unsetenv("APP_SERVICE_NAME")
	os.Unsetenv("RATE_LIMIT_BURST")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "paddock-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.RateLimitBurst != 7 {
		t.Fatalf("unexpected RateLimitBurst: %d", cfg.RateLimitBurst)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	if _, err := Load(); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "uptrace-dsn=https://token@api.uptrace.dev?grpc=4317")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: ""},
		{raw: "foo=bar", want: ""},
		{raw: "foo=bar, Uptrace-DSN=\"https://x@uptrace\"", want: "https://x@uptrace"},
	}
	for _, tc := range tests {
		if got := parseUptraceDSNFromOTLPHeaders(tc.raw); got != tc.want {
			t.Fatalf("parseUptraceDSNFromOTLPHeaders(%q)=%q want %q", tc.raw, got, tc.want)
		}
	}
}
