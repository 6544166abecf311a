package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "NIGHTSCOUT_URL", "NIGHTSCOUT_TOKEN",
		"NIGHTSCOUT_TIMEOUT_SECONDS", "NIGHTSCOUT_RETRY_ATTEMPTS", "NIGHTSCOUT_PAGE_LIMIT",
		"DOSE_SCHEDULE_NAME", "DOSE_CACHE_TTL_MINUTES", "DOSE_PROFILE_CACHE_TTL_MINUTES",
		"DOSE_RANGE_MAX_DAYS", "DOSE_RANGE_CONCURRENCY",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS", "HISTORY_DATABASE_DSN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.Nightscout.Timeout != 30*time.Second || cfg.Nightscout.RetryAttempts != 5 || cfg.Nightscout.PageLimit != 1000 {
		t.Errorf("Nightscout = %+v, want defaults", cfg.Nightscout)
	}
	if cfg.Dose.CacheTTL != time.Hour || cfg.Dose.ProfileCacheTTL != 15*time.Minute {
		t.Errorf("Dose TTLs = %v/%v, want 1h/15m", cfg.Dose.CacheTTL, cfg.Dose.ProfileCacheTTL)
	}
	if cfg.Dose.RangeMaxDays != 31 || cfg.Dose.RangeConcurrency != 4 {
		t.Errorf("Dose range = %d/%d, want 31/4", cfg.Dose.RangeMaxDays, cfg.Dose.RangeConcurrency)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want localhost:6379", cfg.Redis.Addr)
	}
	if cfg.History.Enabled() {
		t.Error("History.Enabled() = true, want false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("NIGHTSCOUT_URL", "https://ns.example.com/")
	t.Setenv("NIGHTSCOUT_PAGE_LIMIT", "250")
	t.Setenv("NIGHTSCOUT_RETRY_ATTEMPTS", "-3")
	t.Setenv("DOSE_SCHEDULE_NAME", "NR Profil")
	t.Setenv("DOSE_RANGE_CONCURRENCY", "abc")
	t.Setenv("HISTORY_DATABASE_DSN", "postgres://localhost/dose")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("Port/LogLevel = %q/%v", cfg.Port, cfg.LogLevel)
	}
	if cfg.Nightscout.URL != "https://ns.example.com" {
		t.Errorf("Nightscout.URL = %q, want trailing slash trimmed", cfg.Nightscout.URL)
	}
	if cfg.Nightscout.PageLimit != 250 {
		t.Errorf("PageLimit = %d, want 250", cfg.Nightscout.PageLimit)
	}
	if cfg.Nightscout.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want default for non-positive value", cfg.Nightscout.RetryAttempts)
	}
	if cfg.Dose.ScheduleName != "NR Profil" {
		t.Errorf("ScheduleName = %q", cfg.Dose.ScheduleName)
	}
	if cfg.Dose.RangeConcurrency != 4 {
		t.Errorf("RangeConcurrency = %d, want default for invalid value", cfg.Dose.RangeConcurrency)
	}
	if !cfg.History.Enabled() {
		t.Error("History.Enabled() = false, want true")
	}
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	if _, err := Load(); !errors.Is(err, ErrInvalidRedisDB) {
		t.Fatalf("Load() error = %v, want ErrInvalidRedisDB", err)
	}
}

func TestValidateForRun(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr []error
	}{
		{
			name: "valid",
			cfg: &Config{
				Nightscout: &NightscoutConfig{URL: "https://ns.example.com"},
				Redis:      &RedisConfig{Addr: "localhost:6379"},
			},
		},
		{
			name: "missing everything",
			cfg: &Config{
				Nightscout: &NightscoutConfig{},
				Redis:      &RedisConfig{},
			},
			wantErr: []error{ErrNightscoutURLMissing, ErrRedisAddrMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForRun(tt.cfg)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("ValidateForRun() error = %v", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("ValidateForRun() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestRedisConfig_ClientOptions(t *testing.T) {
	plain := (&RedisConfig{Addr: "cache:6379", Password: "secret", DB: 2}).ClientOptions()
	if plain.Addr != "cache:6379" || plain.Password != "secret" || plain.DB != 2 {
		t.Errorf("ClientOptions() = %+v, want addr/password/db copied", plain)
	}
	if plain.TLSConfig != nil {
		t.Error("TLSConfig set without REDIS_TLS")
	}

	secure := (&RedisConfig{Addr: "cache:6380", TLS: true}).ClientOptions()
	if secure.TLSConfig == nil {
		t.Error("TLSConfig = nil, want TLS enabled")
	}
}
