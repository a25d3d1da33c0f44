package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 24h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Feed.Schedule != "@every 10s" {
		t.Errorf("Feed.Schedule = %q, want @every 10s", cfg.Feed.Schedule)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("expected a generated JWT secret in development")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("FEED_ENABLED", "false")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
	if cfg.Feed.Enabled {
		t.Error("Feed.Enabled = true, want false")
	}
	if cfg.Auth.BcryptCost != 4 {
		t.Errorf("BcryptCost = %d, want 4", cfg.Auth.BcryptCost)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want /tmp/test.db", cfg.Database.Path)
	}
}

func TestLoad_EmptyEnvKeepsDefault(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_ConfigFileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7070
  cors_origins: "https://monitor.example.com"
auth:
  refresh_token_ttl: 48h
  jwt_secret: file-secret
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("JWT_SECRET", "env-wins")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Auth.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 48h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.JWTSecret != "env-wins" {
		t.Errorf("JWTSecret = %q, want env-wins", cfg.Auth.JWTSecret)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 1 || origins[0] != "https://monitor.example.com" {
		t.Errorf("AllowedOrigins() = %v", origins)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error without JWT_SECRET in production")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error %q should mention JWT_SECRET", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "port"},
		{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database path"},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 }, wantErr: "access token"},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.Auth.RefreshTokenTTL = -time.Second }, wantErr: "refresh token"},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 1 }, wantErr: "bcrypt"},
		{name: "rate limit window missing", mutate: func(c *Config) { c.Server.RateLimitWindow = 0 }, wantErr: "rate limit window"},
		{name: "rate limit disabled", mutate: func(c *Config) {
			c.Server.RateLimitRequests = 0
			c.Server.RateLimitWindow = 0
		}},
		{name: "feed without schedule", mutate: func(c *Config) { c.Feed.Schedule = "" }, wantErr: "feed schedule"},
		{name: "production with secret", mutate: func(c *Config) {
			c.App.Env = "production"
			c.Auth.JWTSecret = "s3cret"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.CORSOrigins = " http://a.test , ,http://b.test"

	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("AllowedOrigins() = %v", got)
	}
}
