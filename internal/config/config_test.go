package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "GRADER", "JUDGE_TIMEOUT_MS", "CREDENTIAL_CACHE_TTL", "REQUIRE_ACCESS_PASS", "REDIS_URI"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreMongo)
	}
	if cfg.Grader != GraderHeuristic {
		t.Errorf("Grader = %q, want %q", cfg.Grader, GraderHeuristic)
	}
	if cfg.Judge.Timeout != 5*time.Second {
		t.Errorf("Judge.Timeout = %v, want 5s", cfg.Judge.Timeout)
	}
	if cfg.Judge.CacheTTL != 5*time.Minute {
		t.Errorf("Judge.CacheTTL = %v, want 5m", cfg.Judge.CacheTTL)
	}
	if cfg.Access.Require {
		t.Error("Access.Require should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("JUDGE_TIMEOUT_MS", "250")
	t.Setenv("CREDENTIAL_CACHE_TTL", "90")
	t.Setenv("ACCESS_PASS_TTL", "15m")
	t.Setenv("REQUIRE_ACCESS_PASS", "true")

	cfg := Load()
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreSQLite)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Errorf("RedisAddr = %q, want cache:6379", cfg.RedisAddr)
	}
	if cfg.Judge.Timeout != 250*time.Millisecond {
		t.Errorf("Judge.Timeout = %v", cfg.Judge.Timeout)
	}
	if cfg.Judge.CacheTTL != 90*time.Second {
		t.Errorf("Judge.CacheTTL = %v", cfg.Judge.CacheTTL)
	}
	if cfg.Access.TTL != 15*time.Minute {
		t.Errorf("Access.TTL = %v", cfg.Access.TTL)
	}
	if !cfg.Access.Require {
		t.Error("Access.Require should be true")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:    "8080",
			StoreDriver: StoreMemory,
			Grader:      GraderHeuristic,
			Judge:       JudgeConfig{Marker: "someone", Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown store", func(c *Config) { c.StoreDriver = "cassandra" }, true},
		{"unknown grader", func(c *Config) { c.Grader = "llm" }, true},
		{"remote grader without runner", func(c *Config) { c.Grader = GraderRemote }, true},
		{"remote grader with runner", func(c *Config) { c.Grader = GraderRemote; c.Runner.URL = "http://runner" }, false},
		{"empty marker", func(c *Config) { c.Judge.Marker = "  " }, true},
		{"zero timeout", func(c *Config) { c.Judge.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLDriverName(t *testing.T) {
	if got := (&Config{StoreDriver: StorePostgres}).SQLDriverName(); got != "postgres" {
		t.Errorf("postgres driver = %q", got)
	}
	if got := (&Config{StoreDriver: StoreSQLite}).SQLDriverName(); got != "sqlite" {
		t.Errorf("sqlite driver = %q", got)
	}
}
