package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Graders
const (
	GraderHeuristic = "heuristic"
	GraderRemote    = "remote"
)

// JudgeConfig describes the external service credentials are checked against
type JudgeConfig struct {
	URL      string
	Marker   string // substring that marks an authenticated response
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables caching of accepted credentials
}

// AccessConfig controls the access pass issued after credential acceptance
type AccessConfig struct {
	Secret  string `json:"-"` // never serialize
	TTL     time.Duration
	Require bool // gate test start behind a valid pass
}

// RunnerConfig points the remote grader at a code runner
type RunnerConfig struct {
	URL     string
	Timeout time.Duration
}

// CORSConfig holds the allowed CORS values
type CORSConfig struct {
	Origins string
	Methods string
	Headers string
}

// Config holds all process configuration
type Config struct {
	HTTPPort    string
	StoreDriver string
	MongoURI    string
	MongoDB     string
	SQLDSN      string
	RedisAddr   string
	RedisPass   string
	Grader      string
	LogLevel    string
	LogJSON     bool

	Judge  JudgeConfig
	Access AccessConfig
	Runner RunnerConfig
	CORS   CORSConfig
}

// Load reads configuration from the environment, after an optional .env file
func Load() *Config {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		HTTPPort:    getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "codepractice"),
		SQLDSN:      getEnv("SQL_DSN", "file:codepractice.db?_pragma=busy_timeout(5000)"),
		RedisAddr:   strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		Grader:      strings.ToLower(getEnv("GRADER", GraderHeuristic)),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     getBool("LOG_JSON", false),
		Judge: JudgeConfig{
			URL:      getEnv("JUDGE_URL", "https://vjudge.net/problem/CodeForces-795I"),
			Marker:   os.Getenv("JUDGE_MARKER"),
			Timeout:  getMillis("JUDGE_TIMEOUT_MS", 5000),
			CacheTTL: getDuration("CREDENTIAL_CACHE_TTL", 5*time.Minute),
		},
		Access: AccessConfig{
			Secret:  os.Getenv("ACCESS_PASS_SECRET"),
			TTL:     getDuration("ACCESS_PASS_TTL", time.Hour),
			Require: getBool("REQUIRE_ACCESS_PASS", false),
		},
		Runner: RunnerConfig{
			URL:     os.Getenv("RUNNER_URL"),
			Timeout: getMillis("RUNNER_TIMEOUT_MS", 10000),
		},
		CORS: CORSConfig{
			Origins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			Methods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, OPTIONS"),
			Headers: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization"),
		},
	}
}

// Validate checks for settings the server cannot run with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo, StoreSQLite, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.Grader {
	case GraderHeuristic:
	case GraderRemote:
		if c.Runner.URL == "" {
			return fmt.Errorf("grader %q requires RUNNER_URL", c.Grader)
		}
	default:
		return fmt.Errorf("unknown grader %q", c.Grader)
	}
	if strings.TrimSpace(c.Judge.Marker) == "" {
		return fmt.Errorf("JUDGE_MARKER must be set")
	}
	if c.Judge.Timeout <= 0 {
		return fmt.Errorf("JUDGE_TIMEOUT_MS must be positive")
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("PORT must be set")
	}
	return nil
}

// SQLDriverName maps the store driver to a database/sql driver name
func (c *Config) SQLDriverName() string {
	if c.StoreDriver == StorePostgres {
		return "postgres"
	}
	return "sqlite"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func getMillis(key string, defaultMS int) time.Duration {
	ms, err := strconv.Atoi(os.Getenv(key))
	if err != nil || ms < 0 {
		ms = defaultMS
	}
	return time.Duration(ms) * time.Millisecond
}

// getDuration accepts Go durations ("90s") or bare seconds ("90")
func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
