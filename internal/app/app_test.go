package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"codepractice/internal/config"
	"codepractice/internal/logging"
	"codepractice/internal/model"
	"codepractice/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	return &config.Config{
		HTTPPort:    "0",
		StoreDriver: config.StoreMemory,
		RedisAddr:   mr.Addr(),
		Grader:      config.GraderHeuristic,
		Judge: config.JudgeConfig{
			URL:     "http://127.0.0.1:0",
			Marker:  "userinfo",
			Timeout: time.Second,
		},
		Access: config.AccessConfig{TTL: time.Hour},
		CORS:   config.CORSConfig{Origins: "*", Methods: "GET, POST, OPTIONS", Headers: "Content-Type"},
	}
}

func TestNew_ServesHealth(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(ctx)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/test/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestNew_RedisDown(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	if _, err := New(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("New() succeeded without redis")
	}
}

func TestOpenSessionRepo_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.StoreDriver = config.StoreSQLite
	cfg.SQLDSN = ":memory:"

	repo, closeRepo, err := OpenSessionRepo(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("OpenSessionRepo() error = %v", err)
	}
	defer closeRepo(ctx)

	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := repo.Create(ctx, &model.Session{ID: "a", Active: true, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestOpenSessionRepo_Unknown(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "cassandra"
	if _, _, err := OpenSessionRepo(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("OpenSessionRepo() accepted unknown driver")
	}
}

func TestNewGrader(t *testing.T) {
	cfg := testConfig(t)
	if _, ok := NewGrader(cfg, logging.Discard()).(*service.HeuristicGrader); !ok {
		t.Error("default grader is not heuristic")
	}

	cfg.Grader = config.GraderRemote
	cfg.Runner.URL = "http://runner"
	if _, ok := NewGrader(cfg, logging.Discard()).(*service.RemoteGrader); !ok {
		t.Error("remote grader not selected")
	}
}
