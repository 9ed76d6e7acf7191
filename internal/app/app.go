package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codepractice/internal/cache"
	"codepractice/internal/catalog"
	"codepractice/internal/config"
	"codepractice/internal/repository"
	"codepractice/internal/service"
	"codepractice/internal/transport/rest"
	"codepractice/internal/transport/ws"
)

// App is the wired server: router plus the resources it holds open
type App struct {
	Router      http.Handler
	Hub         *ws.Hub
	SessionRepo repository.SessionRepo
	Log         hclog.Logger

	closers []func(context.Context) error
}

// New connects to the configured stores and wires every service
func New(ctx context.Context, cfg *config.Config, log hclog.Logger) (*App, error) {
	a := &App{Log: log}

	repo, closeRepo, err := OpenSessionRepo(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.SessionRepo = repo
	a.closers = append(a.closers, closeRepo)

	if err := repo.EnsureSchema(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to prepare session store: %w", err)
	}

	rdb, err := NewRedis(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	problems, err := catalog.Default()
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Initialize caches
	statsCache := cache.NewStatsCache(rdb)
	credentialCache := cache.NewCredentialCache(rdb)

	// Initialize WebSocket hub
	a.Hub = ws.NewHub(log.Named("hub"))
	a.closers = append(a.closers, func(context.Context) error { a.Hub.Stop(); return nil })

	// Initialize services
	sessionSvc := service.NewSessionService(repo, problems, statsCache, log.Named("sessions"))
	submissionSvc := service.NewSubmissionService(sessionSvc, NewGrader(cfg, log), statsCache, log.Named("submissions"))
	credentialSvc := service.NewCredentialService(cfg.Judge, cfg.Access, credentialCache, log.Named("credentials"))
	analyticsSvc := service.NewAnalyticsService(sessionSvc, statsCache)

	// Inject broadcaster (hub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(a.Hub)
	submissionSvc.SetBroadcaster(a.Hub)

	a.Router = rest.NewRouter(&rest.Container{
		SessionService:    sessionSvc,
		SubmissionService: submissionSvc,
		CredentialService: credentialSvc,
		AnalyticsService:  analyticsSvc,
		WSHub:             a.Hub,
		CORS:              cfg.CORS,
		RequireAccessPass: cfg.Access.Require,
		Log:               log,
	})
	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// OpenSessionRepo opens the session store selected by cfg.StoreDriver
func OpenSessionRepo(ctx context.Context, cfg *config.Config, log hclog.Logger) (repository.SessionRepo, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory session store, tests are lost on restart")
		return repository.NewMemorySessionRepo(), func(context.Context) error { return nil }, nil

	case config.StoreSQLite, config.StorePostgres:
		driver := cfg.SQLDriverName()
		db, err := repository.OpenSQL(ctx, driver, cfg.SQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
		}
		log.Info("connected to sql store", "driver", driver)
		return repository.NewSQLSessionRepo(db, driver), func(context.Context) error { return db.Close() }, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		log.Info("connected to MongoDB", "db", cfg.MongoDB)
		return repository.NewSessionRepo(client.Database(cfg.MongoDB)), client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewRedis connects to Redis and pings it
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}

// NewGrader returns the grader selected by cfg.Grader
func NewGrader(cfg *config.Config, log hclog.Logger) service.Grader {
	if cfg.Grader == config.GraderRemote {
		log.Info("grading on remote runner", "url", cfg.Runner.URL)
		return service.NewRemoteGrader(cfg.Runner.URL, cfg.Runner.Timeout, log.Named("grader"))
	}
	log.Info("grading with heuristic grader")
	return service.NewHeuristicGrader(nil)
}
