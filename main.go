package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/itakarlapalli/subcentre/handlers"
	"github.com/itakarlapalli/subcentre/internal/config"
	"github.com/itakarlapalli/subcentre/internal/contact"
	"github.com/itakarlapalli/subcentre/internal/database"
	patienthandler "github.com/itakarlapalli/subcentre/internal/patient/handler"
	"github.com/itakarlapalli/subcentre/internal/patient/repository"
	"github.com/itakarlapalli/subcentre/internal/patient/service"
	"github.com/itakarlapalli/subcentre/pkg/logger"
	"github.com/itakarlapalli/subcentre/pkg/metrics"
	"github.com/itakarlapalli/subcentre/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: store=%s mail=%s redis=%v", cfg.Store.Backend, cfg.Mail.Relay, cfg.Redis.Host != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Redis is optional; it backs the shared rate limiter and the queue relay.
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis at %s", addr)
		}
		defer rdb.Close()
	}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer closeStore()
	svc := service.New(repo)

	relay, err := openRelay(cfg, rdb)
	if err != nil {
		logger.Warnf("contact relay unavailable, /api/send-message will fail: %v", err)
	}
	notifier := contact.NewNotifier(relay)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.CORS(cfg.Server.CORSOrigin))

	deps := []handlers.Dependency{
		{Name: "store", Required: true, Check: svc.Ping},
		{Name: "mail", Check: func(context.Context) error {
			if !notifier.Ready() {
				return contact.ErrRelayNotConfigured
			}
			return nil
		}},
	}
	if rdb != nil {
		deps = append(deps, handlers.Dependency{
			Name:     "redis",
			Required: cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis,
			Check:    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	handlers.RegisterHealth(r, startTime, deps...)
	handlers.RegisterSwagger(r)

	var api gin.IRoutes = r
	if cfg.RateLimit.Enabled {
		g := r.Group("/")
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			g.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter enabled (redis, %.1f rps)", cfg.RateLimit.RPS)
		} else {
			g.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter enabled (in-memory, %.1f rps)", cfg.RateLimit.RPS)
		}
		api = g
	}
	patienthandler.RegisterPatientRoutes(api, svc)
	contact.RegisterContactRoutes(api, notifier)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("patient API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// openStore builds the configured Record Store backend. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (repository.Repository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warnf("using in-memory store; records are lost on restart")
		return repository.NewMemoryRepo(), func() {}, nil

	case config.BackendBolt:
		db, err := database.OpenBolt(cfg.Store.BoltPath, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewBoltRepo(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Infof("using bolt store at %s", cfg.Store.BoltPath)
		return repo, func() { _ = repo.Close() }, nil

	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("patients")
		repo, err := repository.NewMongoRepo(ctx, col)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		logger.Infof("using MongoDB store (database %s)", cfg.MongoDB.Database)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres.URL, cfg.Postgres.Timeout)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewPostgresRepo(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Infof("using PostgreSQL store")
		return repo, func() { _ = repo.Close() }, nil

	default:
		repo, err := repository.NewFileRepo(cfg.Store.DataFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using file store at %s", cfg.Store.DataFile)
		return repo, func() {}, nil
	}
}

// openRelay returns nil with a nil error when mail is disabled.
func openRelay(cfg *config.Config, rdb *redis.Client) (contact.Relay, error) {
	switch cfg.Mail.Relay {
	case config.RelayNone:
		logger.Infof("contact relay disabled")
		return nil, nil
	case config.RelayRedis:
		if rdb == nil {
			return nil, errors.New("MAIL_RELAY=redis needs REDIS_HOST")
		}
		logger.Infof("contact messages queued to Redis list %s", cfg.Mail.QueueKey)
		return contact.NewRedisQueueRelay(rdb, cfg.Mail.QueueKey), nil
	default:
		r, err := contact.NewSMTPRelay(contact.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.Operator,
			Timeout:  15 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("contact messages relayed via SMTP %s:%d", cfg.Mail.Host, cfg.Mail.Port)
		return r, nil
	}
}
