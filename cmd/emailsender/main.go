package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/prajwaln07/EmailSender/modules/reminder"
	"github.com/prajwaln07/EmailSender/pkg/config"
	"github.com/prajwaln07/EmailSender/pkg/delivery"
	"github.com/prajwaln07/EmailSender/pkg/httpserver"
	"github.com/prajwaln07/EmailSender/pkg/logger"
	"github.com/prajwaln07/EmailSender/pkg/provider"
	"github.com/prajwaln07/EmailSender/pkg/queue"
	"github.com/prajwaln07/EmailSender/pkg/quota"
	"github.com/prajwaln07/EmailSender/pkg/ratelimit"
	redisconn "github.com/prajwaln07/EmailSender/pkg/redis"
)

type appConfig struct {
	Logger    logger.Config
	HTTP      httpserver.Config
	Provider  provider.Config
	Queue     queue.Config
	RateLimit ratelimit.Config

	// RedisURL is required unless DevMode is set: in-memory stores lose
	// every scheduled reminder on restart, so silently running without
	// Redis would be a production footgun.
	RedisURL    string   `env:"REDIS_URL"`
	DevMode     bool     `env:"DEV_MODE" envDefault:"false"`
	ServiceName string   `env:"SERVICE_NAME" envDefault:"emailsender"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// queueStorage is the full repository surface both backends implement.
type queueStorage interface {
	queue.EnqueuerRepository
	queue.WorkerRepository
	queue.StatusRepository
}

// checkStorageConfig refuses to start without a durable backend. In-memory
// stores drop every scheduled reminder on restart, so they are gated behind
// an explicit dev-mode opt-in instead of being a silent fallback.
func checkStorageConfig(cfg appConfig) error {
	if cfg.RedisURL == "" && !cfg.DevMode {
		return fmt.Errorf("REDIS_URL is required; set DEV_MODE=true to run on in-memory stores")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("service exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := checkStorageConfig(cfg); err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithService(cfg.ServiceName))
	logger.SetAsDefault(log)

	var (
		storage    queueStorage
		quotaStore quota.Store
		rlStore    ratelimit.Store
		checks     []httpserver.Check
	)

	if cfg.RedisURL != "" {
		client, err := redisconn.Connect(ctx, redisconn.Config{
			ConnectionURL:  cfg.RedisURL,
			RetryAttempts:  3,
			RetryInterval:  5 * time.Second,
			ConnectTimeout: 30 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()

		storage, err = queue.NewRedisStorage(client, cfg.Queue)
		if err != nil {
			return fmt.Errorf("init queue storage: %w", err)
		}
		quotaStore = quota.NewRedisStore(client)
		rlStore = ratelimit.NewRedisStore(client)
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redisconn.Healthcheck(client)})
	} else {
		log.Warn("running in dev mode on in-memory stores; scheduled reminders will not survive a restart")

		memory := queue.NewMemoryStorage(
			queue.WithRetryBackoff(cfg.Queue.RetryBackoff),
			queue.WithCompletedRetention(cfg.Queue.CompletedRetention),
			queue.WithFailedArchiveCap(cfg.Queue.FailedArchiveCap),
		)
		defer memory.Close()

		storage = memory
		quotaStore = quota.NewMemoryStore()
		rlStore = ratelimit.NewMemoryStore()
	}

	ring, err := provider.NewRingFromConfig(cfg.Provider)
	if err != nil {
		return fmt.Errorf("build provider ring: %w", err)
	}

	deliveryRouter, err := delivery.NewRouter(ring, quotaStore, delivery.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init delivery router: %w", err)
	}

	enqueuer, err := queue.NewEnqueuer(storage)
	if err != nil {
		return fmt.Errorf("init enqueuer: %w", err)
	}

	svc, err := reminder.NewService(enqueuer, deliveryRouter, storage, reminder.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init reminder service: %w", err)
	}

	worker, err := queue.NewWorker(storage,
		queue.WithPollInterval(cfg.Queue.PollInterval),
		queue.WithLockTimeout(cfg.Queue.LockTimeout),
		queue.WithMaxConcurrentJobs(cfg.Queue.MaxConcurrentJobs),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}
	worker.RegisterHandler(svc.JobHandler())

	limiter, err := ratelimit.New(rlStore, cfg.RateLimit, ratelimit.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init rate limiter: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/health", httpserver.HealthHandler(log, checks...))
	r.Mount("/", reminder.Router(svc, limiter))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, r) })
	g.Go(worker.Run(ctx))

	log.Info("service started",
		slog.String("addr", cfg.HTTP.Addr),
		slog.Int("channels", ring.Len()))

	return g.Wait()
}
