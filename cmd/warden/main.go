package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/admin"
	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/auth"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/application/ratelimit"
	"github.com/MrDNightCore/warden/internal/application/retention"
	"github.com/MrDNightCore/warden/internal/config"
	"github.com/MrDNightCore/warden/internal/infrastructure/attempts"
	infraaudit "github.com/MrDNightCore/warden/internal/infrastructure/audit"
	httprouter "github.com/MrDNightCore/warden/internal/infrastructure/http"
	"github.com/MrDNightCore/warden/internal/infrastructure/http/handlers"
	"github.com/MrDNightCore/warden/internal/infrastructure/http/middleware"
	"github.com/MrDNightCore/warden/internal/infrastructure/persistence/memory"
	"github.com/MrDNightCore/warden/internal/infrastructure/persistence/postgres"
	"github.com/MrDNightCore/warden/internal/infrastructure/queue"
	"github.com/MrDNightCore/warden/internal/infrastructure/security"
	"github.com/MrDNightCore/warden/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set; accounts are kept in memory and lost on restart")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	var accounts ports.AccountRepository
	if pool != nil {
		accounts = postgres.NewAccountRepository(pool)
	} else {
		accounts = memory.NewAccountStore()
	}

	var attemptStore ports.AttemptStore
	if redisClient != nil {
		attemptStore = attempts.NewRedisStore(redisClient)
	} else {
		memStore := attempts.NewMemoryStore()
		go memStore.Janitor(ctx, time.Minute)
		attemptStore = memStore
	}

	sinks := []ports.EventSink{infraaudit.NewZerologSink(log)}
	if cfg.Audit.File != "" {
		fileLog := zerolog.New(infraaudit.NewRotatingWriter(
			cfg.Audit.File, cfg.Audit.MaxSizeMB, cfg.Audit.MaxBackups, cfg.Audit.MaxAgeDays,
		)).With().Timestamp().Logger()
		sinks = append(sinks, infraaudit.NewZerologSink(fileLog))
	}
	var eventSink *postgres.EventSink
	if pool != nil && cfg.Audit.Persist {
		eventSink = postgres.NewEventSink(pool)
		sinks = append(sinks, eventSink)
	}
	var asynqWorker *queue.Worker
	if redisClient != nil && cfg.Audit.WebhookURL != "" {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		enqueuer, err := queue.NewAsynqEnqueuer(asynqOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create asynq enqueuer")
		}
		defer enqueuer.Close()
		sinks = append(sinks, enqueuer)
		asynqWorker = queue.NewWorker(asynqOpt, webhook.NewHTTPEmitter(cfg.Audit.WebhookURL), log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	}
	recorder := audit.NewRecorder(log, sinks...)

	if eventSink != nil && cfg.Audit.RetainDays > 0 {
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for {
				pruned, err := retention.RunPruneSecurityEvents(ctx, eventSink, cfg.Audit.RetainDays)
				if err != nil {
					log.Warn().Err(err).Msg("prune security events")
				} else if pruned > 0 {
					log.Info().Int64("pruned", pruned).Msg("security events pruned")
				}
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}

	limiter := ratelimit.NewLimiter(attemptStore, map[ratelimit.Action]ratelimit.Rule{
		ratelimit.ActionLogin: {
			Limit:  cfg.RateLimit.LoginLimit,
			Window: time.Duration(cfg.RateLimit.LoginWindowSecs) * time.Second,
		},
		ratelimit.ActionRegister: {
			Limit:  cfg.RateLimit.RegisterLimit,
			Window: time.Duration(cfg.RateLimit.RegisterWindowSecs) * time.Second,
		},
	}, cfg.RateLimit.FailClosed, log)

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	loginUC := auth.NewLogin(accounts, hasher, limiter, recorder,
		cfg.Lockout.Threshold, time.Duration(cfg.Lockout.DurationSecs)*time.Second)
	registerUC := auth.NewRegister(accounts, hasher, limiter, recorder)

	authHandler := handlers.NewAuthHandler(loginUC, registerUC, log)
	adminHandler := handlers.NewAdminHandler(
		admin.NewListAccounts(accounts),
		admin.NewCreateAccount(accounts, hasher, recorder),
		admin.NewUnlockAccount(accounts, recorder),
		admin.NewSetAccountActive(accounts, recorder),
		log,
	)
	requireAdmin := middleware.RequireAdminSecret(cfg.Admin.Secret)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Server.IsDevelopment))

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		AdminHandler:  adminHandler,
		HealthHandler: healthHandler,
		RequireAdmin:  requireAdmin,
		Log:           log,
		Secure:        secureMiddleware,
		CORS:          middleware.CORS(cfg.Server.CORSOrigins, nil, nil),
		IPRateLimit:   ipLimit,
		APIVersion:    "v1",
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
