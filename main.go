package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/reminder"
	"task-tracker/backend/internal/services"

	"gorm.io/gorm/logger"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logLevel := logger.Warn
	if !cfg.IsProduction() {
		logLevel = logger.Info
	}

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logLevel,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("database ready")

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return pool.Health()
	})

	authService := services.NewAuthService(cfg.Auth)

	var taskService services.TaskService = services.NewTaskService()
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		defer redisCache.Close()

		if err := redisCache.Health(); err != nil {
			log.Printf("redis unreachable, task list caching disabled: %v", err)
		} else {
			taskService = services.NewCachedTaskService(taskService, redisCache)
			monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
				return redisCache.Health()
			})
			log.Println("task list caching enabled")
		}
	}

	var dispatcher *reminder.Dispatcher
	if cfg.Reminder.Enabled {
		var notifier reminder.Notifier
		switch cfg.Reminder.Sink {
		case "webhook":
			notifier = reminder.NewWebhookNotifier(cfg.Reminder.WebhookURL)
		case "mail":
			notifier = reminder.NewMailNotifier(cfg.SMTP)
		default:
			notifier = reminder.LogNotifier{}
		}

		dispatcher = reminder.NewDispatcher(pool.DB, notifier, cfg.Reminder.Interval)
		dispatcher.Start()
	}

	router := setupRouter(cfg, pool.DB, authService, taskService)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("starting %s server on %s", cfg.Server.Environment, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if dispatcher != nil {
		dispatcher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
