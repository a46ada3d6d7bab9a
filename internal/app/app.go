package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spaceship-manager/internal/cache"
	"spaceship-manager/internal/config"
	"spaceship-manager/internal/database"
	"spaceship-manager/internal/event"
	"spaceship-manager/internal/handler"
	"spaceship-manager/internal/middleware"
	"spaceship-manager/internal/repository"
	"spaceship-manager/internal/router"
	"spaceship-manager/internal/service"
	"spaceship-manager/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var (
		store        repository.SpaceshipStore
		outbox       event.OutboxStore
		db           *database.DB
		cleanupFuncs []func()
	)

	if cfg.MemoryStore {
		slog.Warn("using in-memory store; data will not survive a restart")
		store = repository.NewMemorySpaceshipStore()
		outbox = repository.NewMemoryOutbox()
	} else {
		slog.Info("connecting to PostgreSQL")
		db, err = database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		store = repository.NewSpaceshipRepository(db.Pool)
		outbox = repository.NewOutboxRepository(db.Pool)
		cleanupFuncs = append(cleanupFuncs, db.Close)
		slog.Info("database ready")
	}

	authService, err := service.NewAuthService(cfg.UsersFile, cfg.JWTSecret, cfg.JWTTokenTTL, cfg.AdminPassword)
	if err != nil {
		runCleanup(cleanupFuncs)
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	consumer := event.NewLogConsumer(bus)
	notifier := event.NewNotifier(bus, outbox)
	dispatcher := event.NewDispatcher(bus, outbox, cfg.OutboxDispatchLimit)

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	go consumer.Run(backgroundCtx)
	go dispatcher.Run(backgroundCtx, cfg.OutboxRetryInterval)

	regionCache := cache.New(cfg.CacheTTL)
	spaceshipService := service.NewSpaceshipService(store, regionCache, notifier)
	spaceshipHandler := handler.NewSpaceshipHandler(spaceshipService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:      authHandler,
		Spaceship: spaceshipHandler,
	}, hub)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	// Shutdown order: stop background work, close the bus, then the pool.
	cleanup := []func(){backgroundCancel, bus.Close}
	cleanup = append(cleanup, cleanupFuncs...)

	return &App{server: server, cleanupFuncs: cleanup}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		runCleanup(a.cleanupFuncs)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	runCleanup(a.cleanupFuncs)
	slog.Info("server stopped")
	return nil
}

func runCleanup(funcs []func()) {
	for _, cleanup := range funcs {
		cleanup()
	}
}
