package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafe_voice_backend/internal/conversation"
	"cafe_voice_backend/internal/conversation/domain"
	domainevents "cafe_voice_backend/internal/events"
	apphttp "cafe_voice_backend/internal/http"
	"cafe_voice_backend/internal/http/router"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/notify"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/internal/orders"
	"cafe_voice_backend/internal/voice"
	"cafe_voice_backend/platform/ai/chatapi"
	"cafe_voice_backend/platform/config"
	"cafe_voice_backend/platform/db"
	"cafe_voice_backend/platform/events"
	"cafe_voice_backend/platform/logger"
	"cafe_voice_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	subscribeEventLogging(eventBus, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	catalog := menu.Default()
	extras := menu.DefaultExtras()

	registry, closeRegistry := initRegistry(cfg, log)
	if closeRegistry != nil {
		defer closeRegistry()
	}

	extractor, err := initExtractor(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize extractor", "error", err)
		panic("failed to initialize extractor: " + err.Error())
	}

	oracleClient := oracle.NewClient(extractor, oracle.RetryPolicy{
		MaxAttempts: cfg.OracleMaxAttempts,
		BaseDelay:   cfg.OracleBaseDelay,
		Multiplier:  2,
		Jitter:      true,
	}, cfg.OracleTimeout, log)

	dispatcher, closeDispatcher := initDispatcher(cfg, log)
	if closeDispatcher != nil {
		defer closeDispatcher()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	ordersModule := orders.NewModule(pool, log)

	reconciler := conversation.NewReconciler(catalog, extras, log)
	controller := conversation.NewController(
		registry,
		oracleClient,
		reconciler,
		ordersModule.Service,
		dispatcher,
		eventBus,
		catalog,
		extras,
		log,
		cfg.PromptTimeoutSeconds,
	)

	voiceModule := voice.NewModule(controller, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			voiceModule,
			ordersModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRegistry picks the session store backend. Redis shares live calls
// across instances; memory is single-process.
func initRegistry(cfg *config.Config, log *logger.Logger) (conversation.Registry, func()) {
	if cfg.SessionStore == "redis" {
		redisRegistry, err := conversation.NewRedisRegistry(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Error("failed to initialize redis session registry", "error", err)
			panic("failed to initialize redis session registry: " + err.Error())
		}
		return redisRegistry, func() {
			_ = redisRegistry.Close()
		}
	}
	return conversation.NewMemoryRegistry(), nil
}

func initExtractor(ctx context.Context, cfg *config.Config) (oracle.Extractor, error) {
	if cfg.OracleProvider == "gemini" {
		return oracle.NewGeminiExtractor(ctx, cfg.OracleAPIKey, cfg.OracleModel)
	}
	return chatapi.NewClient(chatapi.Config{
		APIKey:  cfg.OracleAPIKey,
		BaseURL: cfg.OracleBaseURL,
		Model:   cfg.OracleModel,
	}), nil
}

// initDispatcher wires the preparation ticket queue. Without Redis the
// dispatch step degrades to a no-op and tickets are lost, which only makes
// sense in local development.
func initDispatcher(cfg *config.Config, log *logger.Logger) (conversation.Dispatcher, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; preparation dispatch disabled")
		return noopDispatcher{}, nil
	}

	client, err := notify.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize dispatch client", "error", err)
		panic("failed to initialize dispatch client: " + err.Error())
	}
	return client, func() {
		_ = client.Close()
	}
}

// subscribeEventLogging keeps an audit trail of call lifecycle events.
func subscribeEventLogging(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(domainevents.CallStartedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(domainevents.CallStarted); ok {
			log.Info("call started", "call_id", ev.CallID)
		}
		return nil
	}))
	bus.Subscribe(domainevents.TurnDegradedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(domainevents.TurnDegraded); ok {
			log.Warn("turn degraded", "call_id", ev.CallID, "stage", ev.Stage, "transient", ev.Transient, "reason", ev.Reason)
		}
		return nil
	}))
	bus.Subscribe(domainevents.OrderFinalizedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(domainevents.OrderFinalized); ok {
			log.Info("order finalized", "call_id", ev.CallID, "order_id", ev.OrderID, "total", ev.Total)
		}
		return nil
	}))
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, string, domain.Area, []domain.Item) error {
	return nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
