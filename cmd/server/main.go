package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cafebar-be/internal/auth"
	"cafebar-be/internal/cart"
	"cafebar-be/internal/catalog"
	"cafebar-be/internal/config"
	"cafebar-be/internal/issue"
	"cafebar-be/internal/logger"
	"cafebar-be/internal/metrics"
	"cafebar-be/internal/middleware"
	"cafebar-be/internal/order"
	"cafebar-be/internal/storage"
	"cafebar-be/internal/transport"
	"cafebar-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init(os.Getenv("APP_ENV"))
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}

	logger.InitWithOptions(cfg.AppEnv, logger.Options{FilePath: cfg.LogFile})
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal("failed to start", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go a.limiter.Run(ctx, time.Minute)

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.AppPort),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := a.close(shutdownCtx); err != nil {
		log.Error("failed to flush pending writes", zap.Error(err))
	}
	log.Info("bye")
}

type app struct {
	handler http.Handler
	store   *order.Store
	limiter *middleware.RateLimiter
	closeKV func() error

	persistResults chan order.PersistResult
	watchDone      chan struct{}
	closeResults   sync.Once
}

// newApp wires storage, hydrates the stores and builds the router.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.L()

	kv, closeKV, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New("cafebar")
	persistResults := make(chan order.PersistResult, 64)
	store := order.NewStore(kv,
		order.WithMetrics(m),
		order.WithWriteTimeout(cfg.PersistTimeout),
		order.WithPersistNotify(persistResults),
	)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		watchPersistResults(persistResults)
	}()

	users := user.NewService(user.NewRepository(kv))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Load(gctx) })
	g.Go(func() error { return users.Load(gctx) })
	if err := g.Wait(); err != nil {
		if store.Close(context.Background()) == nil {
			close(persistResults)
		}
		_ = closeKV()
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("JWT_SECRET not set, sessions will not survive a restart")
	}
	sessions, err := auth.NewSessions(secret, auth.DefaultSessionTTL)
	if err != nil {
		return nil, err
	}

	orders := order.NewService(store)
	cat := catalog.Default()
	limiter := middleware.NewRateLimiter()

	handler := transport.NewRouter(transport.Deps{
		Orders:     orders,
		OrderStore: store,
		Catalog:    cat,
		Cart:       cart.NewService(cat, orders),
		Users:      users,
		Issues:     issue.NewService(kv),
		Sessions:   sessions,
		Metrics:    m,
		Limiter:    limiter,
		CORSOrigin: cfg.CORSOrigin,
	})

	return &app{
		handler:        handler,
		store:          store,
		limiter:        limiter,
		closeKV:        closeKV,
		persistResults: persistResults,
		watchDone:      watchDone,
	}, nil
}

// close flushes pending order writes before releasing storage. The result
// channel is closed only once the writer has stopped.
func (a *app) close(ctx context.Context) error {
	err := a.store.Close(ctx)
	if err == nil {
		a.closeResults.Do(func() { close(a.persistResults) })
	}
	return errors.Join(err, a.closeKV())
}

// watchPersistResults drains write outcomes; failures are already logged by
// the store, so only successes are traced here.
func watchPersistResults(results <-chan order.PersistResult) {
	for res := range results {
		if res.Err == nil {
			logger.L().Debug("persisted",
				zap.String("key", res.Key),
				zap.Duration("duration", res.Duration),
			)
		}
	}
}
