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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadp "cta-backend/internal/adapter/http"
	"cta-backend/internal/adapter/middleware"
	"cta-backend/internal/adapter/repository/mysql"
	"cta-backend/internal/config"
	"cta-backend/internal/infrastructure/cache"
	"cta-backend/internal/infrastructure/db"
	"cta-backend/internal/infrastructure/logging"
	"cta-backend/internal/infrastructure/metrics"
	"cta-backend/internal/infrastructure/security"
	"cta-backend/internal/infrastructure/token"
	authuc "cta-backend/internal/usecase/auth"
	insuc "cta-backend/internal/usecase/inspection"
	useruc "cta-backend/internal/usecase/user"
	"cta-backend/internal/usecase/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("config.env")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxOpenConns / 2,
		LogLevel:     db.ParseLogLevel(cfg.GormLogLevel),
	}, log)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	if pending, err := db.Pending(context.Background(), gdb, db.Schema); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	} else if len(pending) > 0 {
		log.Warn("schema is behind, run `ctactl migrate`", zap.Int("pending", len(pending)))
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	defer rdb.Close()

	tokens, err := token.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(security.DefaultCost)
	m := metrics.New()

	records := mysql.NewInspectionRepository(gdb)
	events := mysql.NewEventRepository(gdb)
	users := mysql.NewUserRepository(gdb)

	handlers := httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.PingFunc{
			"mysql": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Auth:        httpadp.NewAuthHandler(authuc.NewUsecase(users, tokens, hasher, log), log),
		Inspections: httpadp.NewInspectionHandler(insuc.NewUsecase(records, events, m, log), log),
		Supervisor:  httpadp.NewSupervisorHandler(validation.NewUsecase(records, mysql.NewGormUoW(gdb), m, log), log),
		Users:       httpadp.NewUserHandler(useruc.NewUsecase(users, records, hasher, log), log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestID(), middleware.RequestLogger(log), echomw.Recover())
	httpadp.RegisterRoutes(e, handlers, httpadp.RouteOptions{
		Auth:        middleware.Auth(tokens),
		Idempotency: middleware.Idempotency(rdb, cfg.IdempotencyTTL(), log),
		Metrics:     m.Handler(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
