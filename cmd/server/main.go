// Command notes-server starts the notes HTTP server and its gRPC health listener.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/config"
	pkgcrypto "github.com/and161185/notekeeper/internal/crypto"
	"github.com/and161185/notekeeper/internal/lockout"
	"github.com/and161185/notekeeper/internal/migrate"
	"github.com/and161185/notekeeper/internal/repository/postgres"
	grpcserver "github.com/and161185/notekeeper/internal/server/grpc"
	httpserver "github.com/and161185/notekeeper/internal/server/http"
	"github.com/and161185/notekeeper/internal/service"
	"github.com/and161185/notekeeper/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config depends on cfg; fall back to a production logger
		l, _ := zap.NewProduction()
		l.Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.Log.Development)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
		zap.String("healthAddr", cfg.Server.HealthAddr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	noteRepo := postgres.NewNoteRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	lock := lockout.NewPG(db.Pool)

	// Services
	authSvc := service.NewAuthService(userRepo, pkgcrypto.NewBcrypt(cfg.Auth.BcryptCost), lock)
	noteSvc := service.NewNoteService(noteRepo)

	sessions := session.NewManager(sessionRepo, []byte(cfg.Session.Secret), cfg.Session.TTL)
	go sessions.RunJanitor(ctx, cfg.Session.SweepInterval, logger.Named("sessions"))

	// HTTP
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	httpserver.NewHandler(authSvc, noteSvc, sessions, httpserver.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, logger.Named("http")).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health
	health := grpcserver.NewHealth(db, logger.Named("health"))
	gs := grpcserver.NewServer(health, logger.Named("grpc"))
	go health.Run(ctx, cfg.Server.HealthInterval)

	lis, err := net.Listen("tcp", cfg.Server.HealthAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("health listening", zap.String("addr", cfg.Server.HealthAddr))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		shutdown(srv, gs, logger)
		os.Exit(1)
	}

	shutdown(srv, gs, logger)
	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// shutdown drains HTTP first, then stops the health listener.
func shutdown(srv *http.Server, gs interface {
	GracefulStop()
	Stop()
}, logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		gs.Stop()
	}
}
