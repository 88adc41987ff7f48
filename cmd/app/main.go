package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workflow_api/internal/config"
	"workflow_api/internal/db"
	httpServer "workflow_api/internal/http"
	"workflow_api/internal/http/handlers"
	"workflow_api/internal/http/middleware"
	"workflow_api/internal/logger"
	"workflow_api/internal/repository"
	"workflow_api/internal/repository/memory"
	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var version = "dev"

// MemoryDSN selects the in-process store instead of Postgres.
const MemoryDSN = "memory"

type stores struct {
	users     service.UserStore
	clients   service.ClientStore
	tasks     service.TaskStore
	dashboard service.DashboardStore
	pinger    handlers.Pinger
	close     func()
}

func openStores(cfg *config.Config) stores {
	if cfg.DatabaseURL == MemoryDSN {
		logger.Warn("using in-memory store; data is lost on exit")
		m := memory.New()
		return stores{m.Users(), m.Clients(), m.Tasks(), m.Dashboard(), m, func() {}}
	}

	pool := db.Connect(cfg.DatabaseURL)
	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
	}
	return stores{
		users:     repository.NewUserRepository(pool),
		clients:   repository.NewClientRepository(pool),
		tasks:     repository.NewTaskRepository(pool),
		dashboard: repository.NewDashboardRepository(pool),
		pinger:    pool,
		close:     pool.Close,
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(gin.ReleaseMode)

	st := openStores(cfg)
	defer st.close()

	auth := service.NewAuthService(st.users, service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), service.PasswordHasher{Cost: bcrypt.DefaultCost})
	h := handlers.NewHandler(
		auth,
		service.NewClientService(st.clients, st.tasks),
		service.NewTaskService(st.tasks),
		service.NewDashboardService(st.dashboard),
	)

	checks := map[string]handlers.Pinger{"database": st.pinger}
	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if rl := middleware.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rl != nil {
		defer rl.Close()
		limiter = rl
		checks["redis"] = rl
	}

	r := httpServer.NewRouter(httpServer.Deps{
		Handler:  h,
		Health:   handlers.NewHealthHandler(version, checks),
		Verifier: auth,
		Limiter:  limiter,
		Limits: httpServer.Limits{
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateWindow: cfg.AuthRateWindow,
			APIRateLimit:   cfg.APIRateLimit,
			APIRateWindow:  cfg.APIRateWindow,
		},
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
