package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quickbite/food_delivery/internal/blacklist"
	"github.com/quickbite/food_delivery/internal/config"
	"github.com/quickbite/food_delivery/internal/events"
	"github.com/quickbite/food_delivery/internal/httpserver"
	"github.com/quickbite/food_delivery/internal/logging"
	mw "github.com/quickbite/food_delivery/internal/middleware"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/repo"
	"github.com/quickbite/food_delivery/internal/service"
	"github.com/quickbite/food_delivery/internal/session"
	"github.com/quickbite/food_delivery/internal/tokens"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.RefreshSession{}, &models.ServiceAccount{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis_unreachable_at_startup", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	issuer := &tokens.Issuer{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		ServiceTTL: cfg.ServiceTokenTTL,
	}

	local := blacklist.NewMemory(cfg.BlacklistSweepEvery)
	defer local.Close()
	bl := &blacklist.Store{
		Primary:    blacklist.NewRedis(rdb),
		Local:      local,
		PeekExpiry: issuer.PeekExpiry,
		DefaultTTL: cfg.BlacklistDefaultTTL,
		Buffer:     30 * time.Second,
		Timeout:    cfg.BlacklistTimeout,
		Log:        logger,
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	}

	store := &repo.GormRepo{DB: db}
	sessions := &session.Manager{Repo: store, TTL: cfg.RefreshTokenTTL}
	authSvc := &service.AuthService{
		Repo:       store,
		Sessions:   sessions,
		Issuer:     issuer,
		Blacklist:  bl,
		Events:     publisher,
		BcryptCost: cfg.BcryptCost,
	}
	svcCreds := &service.ServiceCredentials{
		Repo:       store,
		Issuer:     issuer,
		Events:     publisher,
		BcryptCost: cfg.BcryptCost,
	}
	authn := &mw.Authenticator{
		Issuer:      issuer,
		Blacklist:   bl,
		Repo:        store,
		ResolveLive: !cfg.PermissionsFromClaims,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	cookies := httpserver.Cookies{Secure: cfg.Production}
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, Cookies: cookies},
		ServiceHandler: &httpserver.ServiceAuthHTTP{Svc: svcCreds, Auth: authSvc, Issuer: issuer, Blacklist: bl},
		AdminHandler:   &httpserver.AdminHTTP{Auth: authSvc, Services: svcCreds},
		Authenticator:  authn,
		Issuer:         issuer,
	})

	go func() {
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown", "error", err)
	}
}
