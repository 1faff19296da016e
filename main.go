package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/krtchnt/zenki/api/rest"
	"github.com/krtchnt/zenki/api/sse"
	"github.com/krtchnt/zenki/audit"
	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/config"
	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/core/activity"
	"github.com/krtchnt/zenki/core/friendship"
	"github.com/krtchnt/zenki/core/inventory"
	"github.com/krtchnt/zenki/core/transaction"
	dbadapter "github.com/krtchnt/zenki/db"
	"github.com/krtchnt/zenki/events"
	mw "github.com/krtchnt/zenki/middleware"
	"github.com/krtchnt/zenki/model"
	"github.com/krtchnt/zenki/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	issueFor := flag.Int64("issue-token", 0, "issue a session token for this user id and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		logger.Fatal("security.jwt_secret is required")
	}
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}

	if *issueFor > 0 {
		if cfg.Cache.RedisAddr == "" {
			logger.Warn("local cache: the issued session only lives in this process")
		}
		tok, err := mw.IssueSession(context.Background(), c, *issueFor, cfg.Security.JWTSecret, cfg.Security.JWTTTLH)
		if err != nil {
			logger.Fatal("issue token", zap.Error(err))
		}
		fmt.Println(tok)
		return
	}

	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		logger.Fatal("pubsub", zap.Error(err))
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit / events ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)
	pub := events.NewPublisher(pubsub, logger)

	// ---- Core services ----
	deps := core.Deps{
		DB:      db,
		Cache:   c,
		Events:  pub,
		Audit:   auditSvc,
		Logger:  logger,
		LockTTL: cfg.Core.LockTTL,
	}
	ledger := friendship.New(deps)
	tracker := activity.New(deps)
	engine := transaction.New(deps)
	inv := inventory.NewService(deps)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("stale_session_sweep", cfg.Core.SweepInterval, func(ctx context.Context) error {
		_, err := tracker.SweepStale(ctx, cfg.Core.StaleSessionAge)
		return err
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health"), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst, mw.ByClientIP))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apirest.Register(r.Group("/api"), apirest.Handlers{
		Friends:      apirest.NewFriendshipHandler(ledger, logger),
		Activity:     apirest.NewActivityHandler(tracker, logger),
		Transactions: apirest.NewTransactionHandler(engine, logger),
		Inventory:    apirest.NewInventoryHandler(inv, logger),
		Admin:        apirest.NewAdminHandler(tracker, sched, cfg.Core.StaleSessionAge, logger),
	},
		gin.HandlersChain{
			mw.Auth(cfg.Security, c),
			mw.RateLimit(rate.Limit(cfg.Security.UserRateLimitRPS), cfg.Security.UserRateLimitBurst, mw.ByUser),
		},
		gin.HandlersChain{mw.IPWhitelist(cfg.Server.AdminIPs), apirest.AdminAuth(cfg.Server.AdminKey)},
	)

	sseH := sse.NewHandler(pub, c, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server", zap.Error(err))
	}
}
