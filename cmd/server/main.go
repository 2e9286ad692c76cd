package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bcmoney-backend/internal/common/config"
	"bcmoney-backend/internal/common/logger"
	"bcmoney-backend/internal/common/middleware"
	authhttp "bcmoney-backend/internal/features/auth/delivery/http"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	authrepo "bcmoney-backend/internal/features/auth/repository/redis"
	authservice "bcmoney-backend/internal/features/auth/service"
	markethttp "bcmoney-backend/internal/features/market/delivery/http"
	marketservice "bcmoney-backend/internal/features/market/service"
	profilehttp "bcmoney-backend/internal/features/profile/delivery/http"
	profilerepo "bcmoney-backend/internal/features/profile/repository/redis"
	profileservice "bcmoney-backend/internal/features/profile/service"
	recipienthttp "bcmoney-backend/internal/features/recipient/delivery/http"
	recipientrepo "bcmoney-backend/internal/features/recipient/repository/redis"
	recipientservice "bcmoney-backend/internal/features/recipient/service"
	streamhttp "bcmoney-backend/internal/features/stream/delivery/http"
	wallethttp "bcmoney-backend/internal/features/wallet/delivery/http"
	walletrepo "bcmoney-backend/internal/features/wallet/repository/redis"
	walletservice "bcmoney-backend/internal/features/wallet/service"
	"bcmoney-backend/internal/platform/bus"
	"bcmoney-backend/internal/platform/docstore"
	redisplatform "bcmoney-backend/internal/platform/redis"
)

// @title           BCMoney Wallet API
// @version         1.0
// @description     Backend for the BCMoney crypto wallet dashboard: token catalog, profiles, balances, transfers, trades and real-time data streams.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerSession
// @in header
// @name Authorization
// @description Session token issued by /auth/signin, sent as "Bearer <token>"

// @tag.name auth
// @tag.description Email and password sessions

// @tag.name market
// @tag.description Token catalog and exchange rates

// @tag.name profile
// @tag.description User profile, watchlist and owned tokens

// @tag.name wallet
// @tag.description Balances, deposits, transfers and trades

// @tag.name recipients
// @tag.description Saved-recipient address book

// @tag.name stream
// @tag.description Server-sent event feeds

func main() {
	cfg := config.MustLoad()
	logger.Init("bcmoney-backend", cfg.Debug)

	log.Info().
		Bool("debug", cfg.Debug).
		Int("port", cfg.Server.Port).
		Msg("starting bcmoney backend")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	rdb, err := redisplatform.Open(startupCtx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("redis open failed")
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.RedisAddr()).Msg("redis connection established")

	errBus := bus.New()
	busLog := errBus.Subscribe(64)
	go func() {
		for storeErr := range busLog {
			log.Error().
				Str("operation", string(storeErr.Op)).
				Str("path", storeErr.Path).
				Str("code", string(storeErr.Code)).
				Err(storeErr.Err).
				Msg("store access failure")
		}
	}()

	store := docstore.New(rdb, errBus, cfg.Store.OpTimeout)

	authRepository := authrepo.NewAuthRepository(rdb)
	profileRepository := profilerepo.NewProfileRepository(store)
	walletRepository := walletrepo.NewWalletRepository(store)
	recipientRepository := recipientrepo.NewRecipientRepository(store)

	marketSvc := marketservice.NewMarketService()
	authSvc := authservice.NewAuthService(authRepository, cfg.Auth.SessionTTL)
	profileSvc := profileservice.NewProfileService(profileRepository, marketSvc)
	walletSvc := walletservice.NewWalletService(walletRepository, marketSvc, profileSvc)
	recipientSvc := recipientservice.NewRecipientService(recipientRepository)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	streamHandler := streamhttp.NewStreamHandler(store, errBus, marketSvc)

	v1 := router.Group("/api/v1")
	{
		authhttp.NewAuthHandler(authSvc).RegisterRoutes(v1)
		markethttp.NewMarketHandler(marketSvc).RegisterRoutes(v1)
		if cfg.Debug {
			streamHandler.RegisterDebugRoutes(v1)
		}

		private := v1.Group("")
		private.Use(authmw.RequireUser(authSvc))
		{
			profilehttp.NewProfileHandler(profileSvc).RegisterRoutes(private)
			wallethttp.NewWalletHandler(walletSvc).RegisterRoutes(private)
			recipienthttp.NewRecipientHandler(recipientSvc).RegisterRoutes(private)
			streamHandler.RegisterRoutes(private)
		}
	}

	router.GET("/healthz", func(c *gin.Context) {
		healthCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if !rdb.Healthy(healthCtx) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "bcmoney-backend",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// No WriteTimeout: SSE connections stay open indefinitely.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	errBus.Unsubscribe(busLog)
	log.Info().Msg("server stopped")
}
