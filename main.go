package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/newspulse/newspulse/backend/go-services/handlers"
	"github.com/newspulse/newspulse/backend/go-services/internal/auth"
	"github.com/newspulse/newspulse/backend/go-services/internal/config"
	"github.com/newspulse/newspulse/backend/go-services/internal/database"
	"github.com/newspulse/newspulse/backend/go-services/internal/identity"
	"github.com/newspulse/newspulse/backend/go-services/internal/news"
	"github.com/newspulse/newspulse/backend/go-services/internal/sessions"
	"github.com/newspulse/newspulse/backend/go-services/internal/storage"
	"github.com/newspulse/newspulse/backend/go-services/internal/tokens"
	"github.com/newspulse/newspulse/backend/go-services/internal/users"
	"github.com/newspulse/newspulse/backend/go-services/pkg/logger"
	"github.com/newspulse/newspulse/backend/go-services/pkg/metrics"
	"github.com/newspulse/newspulse/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v google_oauth=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OAuth.GoogleClientID != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// shared runtime vars used by handlers/readiness
	var newsSvc *news.Service
	var userSvc *users.Service
	var sessionsSvc *sessions.Service

	// Connect to Redis early so the rate-limiter and token blacklist can use
	// it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := importedRedis.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(importedRedis)
			logger.Infof("Connected to Redis (early) for optional features: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis early (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// article store is the core dependency; auth services are reported but
		// only block readiness when sessions are missing too
		if newsSvc == nil {
			deps["articles"] = false
			ready = false
		} else {
			deps["articles"] = true
		}
		deps["users"] = userSvc != nil
		if sessionsSvc == nil {
			deps["sessions"] = false
			ready = false
		} else {
			deps["sessions"] = true
		}

		// Redis readiness when used for rate-limiter or sessions
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = importedRedis != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// Identity providers for third-party login
	ctx := context.Background()
	providers := identity.NewRegistry()
	if cfg.OAuth.GoogleClientID != "" {
		providers.Register("google", identity.NewGoogleVerifier(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleTokenInfoURL))
	}
	if cfg.OAuth.AppleClientID != "" {
		ver, err := identity.NewAppleVerifier(ctx, cfg.OAuth.AppleIssuerURL, cfg.OAuth.AppleClientID)
		if err != nil {
			logger.Warnf("failed to initialize Apple verifier: %v", err)
		} else {
			providers.Register("apple", ver)
		}
	}
	// Optional insecure verifier for integration tests: parse token claims
	// without signature verification
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		providers.Register("insecure", identity.NewInsecureVerifier())
	}

	// Prefer Redis-based sessions when configured (fast, in-memory)
	if importedRedis != nil {
		srepo := sessions.NewRedisRepository(importedRedis, "session:")
		sessionsSvc = sessions.NewService(srepo)
		logger.Infof("Using Redis for session storage (early connection)")
	}

	issuer := tokens.NewIssuer(cfg)
	hasher := auth.NewBcryptHasher()

	// MongoDB-backed stores (articles + users, sessions fallback).
	// Retry/backoff when connecting to MongoDB to tolerate startup races.
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			newsSvc = news.NewService(news.NewMongoArticleRepository(db.Collection("articles")))
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")), issuer, hasher)
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}
		}
	}

	// In-memory fallbacks keep the API usable in dev environments without a
	// database; data does not survive restarts.
	if newsSvc == nil {
		logger.Warnf("MongoDB unavailable, serving articles from memory")
		newsSvc = news.NewService(news.NewMemoryArticleRepository())
	}
	if userSvc == nil {
		logger.Warnf("MongoDB unavailable, keeping users in memory")
		userSvc = users.NewService(users.NewMemoryUserRepository(), issuer, hasher)
	}

	handlers.NewNewsHandler(newsSvc).Register(r.Group("/"))
	if sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc, issuer, providers).Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because no session store is available")
	}

	// Image proxy, with MinIO-backed caching when configured
	var imageCache *storage.ImageCache
	if mc := storage.LoadMinIOConfig(); mc.Endpoint != "" {
		cache, err := storage.NewImageCache(mc)
		if err != nil {
			logger.Warnf("failed to initialize image cache: %v", err)
		} else {
			imageCache = cache
			logger.Infof("image cache enabled (bucket=%s)", mc.Bucket)
		}
	}
	handlers.NewProxyHandler(imageCache).Register(r.Group("/"))

	handlers.RegisterSwagger(r)

	// Authenticated profile endpoint
	api := r.Group("/api/v1")
	api.GET("/me", middleware.AuthMiddleware(issuer), func(c *gin.Context) {
		email := c.GetString("email")
		u, err := userSvc.Profile(c.Request.Context(), email)
		if err != nil {
			logger.Errorf("profile lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
			return
		}
		if u == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("services: news=%v users=%v sessions=%v providers=%v", newsSvc != nil, userSvc != nil, sessionsSvc != nil, providers.Providers())
	logger.Infof("Starting newspulse service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
