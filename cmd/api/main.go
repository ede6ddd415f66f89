package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/config"
	"github.com/studyhub/studyhub-api/internal/domain/auth"
	"github.com/studyhub/studyhub-api/internal/domain/course"
	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/purchase"
	"github.com/studyhub/studyhub-api/internal/domain/stats"
	"github.com/studyhub/studyhub-api/internal/domain/university"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/middleware"
	"github.com/studyhub/studyhub-api/internal/pkg/cache"
	"github.com/studyhub/studyhub-api/internal/pkg/database"
	"github.com/studyhub/studyhub-api/internal/pkg/imaging"
	"github.com/studyhub/studyhub-api/internal/pkg/jwt"
	"github.com/studyhub/studyhub-api/internal/pkg/logger"
	pkgresponse "github.com/studyhub/studyhub-api/internal/pkg/response"
	"github.com/studyhub/studyhub-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting StudyHub API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Storage ----------
	var store storage.Storage
	if cfg.S3AccessKey != "" {
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		store = s3Store
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Using S3 storage")
	} else {
		localStore, err := storage.NewLocalStorage(cfg.LocalStoragePath, cfg.LocalStorageURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		store = localStore
		log.Info().Str("path", cfg.LocalStoragePath).Msg("Using local storage")
	}

	// ---------- Cache ----------
	var queryCache cache.Cache
	if redisClient != nil {
		queryCache = cache.NewRedis(redisClient, "studyhub", cfg.CacheTTL)
	} else {
		queryCache = cache.NewMemory(cfg.CacheMaxEntries, cfg.CacheTTL)
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	universityRepo := university.NewRepository(db)
	courseRepo := course.NewRepository(db)
	materialRepo := material.NewRepository(db)
	purchaseRepo := purchase.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, universityRepo, jwtService, redisClient, cfg.SignupBonusCredits)
	courseService := course.NewService(courseRepo, userRepo)

	thumbnails := imaging.NewGenerator(imaging.DefaultConfig())
	materialService := material.NewService(
		materialRepo, userRepo, courseRepo, store, thumbnails,
		cfg.UploadRewardCredits, cfg.MaxUploadSizeBytes,
	)

	purchaseService := purchase.NewService(purchaseRepo, materialRepo, userRepo, queryCache, cfg.CacheTTL)
	materialService.SetAccessChecker(purchaseService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	universityHandler := university.NewHandler(universityRepo)
	courseHandler := course.NewHandler(courseService)
	materialHandler := material.NewHandler(materialService, cfg.MaxUploadSizeBytes)
	purchaseHandler := purchase.NewHandler(purchaseService)
	statsHandler := stats.NewHandler(statsRepo, queryCache, cfg.CacheTTL)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuthMiddleware := middleware.OptionalAuth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if _, ok := store.(*storage.LocalStorage); ok {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.LocalStoragePath)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/universities", universityHandler.Routes())
		r.Get("/universities/{id}/courses", courseHandler.ListByUniversity)
		r.Mount("/courses", courseHandler.Routes(authMiddleware, optionalAuthMiddleware))
		r.Mount("/materials", materialHandler.Routes(
			authMiddleware, optionalAuthMiddleware,
			purchaseHandler.Purchase, purchaseHandler.Access,
		))
		r.Mount("/purchases", purchaseHandler.Routes(authMiddleware))
		r.Route("/credits", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", purchaseHandler.Balance)
		})
		r.Mount("/stats", statsHandler.Routes(authMiddleware, middleware.RequireAdmin()))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
