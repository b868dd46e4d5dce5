package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/patrickmn/go-cache"

	database "github.com/ZyrusAlvez/tourist-app-binan/app/db"
	appLogger "github.com/ZyrusAlvez/tourist-app-binan/app/logger"
	"github.com/ZyrusAlvez/tourist-app-binan/app/observability/metrics"
	"github.com/ZyrusAlvez/tourist-app-binan/app/tracer"
	"github.com/ZyrusAlvez/tourist-app-binan/config"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/auth"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/chat"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/city"
	generativeAI "github.com/ZyrusAlvez/tourist-app-binan/internal/api/generative_ai"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/intent"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/itinerary"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/search"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/geo"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/places"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- City geometry ---
	boundary, err := geo.NewPolygon(cfg.City.Boundary)
	if err != nil {
		logger.Error("Invalid city boundary", slog.Any("error", err))
		os.Exit(1)
	}

	// --- External providers ---
	// The places client is optional at startup: without an API key searches
	// degrade to empty results instead of refusing to boot.
	var placesClient places.Client
	if apiKey := os.Getenv("GOOGLE_PLACES_API_KEY"); apiKey != "" {
		client, err := places.NewGoogleClient(apiKey, cfg.Places.BaseURL, logger)
		if err != nil {
			logger.Error("Failed to initialize places client", slog.Any("error", err))
			os.Exit(1)
		}
		placesClient = client
	} else {
		logger.Warn("GOOGLE_PLACES_API_KEY not set, place search disabled")
	}

	generator, err := generativeAI.NewTextGenerator(ctx, generativeAI.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize text generator", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency injection ---
	appMetrics := metrics.Get()

	searchCache := cache.New(cfg.Cache.SearchTTL, 2*cfg.Cache.SearchTTL)
	searchService := search.NewServiceImpl(placesClient, boundary, cfg.City.Grid, searchCache, cfg.Cache.SearchTTL, appMetrics, logger)
	searchHandler := search.NewHandler(searchService, logger)

	intentService := intent.NewServiceImpl(generator, logger)

	itineraryService := itinerary.NewServiceImpl(searchService, generator, appMetrics, itinerary.Options{
		StrictNoRepeat: cfg.Itinerary.StrictNoRepeat,
	}, logger)
	itineraryRepo := itinerary.NewRepository(pool, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, itineraryRepo, logger)

	cityHandler := city.NewHandler(cfg.City.Name, boundary, logger)

	sessionStore := chat.NewStore(cfg.Cache.SessionTTL)
	chatService := chat.NewServiceImpl(sessionStore, searchService, intentService, itineraryService, generator, logger)
	chatHandler := chat.NewHandler(chatService, logger)

	tokenIssuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		logger.Error("Failed to initialize token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	authRepo := auth.NewRepository(pool, tokenIssuer, logger)
	authService := auth.NewServiceImpl(authRepo)
	authHandler := auth.NewHandler(authService, logger)

	// --- Router ---
	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		ChatHandler:            chatHandler,
		CityHandler:            cityHandler,
		SearchHandler:          searchHandler,
		ItineraryHandler:       itineraryHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	// --- HTTP server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures the application logger: colored console output in
// development, JSON elsewhere.
func setupLogger(mode string) *slog.Logger {
	var logger *slog.Logger
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
