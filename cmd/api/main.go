package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-issues-api/docs"
	"civic-issues-api/internal/client"
	"civic-issues-api/internal/config"
	"civic-issues-api/internal/handler"
	"civic-issues-api/internal/middleware"
	"civic-issues-api/internal/repository"
	"civic-issues-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	setupLogger(config.LogLevel)

	// Database connection
	conn, err := pgxpool.New(context.Background(), config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	if err := repository.EnsureSchema(context.Background(), conn); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare db schema")
	}

	// Upstream clients
	var classifier service.Classifier
	if config.MLAPIURL != "" {
		classifier = client.NewClassifierClient(config.MLAPIURL, nil)
	} else {
		log.Warn().Msg("ML_API_URL is not set, classification requests will fail")
	}
	geocoder := client.NewNominatimClient(config.GeocoderURL, config.GeocoderUserAgent)

	// Initialize layers
	repo := repository.NewRepository(conn)

	classifyService := service.NewClassifyService(classifier, config.ClassifyTimeout)
	reverseGeocodeService := service.NewReverseGeoCodeService(geocoder, config.GeocodeTimeout)
	issueService := service.NewIssueService(repo, config.StatsCacheTTL)

	classifyHandler := handler.NewClassifyHandler(classifyService, config.MaxUploadBytes)
	reverseGeocodeHandler := handler.NewReverseGeocodeHandler(reverseGeocodeService)
	issueHandler := handler.NewIssueHandler(issueService)

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/classify-issue", classifyHandler.Classify)
	api.GET("/reverse-geocode", reverseGeocodeHandler.ReverseGeocode)
	issueHandler.Register(api)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "Origin"},
	})

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", config.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(gin.ReleaseMode)
	if lvl <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	}
}
