package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/bsavchuk/contacts-api/internal/config"
	"github.com/bsavchuk/contacts-api/internal/events"
	"github.com/bsavchuk/contacts-api/internal/handlers"
	"github.com/bsavchuk/contacts-api/internal/logging"
	"github.com/bsavchuk/contacts-api/internal/mail"
	"github.com/bsavchuk/contacts-api/internal/middleware"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/search"
	"github.com/bsavchuk/contacts-api/internal/storage"
	"github.com/bsavchuk/contacts-api/internal/tokens"
	httpserver "github.com/bsavchuk/contacts-api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := repo.New(db)
	tokenService := &tokens.Service{Secret: []byte(configuration.JWT_SECRET)}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(configuration.KAFKA_ADDRESS, configuration.KAFKA_TOPIC)
	}

	var mailer mail.Mailer
	if configuration.SMTP_HOST != "" {
		mailer, err = mail.New(mail.Config{
			Host:     configuration.SMTP_HOST,
			Port:     configuration.SMTP_PORT,
			Username: configuration.SMTP_USER,
			Password: configuration.SMTP_PASSWORD,
			From:     configuration.SMTP_FROM,
			FromName: "Contacts API",
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	var avatarStorage *storage.AvatarStorage
	if configuration.S3_BUCKET != "" {
		avatarStorage, err = storage.New(context.Background(), storage.Config{
			Bucket:      configuration.S3_BUCKET,
			Region:      configuration.S3_REGION,
			AccessKeyID: configuration.S3_ACCESS_KEY,
			SecretKey:   configuration.S3_SECRET_KEY,
			Endpoint:    configuration.S3_ENDPOINT,
			BaseURL:     configuration.S3_BASE_URL,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	var index *search.Index
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			log.Fatal(err)
		}
		index = &search.Index{ES: esClient, Name: search.DefaultIndex}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(configuration.RATE_LIMIT))))

	deps := httpserver.Deps{
		Auth: &middleware.Auth{Tokens: tokenService, Repo: gormRepo},
		AuthHandler: &handlers.AuthHandler{
			Repo:     gormRepo,
			Tokens:   tokenService,
			Mailer:   mailer,
			Producer: producer,
			BaseURL:  configuration.BASE_URL,
		},
		ContactHandler: &handlers.ContactHandler{Repo: gormRepo, Index: index},
		AvatarHandler:  &handlers.AvatarHandler{Repo: gormRepo, Storage: avatarStorage},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("producer close error", "error", err)
	}
}
