package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/auth"
	"github.com/ukydev/fleet-track/internal/config"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/events"
	"github.com/ukydev/fleet-track/internal/handlers"
	"github.com/ukydev/fleet-track/internal/ingest"
	"github.com/ukydev/fleet-track/internal/metrics"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/trips"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	client, err := db.ConnectMongo(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()
	log.WithField("db", cfg.MongoDB).Info("connected to MongoDB")

	collections := db.NewCollections(client.Database(cfg.MongoDB))
	collector := metrics.NewCollector()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, collector.PublishErrs)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to NATS")
		}
		publisher = natsPub
		log.WithField("url", cfg.NATSURL).Info("publishing events to NATS")
	}
	defer publisher.Close()

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	tripService := trips.NewService(collections.Positions, collections.Trips)
	ownership := middleware.NewOwnershipMiddleware(collections.Vehicles, collections.Drivers, collections.Trips)

	router := &handlers.Router{
		Auth:      handlers.NewAuthHandler(authService, collections.Customers),
		Vehicles:  handlers.NewVehicleHandler(collections.Vehicles, collections.Positions, collections.Trips),
		Drivers:   handlers.NewDriverHandler(collections.Drivers, ownership),
		Positions: handlers.NewPositionHandler(collections.Positions, ownership, publisher, collector),
		Trips:     handlers.NewTripHandler(tripService, collections.Trips, collections.Vehicles, ownership, publisher, collector),
		Ownership: ownership,
		Observer:  collector,
	}

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()
	handler := rateMW.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow)(authMW.Authenticate(router.Mux()))

	if cfg.MQTTBrokerURL != "" {
		subscriber, err := ingest.New(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopic, collections.Positions, publisher, collector)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		defer subscriber.Close()
		log.WithField("broker", cfg.MQTTBrokerURL).Info("ingesting positions from MQTT")
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = collector.Serve(cfg.MetricsAddr)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("metrics shutdown failed")
		}
	}
}

// setupLogging configures logrus from the environment. With LOG_FILE set the
// log is duplicated to a size-rotated file.
func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}))
	}
}
