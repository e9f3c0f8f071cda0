package driverlocationservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/httpserve"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/postgres"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/general/redisgeo"
	"ride-share/internal/general/relay"
	"ride-share/internal/software/driverloc/handler"
	"ride-share/internal/software/driverloc/service"
)

// Run wires the driver location service and blocks until ctx is cancelled.
func Run(ctx context.Context, prefetch, maxConcurrent int) error {
	// set up a new logger for the driver location service with a static request ID for startup logs
	logger := logger.New("driver-location-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	// set up a Postgres connection pool
	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	// connect to RabbitMQ
	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	// set up the RabbitMQ publisher
	pub := rabbitmq.NewMQPublisher(rmq)

	// connect to the Redis geo cache
	geoCache, err := redisgeo.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "redis_connection_failed", "Failed to connect to Redis", err, nil)
		return err
	}
	defer geoCache.Close()

	// set up the JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// set up the necessary repos
	uow := postgres.NewUnitOfWork(pool)
	userRepo := postgres.NewUserRepo()
	rideRepo := postgres.NewRideRepo()
	locationHistoryRepo := postgres.NewLocationHistoryRepo()

	// set up the relay: WebSocket rooms plus the broker mirror
	hub := relay.NewHub(logger)
	rel := relay.New(hub, pub, logger)

	// set up the driver location service
	svc := service.NewDriverLocationService(logger, uow, userRepo, rideRepo, locationHistoryRepo, geoCache, rel, nil)

	// re-broadcast ride status events published by the ride service, so
	// drivers subscribed here see new requests and assignments
	relay.RunRebroadcast(ctx, rmq, hub, contracts.QueueRideStatus, "driver-location-service", prefetch, logger)

	// set up the HTTP handler and its routes
	mux := http.NewServeMux()
	httpHandler := handler.NewLocationHTTPHandler(svc, logger, jwtManager, hub)
	httpHandler.RegisterRoutes(mux)

	port := cfg.Services.DriverLocationServicePort
	logger.Info(ctx, "service_started",
		fmt.Sprintf("Driver Location Service started on port %d", port),
		map[string]any{"port": port, "max_concurrent": maxConcurrent, "prefetch": prefetch},
	)
	return httpserve.Serve(ctx, logger, port, httpserve.LimitConcurrency(maxConcurrent, mux))
}
