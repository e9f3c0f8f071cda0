package adminservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/httpserve"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/postgres"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/general/relay"
	adminhandler "ride-share/internal/software/adminboard/handler"
	adminboard "ride-share/internal/software/adminboard/service"
	rideservice "ride-share/internal/software/ride/service"
)

// Run wires the admin service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// set up a new logger for the admin service with a static request ID for startup logs
	logger := logger.New("admin-service")
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

	// set up the JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// set up the necessary repos
	uow := postgres.NewUnitOfWork(pool)
	rideRepo := postgres.NewRideRepo()
	passengerRepo := postgres.NewPassengerRepo()
	userRepo := postgres.NewUserRepo()
	vehicleRepo := postgres.NewVehicleRepo()
	paymentRepo := postgres.NewPaymentRepo()
	ratingRepo := postgres.NewRatingRepo()

	// set up the relay: admin cancellations still notify the affected parties
	hub := relay.NewHub(logger)
	rel := relay.New(hub, pub, logger)

	// admin cancellation delegates to the ride engine so the guard and the
	// driver-release path stay in one place
	rides := rideservice.NewRideService(logger, uow, rideRepo, passengerRepo, userRepo, vehicleRepo, paymentRepo, ratingRepo, rel, nil)
	svc := adminboard.NewAdminService(logger, uow, rideRepo, userRepo, paymentRepo, rides, nil)

	// set up the HTTP handler and its routes
	mux := http.NewServeMux()
	httpHandler := adminhandler.NewAdminHTTPHandler(svc, logger, jwtManager)
	httpHandler.RegisterRoutes(mux)

	port := cfg.Services.AdminServicePort
	logger.Info(ctx, "service_started",
		fmt.Sprintf("Admin Service started on port %d", port),
		map[string]any{"port": port, "max_concurrent": maxConcurrent},
	)
	return httpserve.Serve(ctx, logger, port, httpserve.LimitConcurrency(maxConcurrent, mux))
}
