package main

import (
	"context"

	reservationhandler "carbook/internal/reservations/handler"
	"carbook/internal/reservations/index"
	"carbook/internal/reservations/lock"
	reservationrepo "carbook/internal/reservations/repository"
	reservationservice "carbook/internal/reservations/service"
	reservationvalidator "carbook/internal/reservations/validator"
	searchcache "carbook/internal/search/cache"
	searchhandler "carbook/internal/search/handler"
	searchservice "carbook/internal/search/service"
	vehiclehandler "carbook/internal/vehicles/handler"
	vehiclerepo "carbook/internal/vehicles/repository"
	vehicleservice "carbook/internal/vehicles/service"
	vehiclevalidator "carbook/internal/vehicles/validator"
	"carbook/pkg/app"
	"carbook/pkg/config"
	"carbook/pkg/kafka"
)

const ServiceName = "rentals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Rentals service")

	reservations, vehicles, search := initServices(cfg)

	// The interval index must reflect every confirmed booking before the
	// first request is accepted; serving against an empty index would let
	// overlapping reservations through.
	if err := reservations.RebuildIndex(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to rebuild interval index", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		reservationhandler.NewReservationHandler(reservations, cfg.Log),
		vehiclehandler.NewVehicleHandler(vehicles, cfg.Log),
		searchhandler.NewSearchHandler(search, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (reservationservice.ReservationService, vehicleservice.VehicleService, searchservice.SearchService) {
	intervalIndex := index.New()
	lockRegistry := lock.NewRegistry(cfg.LockWaitTimeout)

	vehicleCache := searchcache.NewVehicleCache(cfg.Client.Redis, cfg.RedisCacheTTL, cfg.Log)

	vehicleRepo := vehiclerepo.NewMongoVehicleRepository(cfg)
	vehicleSvc := vehicleservice.NewVehicleService(
		vehicleRepo,
		vehiclevalidator.NewVehicleValidator(cfg.Log),
		vehicleCache,
		cfg,
	)

	reservationRepo := reservationrepo.NewMongoReservationRepository(cfg)
	reservationSvc := reservationservice.NewReservationService(
		reservationRepo,
		vehicleRepo,
		intervalIndex,
		lockRegistry,
		reservationvalidator.NewReservationValidator(cfg.Log),
		initPublisher(cfg),
		cfg,
	)

	searchSvc := searchservice.NewSearchService(vehicleRepo, intervalIndex, vehicleCache, cfg)

	cfg.Log.Info("Rental services initialized", "database", cfg.MongoDatabaseName)
	return reservationSvc, vehicleSvc, searchSvc
}

// initPublisher wires the Kafka producer when brokers are configured.
// Event publishing is optional; the booking path works without it.
func initPublisher(cfg *config.Config) reservationservice.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, event publishing disabled")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return producer
}
