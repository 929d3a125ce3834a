package service

import (
	"context"
	"errors"
	"sync"

	vehicleerrors "carbook/internal/vehicles/errors"
	"carbook/internal/vehicles/repository"
	"carbook/internal/vehicles/validator"
	"carbook/pkg/config"
	apperrors "carbook/pkg/errors"
	"carbook/pkg/model"
)

// FleetCache is notified after every fleet write so cached search
// snapshots never outlive a change. A nil cache is a no-op.
type FleetCache interface {
	Invalidate(ctx context.Context)
}

type VehicleService interface {
	Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, update *model.VehicleUpdate) (*model.Vehicle, error)
	Deactivate(ctx context.Context, id string) error
	Facets(ctx context.Context) (*model.VehicleFacets, error)
}

type vehicleService struct {
	repo      repository.VehicleRepository
	validator *validator.VehicleValidator
	cache     FleetCache
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	vehicleValidator *validator.VehicleValidator,
	fleetCache FleetCache,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		validator: vehicleValidator,
		cache:     fleetCache,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	// New listings start bookable; deactivation is an explicit admin act.
	vehicle.ID = ""
	vehicle.Active = true

	if err := s.validator.Validate(vehicle); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed", "error", err)
		return nil, apperrors.Validation("Vehicle validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		s.cfg.Log.Error("Failed to create vehicle", "make", vehicle.Make, "model", vehicle.Model, "error", err)
		return nil, apperrors.Internal("Failed to create vehicle", err)
	}

	s.invalidateCache(ctx)
	s.cfg.Log.Info("Vehicle created", "id", vehicle.ID, "make", vehicle.Make, "model", vehicle.Model)
	return vehicle, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	return s.findByID(ctx, id)
}

func (s *vehicleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

// Update applies the provided fields on top of the stored vehicle and
// re-validates the merged result before persisting.
func (s *vehicleService) Update(ctx context.Context, id string, update *model.VehicleUpdate) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Vehicle update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Vehicle validation failed", map[string]any{"error": err.Error()})
	}

	vehicle, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(vehicle, update)

	if err := s.validator.Validate(vehicle); err != nil {
		s.cfg.Log.Warn("Vehicle update produced an invalid vehicle", "id", id, "error", err)
		return nil, apperrors.Validation("Vehicle validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, vehicle); err != nil {
		if errors.Is(err, vehicleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to update vehicle", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update vehicle", err)
	}

	s.invalidateCache(ctx)
	s.cfg.Log.Info("Vehicle updated", "id", id)
	return vehicle, nil
}

// Deactivate pulls a vehicle from the bookable fleet without touching
// its existing reservations.
func (s *vehicleService) Deactivate(ctx context.Context, id string) error {
	vehicle, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !vehicle.Active {
		return nil
	}

	vehicle.Active = false
	if err := s.repo.Update(ctx, id, vehicle); err != nil {
		if errors.Is(err, vehicleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to deactivate vehicle", "id", id, "error", err)
		return apperrors.Internal("Failed to deactivate vehicle", err)
	}

	s.invalidateCache(ctx)
	s.cfg.Log.Info("Vehicle deactivated", "id", id)
	return nil
}

func (s *vehicleService) Facets(ctx context.Context) (*model.VehicleFacets, error) {
	facets, err := s.repo.Facets(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load vehicle facets", "error", err)
		return nil, apperrors.Internal("Failed to load vehicle facets", err)
	}
	return facets, nil
}

// --- Helpers ---

func (s *vehicleService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *vehicleService) findByID(ctx context.Context, id string) (*model.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, vehicleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}
	return vehicle, nil
}

func applyUpdate(vehicle *model.Vehicle, update *model.VehicleUpdate) {
	if update.Make != nil {
		vehicle.Make = *update.Make
	}
	if update.Model != nil {
		vehicle.Model = *update.Model
	}
	if update.Category != nil {
		vehicle.Category = *update.Category
	}
	if update.PricePerDay != nil {
		vehicle.PricePerDay = *update.PricePerDay
	}
	if update.ImageURL != nil {
		vehicle.ImageURL = *update.ImageURL
	}
	if update.Color != nil {
		vehicle.Color = *update.Color
	}
	if update.Active != nil {
		vehicle.Active = *update.Active
	}
	if update.AvailableFrom != nil {
		vehicle.AvailableFrom = update.AvailableFrom
	}
	if update.AvailableTo != nil {
		vehicle.AvailableTo = update.AvailableTo
	}
}
