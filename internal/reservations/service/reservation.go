package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	reserrors "carbook/internal/reservations/errors"
	"carbook/internal/reservations/index"
	"carbook/internal/reservations/lock"
	"carbook/internal/reservations/repository"
	"carbook/internal/reservations/validator"
	vehicleerrors "carbook/internal/vehicles/errors"
	vehiclerepo "carbook/internal/vehicles/repository"
	"carbook/pkg/config"
	apperrors "carbook/pkg/errors"
	"carbook/pkg/kafka"
	"carbook/pkg/model"
)

type CancelOutcome string

const (
	OutcomeCancelled        CancelOutcome = "cancelled"
	OutcomeAlreadyCancelled CancelOutcome = "already_cancelled"
)

// EventPublisher emits reservation lifecycle events. A nil publisher
// disables publishing entirely.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReservationService interface {
	Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) (CancelOutcome, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	RebuildIndex(ctx context.Context) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	vehicles  vehiclerepo.VehicleRepository
	index     *index.Index
	locks     *lock.Registry
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	vehicles vehiclerepo.VehicleRepository,
	idx *index.Index,
	locks *lock.Registry,
	reservationValidator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		vehicles:  vehicles,
		index:     idx,
		locks:     locks,
		validator: reservationValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Reserve validates and commits a booking. The overlap check, the index
// insert and the durable write all happen while holding the vehicle's
// exclusive lock, so two concurrent attempts can never both pass the
// check before either commits.
func (s *reservationService) Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	iv := req.Interval()
	if !iv.IsValid() {
		return nil, apperrors.InvalidRange("start date must be before end date")
	}

	vehicle, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, vehicleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", req.VehicleID)
		}
		if errors.Is(err, vehicleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to look up vehicle", err)
	}
	if !vehicle.Active {
		return nil, apperrors.Inactive(vehicle.ID)
	}
	if window := vehicle.OperatingWindow(); window != nil && !window.Covers(iv) {
		return nil, apperrors.InvalidRange("requested dates fall outside the vehicle's operating window")
	}

	release, err := s.acquireVehicleLock(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	defer release()

	// The caller may have gone away while we waited for the lock;
	// aborting here leaves no partial interval inserted.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Timeout("Booking attempt aborted before commit")
	}

	if s.index.Overlaps(req.VehicleID, iv) {
		return nil, apperrors.Conflict("These dates are already booked for this vehicle")
	}
	if err := s.index.Insert(req.VehicleID, iv); err != nil {
		return nil, apperrors.Conflict("These dates are already booked for this vehicle")
	}

	reservation := &model.Reservation{
		ID:        uuid.NewString(),
		VehicleID: req.VehicleID,
		RenterID:  req.RenterID,
		StartDate: iv.Start,
		EndDate:   iv.End,
		Status:    model.ReservationConfirmed,
		Version:   1,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The in-process lock covers a single instance; the store-level
		// re-check closes the race across instances.
		existing, err := s.repo.FindConfirmedOverlapping(sessCtx, req.VehicleID, iv)
		if err != nil {
			return apperrors.Internal("Failed to check existing reservations", err)
		}
		if len(existing) > 0 {
			return apperrors.Conflict("These dates are already booked for this vehicle")
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to persist reservation", err)
		}
		return nil
	})
	if err != nil {
		// Roll the speculative index entry back out; the booking never
		// became durable.
		if rmErr := s.index.Remove(req.VehicleID, iv); rmErr != nil {
			s.cfg.Log.Error("Failed to roll back index entry",
				"vehicle_id", req.VehicleID,
				"error", rmErr,
			)
		}
		s.cfg.Log.Error("Failed to commit reservation", "vehicle_id", req.VehicleID, "error", err)
		return nil, apperrors.AsAppError(err)
	}

	s.publishEvent(kafka.EventReservationConfirmed, reservation)

	s.cfg.Log.Info("Reservation confirmed",
		"id", reservation.ID,
		"vehicle_id", reservation.VehicleID,
		"renter_id", reservation.RenterID,
		"start_date", reservation.StartDate,
		"end_date", reservation.EndDate,
	)
	return reservation, nil
}

// Cancel frees a reservation's interval for rebooking. Cancelling an
// already-cancelled reservation reports OutcomeAlreadyCancelled and is
// not an error.
func (s *reservationService) Cancel(ctx context.Context, id string) (CancelOutcome, error) {
	reservation, err := s.findByID(ctx, id)
	if err != nil {
		return "", err
	}
	if reservation.Status == model.ReservationCancelled {
		return OutcomeAlreadyCancelled, nil
	}

	release, err := s.acquireVehicleLock(ctx, reservation.VehicleID)
	if err != nil {
		return "", err
	}
	defer release()

	// Re-read under the lock; another call may have cancelled it while
	// we waited.
	reservation, err = s.findByID(ctx, id)
	if err != nil {
		return "", err
	}
	if reservation.Status == model.ReservationCancelled {
		return OutcomeAlreadyCancelled, nil
	}

	if err := s.repo.SetStatus(ctx, id, model.ReservationCancelled, reservation.Version+1); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return "", apperrors.NotFoundWithID("Reservation", id)
		}
		return "", apperrors.Internal("Failed to cancel reservation", err)
	}

	if rmErr := s.index.Remove(reservation.VehicleID, reservation.Interval()); rmErr != nil {
		s.cfg.Log.Error("Cancelled reservation was missing from the interval index",
			"id", id,
			"vehicle_id", reservation.VehicleID,
			"error", rmErr,
		)
	}

	reservation.Status = model.ReservationCancelled
	reservation.Version++
	s.publishEvent(kafka.EventReservationCancelled, reservation)

	s.cfg.Log.Info("Reservation cancelled", "id", id, "vehicle_id", reservation.VehicleID)
	return OutcomeCancelled, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	return s.findByID(ctx, id)
}

func (s *reservationService) ListByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if vehicleID == "" {
		return nil, 0, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByVehicle(ctx, vehicleID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "vehicle_id", vehicleID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByVehicle(ctx, vehicleID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "vehicle_id", vehicleID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// RebuildIndex replays every confirmed reservation into the interval
// index. Runs at startup before the server accepts traffic.
func (s *reservationService) RebuildIndex(ctx context.Context) error {
	reservations, err := s.repo.FindAllConfirmed(ctx)
	if err != nil {
		return apperrors.Internal("Failed to load confirmed reservations", err)
	}

	intervals := make(map[string][]model.Interval)
	for _, r := range reservations {
		intervals[r.VehicleID] = append(intervals[r.VehicleID], r.Interval())
	}

	if err := s.index.Load(intervals); err != nil {
		return apperrors.Internal("Reservation store contains overlapping confirmed bookings", err)
	}

	s.cfg.Log.Info("Interval index rebuilt",
		"reservations", len(reservations),
		"vehicles", len(intervals),
	)
	return nil
}

// --- Helpers ---

func (s *reservationService) findByID(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

func (s *reservationService) acquireVehicleLock(ctx context.Context, vehicleID string) (func(), error) {
	release, err := s.locks.Acquire(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, reserrors.ErrLockTimeout) {
			return nil, apperrors.Busy("This vehicle is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Timeout("Booking attempt aborted while waiting for vehicle access")
	}
	return release, nil
}

func (s *reservationService) publishEvent(eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewReservationMessage(eventType, reservation)
	if err != nil {
		s.cfg.Log.Error("Failed to encode reservation event", "event_type", eventType, "error", err)
		return
	}

	// Publishing is best effort: the booking already stands either way.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
