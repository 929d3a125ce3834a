package service

import (
	"context"
	"io"
	"testing"

	vehicleerrors "carbook/internal/vehicles/errors"
	"carbook/internal/vehicles/validator"
	"carbook/pkg/config"
	apperrors "carbook/pkg/errors"
	"carbook/pkg/logger"
	"carbook/pkg/model"
)

type stubRepo struct {
	byID    map[string]*model.Vehicle
	updated *model.Vehicle
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: make(map[string]*model.Vehicle)}
}

func (s *stubRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.ID = "64f1b2c3d4e5f60718293a4b"
	copied := *v
	s.byID[v.ID] = &copied
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	v, ok := s.byID[id]
	if !ok {
		return nil, vehicleerrors.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *stubRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, error) {
	var out []*model.Vehicle
	for _, v := range s.byID {
		copied := *v
		out = append(out, &copied)
	}
	return out, nil
}

func (s *stubRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.byID)), nil
}

func (s *stubRepo) FindActive(ctx context.Context) ([]*model.Vehicle, error) {
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, id string, v *model.Vehicle) error {
	if _, ok := s.byID[id]; !ok {
		return vehicleerrors.ErrNotFound
	}
	copied := *v
	s.byID[id] = &copied
	s.updated = &copied
	return nil
}

func (s *stubRepo) Facets(ctx context.Context) (*model.VehicleFacets, error) {
	return &model.VehicleFacets{Makes: []string{"Toyota"}, Categories: []string{"compact"}}, nil
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) Invalidate(ctx context.Context) { c.invalidations++ }

func newVehicleFixture() (VehicleService, *stubRepo, *countingCache) {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log}
	repo := newStubRepo()
	cache := &countingCache{}
	svc := NewVehicleService(repo, validator.NewVehicleValidator(log), cache, cfg)
	return svc, repo, cache
}

func newVehicle() *model.Vehicle {
	return &model.Vehicle{
		Make:        "Toyota",
		Model:       "Corolla",
		Category:    "compact",
		PricePerDay: 50,
	}
}

func TestCreateActivatesVehicle(t *testing.T) {
	svc, _, cache := newVehicleFixture()

	v := newVehicle()
	v.Active = false

	created, err := svc.Create(context.Background(), v)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created.Active {
		t.Error("new vehicles should start active")
	}
	if created.ID == "" {
		t.Error("expected an assigned ID")
	}
	if cache.invalidations != 1 {
		t.Errorf("create should invalidate the fleet cache, got %d", cache.invalidations)
	}
}

func TestCreateRejectsInvalidVehicle(t *testing.T) {
	svc, _, _ := newVehicleFixture()

	v := newVehicle()
	v.Make = ""

	_, err := svc.Create(context.Background(), v)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	svc, repo, cache := newVehicleFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, newVehicle())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	price := 65.0
	updated, err := svc.Update(ctx, created.ID, &model.VehicleUpdate{PricePerDay: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.PricePerDay != 65 {
		t.Errorf("price = %v, want 65", updated.PricePerDay)
	}
	if updated.Make != "Toyota" || updated.Model != "Corolla" {
		t.Errorf("untouched fields must survive the merge: %+v", updated)
	}
	if repo.updated == nil || repo.updated.PricePerDay != 65 {
		t.Error("merged vehicle was not persisted")
	}
	if cache.invalidations != 2 {
		t.Errorf("update should invalidate the fleet cache, got %d", cache.invalidations)
	}
}

func TestUpdateRejectsInvalidMerge(t *testing.T) {
	svc, _, _ := newVehicleFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, newVehicle())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	empty := ""
	_, err = svc.Update(ctx, created.ID, &model.VehicleUpdate{Make: &empty})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateUnknownVehicle(t *testing.T) {
	svc, _, _ := newVehicleFixture()

	price := 65.0
	_, err := svc.Update(context.Background(), "64f1b2c3d4e5f60718293aff", &model.VehicleUpdate{PricePerDay: &price})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	svc, repo, _ := newVehicleFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, newVehicle())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Deactivate(ctx, created.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if repo.byID[created.ID].Active {
		t.Error("vehicle should be inactive after deactivation")
	}

	// Deactivating twice is a no-op, not an error.
	if err := svc.Deactivate(ctx, created.ID); err != nil {
		t.Errorf("second deactivate should be a no-op: %v", err)
	}
}

func TestFacets(t *testing.T) {
	svc, _, _ := newVehicleFixture()

	facets, err := svc.Facets(context.Background())
	if err != nil {
		t.Fatalf("facets failed: %v", err)
	}
	if len(facets.Makes) != 1 || facets.Makes[0] != "Toyota" {
		t.Errorf("unexpected facets: %+v", facets)
	}
}
