package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"carbook/internal/search/cache"
	vehiclerepo "carbook/internal/vehicles/repository"
	"carbook/pkg/config"
	apperrors "carbook/pkg/errors"
	"carbook/pkg/model"
)

type SortMode string

const (
	SortNone      SortMode = "none"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ParseSortMode maps a query-string value onto a SortMode. An empty
// value means no sorting.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case SortNone, SortPriceAsc, SortPriceDesc:
		return SortMode(s), true
	case "":
		return SortNone, true
	default:
		return SortNone, false
	}
}

// Filters are conjunctive: a vehicle must satisfy every field that is
// set. Nil/empty fields impose no constraint.
type Filters struct {
	Keyword  string
	Make     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type SearchQuery struct {
	Filters Filters
	Range   *model.Interval
	Sort    SortMode
	Page    int
}

type SearchResult struct {
	Vehicles   []model.VehicleSummary
	TotalCount int64
	Page       int
	PageSize   int
}

// AvailabilityIndex is the read surface of the interval index.
type AvailabilityIndex interface {
	Overlaps(vehicleID string, iv model.Interval) bool
	OverlapsAt(vehicleID string, t time.Time) bool
}

type SearchService interface {
	QueryAvailable(ctx context.Context, rng *model.Interval, vehicleIDs []string) ([]string, error)
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

type searchService struct {
	vehicles vehiclerepo.VehicleRepository
	index    AvailabilityIndex
	cache    *cache.VehicleCache
	cfg      *config.Config

	// Injectable clock for the zero-width availability probe.
	now func() time.Time
}

func NewSearchService(
	vehicles vehiclerepo.VehicleRepository,
	idx AvailabilityIndex,
	vehicleCache *cache.VehicleCache,
	cfg *config.Config,
) SearchService {
	return &searchService{
		vehicles: vehicles,
		index:    idx,
		cache:    vehicleCache,
		cfg:      cfg,
		now:      time.Now,
	}
}

// QueryAvailable returns the active vehicles free for the given range.
// A nil range asks "free right now": the query instant is treated as a
// zero-width probe against each vehicle's committed intervals. Passing
// vehicleIDs restricts the candidate set to that subset.
func (s *searchService) QueryAvailable(ctx context.Context, rng *model.Interval, vehicleIDs []string) ([]string, error) {
	if rng != nil && !rng.IsValid() {
		return nil, apperrors.InvalidRange("start date must be before end date")
	}

	candidates, err := s.activeVehicles(ctx)
	if err != nil {
		return nil, err
	}
	if vehicleIDs != nil {
		subset := make(map[string]struct{}, len(vehicleIDs))
		for _, id := range vehicleIDs {
			subset[id] = struct{}{}
		}
		filtered := candidates[:0]
		for _, v := range candidates {
			if _, ok := subset[v.ID]; ok {
				filtered = append(filtered, v)
			}
		}
		candidates = filtered
	}

	available := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if s.isAvailable(v, rng) {
			available = append(available, v.ID)
		}
	}
	return available, nil
}

// Search composes availability with the catalogue filters, then sorts
// and paginates. Availability runs first so a date range prunes the
// candidate set before the cheaper predicates see it.
func (s *searchService) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	if query.Page < 1 {
		return nil, apperrors.InvalidInput("Page must be 1 or greater")
	}
	if query.Range != nil && !query.Range.IsValid() {
		return nil, apperrors.InvalidRange("start date must be before end date")
	}
	if query.Filters.MinPrice != nil && query.Filters.MaxPrice != nil &&
		*query.Filters.MinPrice > *query.Filters.MaxPrice {
		return nil, apperrors.InvalidInput("min_price cannot exceed max_price")
	}

	candidates, err := s.activeVehicles(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Vehicle, 0, len(candidates))
	for _, v := range candidates {
		if !s.isAvailable(v, query.Range) {
			continue
		}
		if !matchesFilters(v, query.Filters) {
			continue
		}
		matched = append(matched, v)
	}

	sortVehicles(matched, query.Sort)

	pageSize := s.cfg.SearchPageSize
	total := int64(len(matched))
	start := (query.Page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	summaries := make([]model.VehicleSummary, 0, end-start)
	for _, v := range matched[start:end] {
		summaries = append(summaries, v.Summary())
	}

	return &SearchResult{
		Vehicles:   summaries,
		TotalCount: total,
		Page:       query.Page,
		PageSize:   pageSize,
	}, nil
}

// --- Helpers ---

func (s *searchService) activeVehicles(ctx context.Context) ([]*model.Vehicle, error) {
	if cached := s.cache.GetActive(ctx); cached != nil {
		return cached, nil
	}

	vehicles, err := s.vehicles.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load active vehicles", "error", err)
		return nil, apperrors.Internal("Failed to load vehicles", err)
	}

	s.cache.SetActive(ctx, vehicles)
	return vehicles, nil
}

func (s *searchService) isAvailable(v *model.Vehicle, rng *model.Interval) bool {
	if rng == nil {
		return !s.index.OverlapsAt(v.ID, s.now().UTC())
	}
	if window := v.OperatingWindow(); window != nil && !window.Covers(*rng) {
		return false
	}
	return !s.index.Overlaps(v.ID, *rng)
}

func matchesFilters(v *model.Vehicle, f Filters) bool {
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(v.Make), kw) &&
			!strings.Contains(strings.ToLower(v.Model), kw) {
			return false
		}
	}
	if f.Make != "" && v.Make != f.Make {
		return false
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && v.PricePerDay < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.PricePerDay > *f.MaxPrice {
		return false
	}
	return true
}

// sortVehicles orders the result set; ties fall back to the vehicle ID
// so repeated queries page identically.
func sortVehicles(vehicles []*model.Vehicle, mode SortMode) {
	switch mode {
	case SortPriceAsc:
		sort.Slice(vehicles, func(i, j int) bool {
			if vehicles[i].PricePerDay != vehicles[j].PricePerDay {
				return vehicles[i].PricePerDay < vehicles[j].PricePerDay
			}
			return vehicles[i].ID < vehicles[j].ID
		})
	case SortPriceDesc:
		sort.Slice(vehicles, func(i, j int) bool {
			if vehicles[i].PricePerDay != vehicles[j].PricePerDay {
				return vehicles[i].PricePerDay > vehicles[j].PricePerDay
			}
			return vehicles[i].ID < vehicles[j].ID
		})
	case SortNone:
		sort.Slice(vehicles, func(i, j int) bool {
			return vehicles[i].ID < vehicles[j].ID
		})
	}
}
