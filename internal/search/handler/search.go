package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"carbook/internal/search/service"
	apperrors "carbook/pkg/errors"
	httputil "carbook/pkg/http"
	"carbook/pkg/logger"
	"carbook/pkg/model"
)

type SearchHandler struct {
	service service.SearchService
	log     *logger.Logger
}

func NewSearchHandler(service service.SearchService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		log:     log,
	}
}

type availableResponse struct {
	VehicleIDs []string `json:"vehicle_ids"`
}

// Search handles the storefront catalogue query. All parameters are
// optional; an empty query returns the first page of everything that
// is free right now.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query, err := parseSearchQuery(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	result, err := h.service.Search(r.Context(), *query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePage(w, result.Vehicles, result.TotalCount, result.Page, result.PageSize); err != nil {
		h.log.Error("failed to write page response", "handler", "Search", "error", err)
	}
}

func (h *SearchHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rng, err := parseRange(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "error", writeErr)
		}
		return
	}

	ids, err := h.service.QueryAvailable(r.Context(), rng, parseVehicleIDs(r))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availableResponse{VehicleIDs: ids}); err != nil {
		h.log.Error("failed to write success response", "handler", "Available", "error", err)
	}
}

func (h *SearchHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/vehicles/search", h.Search)
	router.GET("/api/v1/vehicles/available", h.Available)
}

// --- Helpers ---

func parseSearchQuery(r *http.Request) (*service.SearchQuery, error) {
	q := r.URL.Query()

	sortMode, ok := service.ParseSortMode(q.Get("sort"))
	if !ok {
		return nil, apperrors.InvalidInput("invalid sort parameter: must be price_asc, price_desc or none")
	}

	page, err := httputil.ParsePageParam(r)
	if err != nil {
		return nil, err
	}

	minPrice, err := httputil.ParsePriceParam(r, "min_price")
	if err != nil {
		return nil, err
	}
	maxPrice, err := httputil.ParsePriceParam(r, "max_price")
	if err != nil {
		return nil, err
	}

	rng, err := parseRange(r)
	if err != nil {
		return nil, err
	}

	return &service.SearchQuery{
		Filters: service.Filters{
			Keyword:  q.Get("keyword"),
			Make:     q.Get("make"),
			Category: q.Get("category"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
		},
		Range: rng,
		Sort:  sortMode,
		Page:  page,
	}, nil
}

// parseVehicleIDs reads the optional comma-separated candidate subset.
// Absent means "all active vehicles".
func parseVehicleIDs(r *http.Request) []string {
	raw := r.URL.Query().Get("vehicle_ids")
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseRange reads the optional start_date/end_date pair. Providing
// one without the other is rejected rather than guessed at.
func parseRange(r *http.Request) (*model.Interval, error) {
	start, err := httputil.ParseDateParam(r, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := httputil.ParseDateParam(r, "end_date")
	if err != nil {
		return nil, err
	}

	if start == nil && end == nil {
		return nil, nil
	}
	if start == nil || end == nil {
		return nil, apperrors.InvalidInput("start_date and end_date must be provided together")
	}

	iv := model.NewInterval(*start, *end)
	if !iv.IsValid() {
		return nil, apperrors.InvalidRange("start date must be before end date")
	}
	return &iv, nil
}
