package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"carbook/internal/reservations/service"
	apperrors "carbook/pkg/errors"
	httputil "carbook/pkg/http"
	"carbook/pkg/logger"
	"carbook/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

type createReservationRequest struct {
	VehicleID string `json:"vehicle_id"`
	RenterID  string `json:"renter_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type cancelResponse struct {
	Status string `json:"status"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	start, err := httputil.ParseDate(body.StartDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid start_date format, must be RFC3339 or YYYY-MM-DD")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}
	end, err := httputil.ParseDate(body.EndDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid end_date format, must be RFC3339 or YYYY-MM-DD")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	req := &model.ReservationRequest{
		VehicleID: body.VehicleID,
		RenterID:  body.RenterID,
		StartDate: start,
		EndDate:   end,
	}

	reservation, err := h.service.Reserve(r.Context(), req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	outcome, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cancelResponse{Status: string(outcome)}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) ListByVehicle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'vehicle_id' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "error", writeErr)
		}
		return
	}

	reservations, total, err := h.service.ListByVehicle(r.Context(), vehicleID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByVehicle", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.ListByVehicle)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
}
