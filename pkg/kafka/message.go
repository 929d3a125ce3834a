package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"carbook/pkg/model"
)

// Message is a produced event with metadata.
type Message struct {
	Key       string            // partition key; vehicle ID so per-vehicle ordering holds
	Value     []byte            // JSON-encoded payload
	Headers   map[string]string

	Timestamp time.Time
}

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"

	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is the payload published on reservation lifecycle
// transitions. Downstream consumers (notifications, analytics) are
// external to this service.
type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	VehicleID     string    `json:"vehicle_id"`
	RenterID      string    `json:"renter_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationMessage(eventType string, r *model.Reservation) (Message, error) {
	payload := ReservationEvent{
		EventType:     eventType,
		ReservationID: r.ID,
		VehicleID:     r.VehicleID,
		RenterID:      r.RenterID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Version:       r.Version,
		OccurredAt:    time.Now().UTC(),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Key:   r.VehicleID,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:   uuid.NewString(),
			HeaderEventType: eventType,
		},
		Timestamp: payload.OccurredAt,
	}, nil
}
