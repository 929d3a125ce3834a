package model

import "time"

const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation is the durable record of a booking. Records are never
// deleted; cancellation flips the status and bumps the version, and the
// interval index is rebuilt from confirmed rows at startup.
type Reservation struct {
	ID        string    `json:"id" bson:"_id" validate:"omitempty,uuid4"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	RenterID  string    `json:"renter_id" bson:"renter_id" validate:"required,min=1,max=64"`
	StartDate time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartDate, End: r.EndDate}
}

// ReservationRequest is the booking input accepted at the service boundary.
type ReservationRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required,mongodb"`
	RenterID  string    `json:"renter_id" validate:"required,min=1,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

func (r *ReservationRequest) Interval() Interval {
	return Interval{Start: r.StartDate.UTC(), End: r.EndDate.UTC()}
}
