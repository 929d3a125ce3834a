package model

import "time"

type Vehicle struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Make          string     `json:"make" bson:"make" validate:"required,min=1,max=60"`
	Model         string     `json:"model" bson:"model" validate:"required,min=1,max=60"`
	Category      string     `json:"category" bson:"category" validate:"required,min=2,max=40"`
	PricePerDay   float64    `json:"price_per_day" bson:"price_per_day" validate:"gte=0"`
	ImageURL      string     `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,max=500"`
	Color         string     `json:"color,omitempty" bson:"color,omitempty" validate:"omitempty,max=30"`
	Active        bool       `json:"active" bson:"active"`
	AvailableFrom *time.Time `json:"available_from,omitempty" bson:"available_from,omitempty"`
	AvailableTo   *time.Time `json:"available_to,omitempty" bson:"available_to,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// OperatingWindow returns the half-open window the vehicle may be booked
// within, or nil when neither bound is declared. An unbounded side is
// widened to the far past/future so Covers works unchanged.
func (v *Vehicle) OperatingWindow() *Interval {
	if v.AvailableFrom == nil && v.AvailableTo == nil {
		return nil
	}
	window := Interval{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if v.AvailableFrom != nil {
		window.Start = *v.AvailableFrom
	}
	if v.AvailableTo != nil {
		window.End = *v.AvailableTo
	}
	return &window
}

type VehicleUpdate struct {
	Make          *string    `json:"make,omitempty" validate:"omitempty,min=1,max=60"`
	Model         *string    `json:"model,omitempty" validate:"omitempty,min=1,max=60"`
	Category      *string    `json:"category,omitempty" validate:"omitempty,min=2,max=40"`
	PricePerDay   *float64   `json:"price_per_day,omitempty" validate:"omitempty,gte=0"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,max=500"`
	Color         *string    `json:"color,omitempty" validate:"omitempty,max=30"`
	Active        *bool      `json:"active,omitempty"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
	AvailableTo   *time.Time `json:"available_to,omitempty"`
}

// VehicleSummary is the storefront projection returned by search.
type VehicleSummary struct {
	ID          string  `json:"id"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Category    string  `json:"category"`
	PricePerDay float64 `json:"price_per_day"`
	ImageURL    string  `json:"image_url,omitempty"`
	Color       string  `json:"color,omitempty"`
}

func (v *Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:          v.ID,
		Make:        v.Make,
		Model:       v.Model,
		Category:    v.Category,
		PricePerDay: v.PricePerDay,
		ImageURL:    v.ImageURL,
		Color:       v.Color,
	}
}

// VehicleFacets feeds the storefront's brand and category dropdowns.
type VehicleFacets struct {
	Makes      []string `json:"makes"`
	Categories []string `json:"categories"`
}
