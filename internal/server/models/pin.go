// Package models defines the server-side records persisted by both storage
// backends and the input shapes accepted by the pin service.
package models

import "time"

// Pin is a geotagged point of interest.
//
// Version starts at 1 and grows by exactly one per successful write to the
// pin or any of its visits. VisitsCount is maintained by the database.
type Pin struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int64     `json:"version"`
	VisitsCount int64     `json:"visitsCount"`
}

// NewPin carries the caller-supplied fields of a pin to be created.
type NewPin struct {
	Title       string  `validate:"required"`
	Description string
	Lat         float64 `validate:"gte=-90,lte=90"`
	Lng         float64 `validate:"gte=-180,lte=180"`
	Category    string  `validate:"required"`
	ImageURL    string
}

// PinUpdate replaces the mutable fields of a pin. When ExpectedUpdatedAt is
// set the update only applies if it still matches the stored value.
type PinUpdate struct {
	Title             string `validate:"required"`
	Description       string
	Category          string `validate:"required"`
	ImageURL          string
	ExpectedUpdatedAt *time.Time
}

// PinWithVisits is a pin together with its most recent visits.
type PinWithVisits struct {
	Pin    Pin     `json:"pin"`
	Visits []Visit `json:"visits"`
}
