package models

import "time"

// Visit is a timestamped field report attached to exactly one pin.
type Visit struct {
	ID        int64     `json:"id"`
	PinID     int64     `json:"pinId"`
	Name      string    `json:"name"`
	Note      string    `json:"note,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	VisitedAt time.Time `json:"visitedAt"`
}

// NewVisit carries the fields of a visit to be recorded. A nil VisitedAt
// means "now".
type NewVisit struct {
	Name      string `validate:"required"`
	Note      string
	ImageURL  string
	VisitedAt *time.Time
}

// VisitPatch is a partial update: nil fields keep their stored values.
type VisitPatch struct {
	Name     *string `validate:"omitnil,min=1"`
	Note     *string
	ImageURL *string
}
