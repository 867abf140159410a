package models

// Category is a named tag with a display color.
type Category struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

// CategoryStats aggregates pins and visits of one category.
type CategoryStats struct {
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
	Pins     int64  `json:"pins"`
	Visits   int64  `json:"visits"`
}

// Stats is the dashboard summary over all pins.
type Stats struct {
	TotalPins   int64           `json:"totalPins"`
	TotalVisits int64           `json:"totalVisits"`
	ByCategory  []CategoryStats `json:"byCategory"`
}
