package dto

import (
	"time"

	"github.com/google/uuid"
)

// MapPoint is a single resolved report plotted on the violations map.
// Only verified (resolved) reports with coordinates are shown.
type MapPoint struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	LocationName string    `json:"location_name,omitempty"`
	ReportedAt   time.Time `json:"reported_at"`
}

type MapResponse struct {
	Points     []MapPoint       `json:"points"`
	ByCategory map[string]int64 `json:"by_category"`
	Total      int64            `json:"total"`
}
