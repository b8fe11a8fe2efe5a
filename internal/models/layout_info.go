package models

import "time"

// LayoutInfo represents metadata about a saved layout file.
type LayoutInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	SavedAt      time.Time `json:"savedAt"`
	ElementCount int       `json:"elementCount"`
}
