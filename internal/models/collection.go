package models

import (
	"time"

	"github.com/lib/pq"
)

// WasteTypes accepted on a collection record.
var ValidWasteTypes = map[string]bool{
	"wet":        true,
	"dry":        true,
	"hazardous":  true,
	"recyclable": true,
	"e-waste":    true,
}

// Collection is one immutable pickup event. Rows are append-only:
// created by the collect endpoint, never updated or deleted.
type Collection struct {
	ID           string         `json:"id" db:"id"`
	HouseholdID  string         `json:"household_id" db:"household_id"`
	WorkerID     string         `json:"worker_id" db:"worker_id"`
	CitizenID    string         `json:"citizen_id" db:"citizen_id"`
	WasteTypes   pq.StringArray `json:"waste_types" db:"waste_types"`
	WeightKg     *float64       `json:"weight_kg" db:"weight_kg"`
	Notes        *string        `json:"notes" db:"notes"`
	CollectedLat *float64       `json:"collected_lat" db:"collected_lat"`
	CollectedLng *float64       `json:"collected_lng" db:"collected_lng"`
	CreatedAt    int64          `json:"created_at" db:"created_at"` // Unix timestamp
}

// CollectionResponse is what we send to the client
type CollectionResponse struct {
	ID           string   `json:"id"`
	HouseholdID  string   `json:"household_id"`
	WorkerID     string   `json:"worker_id"`
	WasteTypes   []string `json:"waste_types"`
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	CollectedIso string   `json:"collectedIso"`
}

// ToCollectionResponse converts a Collection to CollectionResponse
func (c *Collection) ToCollectionResponse() CollectionResponse {
	return CollectionResponse{
		ID:           c.ID,
		HouseholdID:  c.HouseholdID,
		WorkerID:     c.WorkerID,
		WasteTypes:   []string(c.WasteTypes),
		WeightKg:     c.WeightKg,
		Notes:        c.Notes,
		CollectedIso: time.Unix(c.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}
