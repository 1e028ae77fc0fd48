package models

import (
	"time"

	"wastewise-backend/pkg/geo"
)

// Verification statuses for a household anchor.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// SchemaVersionScheduled marks household rows that carry the pickup
// schedule columns. Rows below this version predate schedule tracking
// and report "not provisioned" instead of an empty schedule.
const SchemaVersionScheduled = 2

type Household struct {
	ID                  string   `json:"id" db:"id"`
	UserID              string   `json:"user_id" db:"user_id"`
	Nickname            *string  `json:"nickname" db:"nickname"`
	ManualAddress       *string  `json:"manual_address" db:"manual_address"`
	GeocodedAddress     *string  `json:"geocoded_address" db:"geocoded_address"`
	Location            *string  `json:"-" db:"location"` // raw wire format; geo.Decode normalizes
	WardNumber          *int     `json:"ward_number" db:"ward_number"`
	VerificationStatus  string   `json:"verification_status" db:"verification_status"`
	AnchoredBy          *string  `json:"anchored_by" db:"anchored_by"`
	AnchoredAt          *int64   `json:"anchored_at" db:"anchored_at"` // Unix timestamp
	RejectionReason     *string  `json:"rejection_reason" db:"rejection_reason"`
	WasteReady          bool     `json:"waste_ready" db:"waste_ready"`
	PickupFrequencyDays int      `json:"pickup_frequency_days" db:"pickup_frequency_days"`
	LastPickupAt        *int64   `json:"last_pickup_at" db:"last_pickup_at"` // Unix timestamp
	NextPickupAt        *int64   `json:"next_pickup_at" db:"next_pickup_at"` // Unix timestamp
	SchemaVersion       int      `json:"-" db:"schema_version"`
	LocationUpdatedAt   *int64   `json:"location_updated_at" db:"location_updated_at"`
	CreatedAt           int64    `json:"created_at" db:"created_at"`
	UpdatedAt           int64    `json:"updated_at" db:"updated_at"`
}

// Provisioned reports whether the row carries schedule tracking.
func (h *Household) Provisioned() bool {
	return h.SchemaVersion >= SchemaVersionScheduled
}

// Anchor decodes the stored location. Zero point means no valid
// anchor.
func (h *Household) Anchor() geo.Point {
	return geo.Decode(h.Location)
}

// HouseholdResponse is the worker-facing household shape: location
// decoded to lat/lng, timestamps in ISO form.
type HouseholdResponse struct {
	ID                  string   `json:"id"`
	UserID              string   `json:"user_id"`
	Nickname            *string  `json:"nickname"`
	ManualAddress       *string  `json:"manual_address"`
	GeocodedAddress     *string  `json:"geocoded_address"`
	WardNumber          *int     `json:"ward_number"`
	VerificationStatus  string   `json:"verification_status"`
	RejectionReason     *string  `json:"rejection_reason,omitempty"`
	WasteReady          bool     `json:"waste_ready"`
	PickupFrequencyDays int      `json:"pickup_frequency_days"`
	LastPickupIso       *string  `json:"lastPickupIso,omitempty"`
	NextPickupIso       *string  `json:"nextPickupIso,omitempty"`
	Lat                 float64  `json:"lat"`
	Lng                 float64  `json:"lng"`
	HasLocation         bool     `json:"has_location"`
	CreatedAt           int64    `json:"created_at"`
}

// ToHouseholdResponse converts a Household to HouseholdResponse
func (h *Household) ToHouseholdResponse() HouseholdResponse {
	resp := HouseholdResponse{
		ID:                  h.ID,
		UserID:              h.UserID,
		Nickname:            h.Nickname,
		ManualAddress:       h.ManualAddress,
		GeocodedAddress:     h.GeocodedAddress,
		WardNumber:          h.WardNumber,
		VerificationStatus:  h.VerificationStatus,
		RejectionReason:     h.RejectionReason,
		WasteReady:          h.WasteReady,
		PickupFrequencyDays: h.PickupFrequencyDays,
		CreatedAt:           h.CreatedAt,
	}

	if h.LastPickupAt != nil {
		iso := time.Unix(*h.LastPickupAt, 0).UTC().Format(time.RFC3339)
		resp.LastPickupIso = &iso
	}
	if h.NextPickupAt != nil {
		iso := time.Unix(*h.NextPickupAt, 0).UTC().Format(time.RFC3339)
		resp.NextPickupIso = &iso
	}

	anchor := h.Anchor()
	resp.Lat = anchor.Lat
	resp.Lng = anchor.Lng
	resp.HasLocation = !anchor.IsZero()

	return resp
}

// ScheduleResponse is the citizen-facing pickup schedule projection.
type ScheduleResponse struct {
	HouseholdID         string  `json:"household_id"`
	PickupFrequencyDays int     `json:"pickup_frequency_days"`
	LastPickupIso       *string `json:"last_pickup_at"`
	NextPickupIso       *string `json:"next_pickup_at"`
	DaysSinceLast       *int    `json:"days_since_last_pickup"`
	DaysUntilNext       *int    `json:"days_until_next_pickup"`
	Overdue             bool    `json:"overdue"`
}
