package models

import "time"

// WorkerShift is an open/closed duty interval. A shift with a nil
// EndedAt is the worker's current shift; the surrounding app uses it
// to drive GPS polling, the core only reads it as a collaborator.
type WorkerShift struct {
	ID               string   `json:"id" db:"id"`
	WorkerID         string   `json:"worker_id" db:"worker_id"`
	StartedAt        int64    `json:"started_at" db:"started_at"` // Unix timestamp
	EndedAt          *int64   `json:"ended_at" db:"ended_at"`
	CollectionsCount int      `json:"collections_count" db:"collections_count"`
	LastLat          *float64 `json:"last_lat" db:"last_lat"`
	LastLng          *float64 `json:"last_lng" db:"last_lng"`
	LastSeenAt       *int64   `json:"last_seen_at" db:"last_seen_at"`
}

// Active reports whether the shift is still open.
func (s *WorkerShift) Active() bool {
	return s.EndedAt == nil
}

// Duration returns the shift length so far (or total, once ended).
func (s *WorkerShift) Duration() time.Duration {
	end := time.Now().Unix()
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	secs := end - s.StartedAt
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs) * time.Second
}

// FCMToken represents a Firebase Cloud Messaging token for a user
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
