// Package handshake implements the proximity-gated verification
// decision for household anchors. A worker standing at the anchor
// promotes a pending household to verified; rejection flags a bad
// anchor and is allowed from any distance.
package handshake

import (
	"errors"
	"fmt"
	"math"

	"wastewise-backend/pkg/geo"
)

// MaxDistanceMeters is how close a worker must be to verify an
// anchor. Verification fixes the household location as ground truth
// for routing, so it demands physical presence; rejection does not.
const MaxDistanceMeters = 50

// DefaultRejectionReason is stamped when a worker rejects without
// giving a reason.
const DefaultRejectionReason = "Rejected by worker"

// Verification statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Action is what the worker is attempting.
type Action string

const (
	ActionVerify Action = "verify"
	ActionReject Action = "reject"
)

// ErrNoLocation means the household has no decodable anchor, so there
// is nothing to measure against.
var ErrNoLocation = errors.New("household has no valid location")

// ErrInvalidAction is returned for an action other than verify/reject.
var ErrInvalidAction = errors.New(`action must be "verify" or "reject"`)

// StateError reports an attempt against a household that already left
// the pending state.
type StateError struct {
	Status string // current verification status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("household already %s", e.Status)
}

// ProximityError reports a verify attempt from too far away. The
// measured distance is kept so the caller can tell the worker how
// much closer to move.
type ProximityError struct {
	DistanceMeters int
}

func (e *ProximityError) Error() string {
	return fmt.Sprintf("too far from household: %dm away, must be within %dm",
		e.DistanceMeters, MaxDistanceMeters)
}

// Outcome is the decided transition.
type Outcome struct {
	Status          string // verified or rejected
	DistanceMeters  int    // rounded to the nearest meter
	RejectionReason string // set only for rejections
}

// Evaluate decides a verify/reject attempt against a household's
// current state. It is pure: the caller is responsible for applying
// the outcome with a conditional update on status still being
// pending.
func Evaluate(currentStatus string, anchor geo.Point, workerLat, workerLng float64, action Action, reason string) (Outcome, error) {
	if action != ActionVerify && action != ActionReject {
		return Outcome{}, ErrInvalidAction
	}

	if currentStatus != StatusPending {
		return Outcome{}, &StateError{Status: currentStatus}
	}

	if anchor.IsZero() {
		return Outcome{}, ErrNoLocation
	}

	distance := geo.HaversineMeters(workerLat, workerLng, anchor.Lat, anchor.Lng)
	rounded := int(math.Round(distance))

	if action == ActionVerify {
		if distance > MaxDistanceMeters {
			return Outcome{}, &ProximityError{DistanceMeters: rounded}
		}
		return Outcome{Status: StatusVerified, DistanceMeters: rounded}, nil
	}

	// Rejection is allowed from any distance: an obviously wrong pin
	// can be judged remotely.
	if reason == "" {
		reason = DefaultRejectionReason
	}
	return Outcome{
		Status:          StatusRejected,
		DistanceMeters:  rounded,
		RejectionReason: reason,
	}, nil
}
