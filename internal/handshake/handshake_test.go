package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastewise-backend/pkg/geo"
)

var anchor = geo.Point{Lat: 8.891, Lng: 76.614}

func TestEvaluate_VerifyAtAnchor(t *testing.T) {
	out, err := Evaluate(StatusPending, anchor, anchor.Lat, anchor.Lng, ActionVerify, "")
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, out.Status)
	assert.Equal(t, 0, out.DistanceMeters)
	assert.Empty(t, out.RejectionReason)
}

func TestEvaluate_VerifyWithinThreshold(t *testing.T) {
	// ~49.5 m north of the anchor
	out, err := Evaluate(StatusPending, anchor, anchor.Lat+0.000445, anchor.Lng, ActionVerify, "")
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, out.Status)
	assert.Equal(t, 49, out.DistanceMeters)
}

func TestEvaluate_VerifyBoundaryInclusive(t *testing.T) {
	// ~49.93 m: rounds to 50, still within the inclusive threshold
	out, err := Evaluate(StatusPending, anchor, anchor.Lat+0.000449, anchor.Lng, ActionVerify, "")
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, out.Status)
	assert.Equal(t, 50, out.DistanceMeters)
}

func TestEvaluate_VerifyTooFar(t *testing.T) {
	// ~50.93 m: just past the threshold
	_, err := Evaluate(StatusPending, anchor, anchor.Lat+0.000458, anchor.Lng, ActionVerify, "")
	var pErr *ProximityError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 51, pErr.DistanceMeters)
}

func TestEvaluate_RejectFromAnyDistance(t *testing.T) {
	// ~10 km away: rejection carries no proximity check
	out, err := Evaluate(StatusPending, anchor, anchor.Lat+0.09, anchor.Lng, ActionReject, "wrong pin")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "wrong pin", out.RejectionReason)
	assert.Greater(t, out.DistanceMeters, 9000)
}

func TestEvaluate_RejectDefaultReason(t *testing.T) {
	out, err := Evaluate(StatusPending, anchor, anchor.Lat, anchor.Lng, ActionReject, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRejectionReason, out.RejectionReason)
}

func TestEvaluate_AlreadyVerified(t *testing.T) {
	_, err := Evaluate(StatusVerified, anchor, anchor.Lat, anchor.Lng, ActionVerify, "")
	var sErr *StateError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, StatusVerified, sErr.Status)

	// distance is irrelevant: same failure far away
	_, err = Evaluate(StatusRejected, anchor, anchor.Lat+1, anchor.Lng, ActionVerify, "")
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, StatusRejected, sErr.Status)
}

func TestEvaluate_NoAnchor(t *testing.T) {
	_, err := Evaluate(StatusPending, geo.Point{}, 8.891, 76.614, ActionVerify, "")
	assert.ErrorIs(t, err, ErrNoLocation)

	// rejection also needs a decodable anchor to act on
	_, err = Evaluate(StatusPending, geo.Point{}, 8.891, 76.614, ActionReject, "")
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestEvaluate_InvalidAction(t *testing.T) {
	_, err := Evaluate(StatusPending, anchor, anchor.Lat, anchor.Lng, Action("approve"), "")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
