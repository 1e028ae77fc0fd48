package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestAuthorize_RoleGate(t *testing.T) {
	assert.ErrorIs(t, Authorize(RoleCitizen, nil, nil), ErrForbidden)
	assert.ErrorIs(t, Authorize("", nil, nil), ErrForbidden)
	assert.ErrorIs(t, Authorize("manager", nil, nil), ErrForbidden)

	assert.NoError(t, Authorize(RoleWorker, nil, nil))
	assert.NoError(t, Authorize(RoleAdmin, nil, nil))
}

func TestAuthorize_WardScoping(t *testing.T) {
	assert.NoError(t, Authorize(RoleWorker, intPtr(4), intPtr(4)))
	assert.ErrorIs(t, Authorize(RoleWorker, intPtr(4), intPtr(7)), ErrWardMismatch)
}

func TestAuthorize_WardlessCallerActsAnywhere(t *testing.T) {
	// worker not yet ward-provisioned: scoping is skipped
	assert.NoError(t, Authorize(RoleWorker, nil, intPtr(7)))
}

func TestAuthorize_WardlessHousehold(t *testing.T) {
	// household ward still unset (geocoding pending): no mismatch
	assert.NoError(t, Authorize(RoleWorker, intPtr(4), nil))
}

func TestCanActOn(t *testing.T) {
	assert.True(t, CanActOn(RoleAdmin, nil, intPtr(3)))
	assert.False(t, CanActOn(RoleWorker, intPtr(1), intPtr(2)))
	assert.False(t, CanActOn(RoleCitizen, nil, nil))
}
