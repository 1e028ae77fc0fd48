// Package authz is the role/ward gate for field actions on
// households. Only workers and admins act on households, and a
// ward-assigned worker only inside their own ward.
package authz

import "errors"

// Roles recognized by the platform.
const (
	RoleCitizen = "citizen"
	RoleWorker  = "worker"
	RoleAdmin   = "admin"
)

// ErrForbidden means the caller's role cannot act on households.
var ErrForbidden = errors.New("worker access only")

// ErrWardMismatch means the household lies outside the caller's
// assigned ward.
var ErrWardMismatch = errors.New("household is not in your assigned ward")

// Authorize checks whether a caller may act on a household. A caller
// without an assigned ward may act anywhere; this is the fallback for
// workers not yet ward-provisioned, not an oversight to tighten here.
func Authorize(callerRole string, callerWard, householdWard *int) error {
	if callerRole != RoleWorker && callerRole != RoleAdmin {
		return ErrForbidden
	}
	if callerWard != nil && householdWard != nil && *callerWard != *householdWard {
		return ErrWardMismatch
	}
	return nil
}

// CanActOn reports whether the caller may see or act on a household
// in the given ward. Used as a list filter so households from other
// wards never leak into responses.
func CanActOn(callerRole string, callerWard, householdWard *int) bool {
	return Authorize(callerRole, callerWard, householdWard) == nil
}
