package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/authz"
	"wastewise-backend/internal/handshake"
	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/internal/services"
	"wastewise-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// VerifyRequest is the request body for POST /api/worker/verify
type VerifyRequest struct {
	HouseholdID string  `json:"household_id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Action      string  `json:"action"` // verify | reject
	Reason      string  `json:"reason,omitempty"`
}

// AttemptVerify handles the worker-side proximity handshake. The
// decision itself is pure (handshake.Evaluate); this handler applies
// it with a conditional update so concurrent attempts on the same
// household resolve to exactly one winner.
func AttemptVerify(db *sqlx.DB, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.HouseholdID == "" {
			utils.RespondError(w, http.StatusBadRequest, "household_id is required")
			return
		}

		caller, err := getProfile(db, userClaims.UserID)
		if err != nil {
			log.Printf("❌ Caller profile fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch caller profile")
			return
		}

		var household models.Household
		err = db.Get(&household, "SELECT * FROM households WHERE id = $1", req.HouseholdID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Household not found")
			return
		}
		if err != nil {
			log.Printf("❌ Household fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch household")
			return
		}

		if err := authz.Authorize(caller.Role, caller.WardNumber, household.WardNumber); err != nil {
			if errors.Is(err, authz.ErrWardMismatch) {
				utils.RespondError(w, http.StatusForbidden, "Household is outside your assigned ward")
				return
			}
			utils.RespondError(w, http.StatusForbidden, "Worker access only")
			return
		}

		outcome, err := evaluateAndApply(db, &household, userClaims.UserID, req)
		if err == nil {
			log.Printf("✅ Household %s %s by %s (%dm)", household.ID, outcome.Status, userClaims.Email, outcome.DistanceMeters)
			notifyVerificationResult(db, fcm, &household, outcome)
			utils.RespondData(w, map[string]interface{}{
				"household_id":        household.ID,
				"verification_status": outcome.Status,
				"distance_meters":     outcome.DistanceMeters,
			})
			return
		}

		var stateErr *handshake.StateError
		var proxErr *handshake.ProximityError
		switch {
		case errors.As(err, &stateErr):
			utils.RespondError(w, http.StatusConflict, stateErr.Error())
		case errors.As(err, &proxErr):
			utils.RespondJSON(w, http.StatusForbidden, map[string]interface{}{
				"success":         false,
				"error":           proxErr.Error(),
				"distance_meters": proxErr.DistanceMeters,
			})
		case errors.Is(err, handshake.ErrNoLocation):
			utils.RespondError(w, http.StatusUnprocessableEntity, "Household has no valid location")
		case errors.Is(err, handshake.ErrInvalidAction):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errConcurrentVerify):
			utils.RespondError(w, http.StatusConflict, "Household was updated concurrently, please retry")
		default:
			log.Printf("❌ Verification update error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update verification status")
		}
	}
}

var errConcurrentVerify = errors.New("concurrent verification update")

// evaluateAndApply runs the handshake decision and commits it with a
// status-guarded update. A lost race re-reads the row: if the status
// moved past pending the caller gets a StateError, otherwise one
// retry before giving up.
func evaluateAndApply(db *sqlx.DB, household *models.Household, workerID string, req VerifyRequest) (handshake.Outcome, error) {
	for attempt := 0; attempt < 2; attempt++ {
		outcome, err := handshake.Evaluate(
			household.VerificationStatus,
			household.Anchor(),
			req.Lat, req.Lng,
			handshake.Action(req.Action),
			req.Reason,
		)
		if err != nil {
			return handshake.Outcome{}, err
		}

		now := time.Now().Unix()
		var res sql.Result
		if outcome.Status == handshake.StatusVerified {
			res, err = db.Exec(`
				UPDATE households
				SET verification_status = 'verified',
				    anchored_by = $1,
				    anchored_at = $2,
				    rejection_reason = NULL,
				    updated_at = $2
				WHERE id = $3 AND verification_status = 'pending'
			`, workerID, now, household.ID)
		} else {
			res, err = db.Exec(`
				UPDATE households
				SET verification_status = 'rejected',
				    rejection_reason = $1,
				    anchored_by = $2,
				    anchored_at = NULL,
				    updated_at = $3
				WHERE id = $4 AND verification_status = 'pending'
			`, outcome.RejectionReason, workerID, now, household.ID)
		}
		if err != nil {
			return handshake.Outcome{}, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return handshake.Outcome{}, err
		}
		if affected == 1 {
			return outcome, nil
		}

		// Lost the race: reload and let Evaluate re-judge the state.
		if err := db.Get(household, "SELECT * FROM households WHERE id = $1", household.ID); err != nil {
			return handshake.Outcome{}, err
		}
	}
	return handshake.Outcome{}, errConcurrentVerify
}

// notifyVerificationResult pushes the handshake outcome to the
// citizen's devices. Push failures never fail the verification.
func notifyVerificationResult(db *sqlx.DB, fcm *services.FCMService, household *models.Household, outcome handshake.Outcome) {
	if fcm == nil {
		return
	}

	var tokens []string
	if err := db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", household.UserID); err != nil {
		log.Printf("⚠️ FCM token lookup failed for %s: %v", household.UserID, err)
		return
	}

	for _, token := range tokens {
		if err := fcm.SendVerificationResultNotification(token, household.ID, outcome.Status, outcome.RejectionReason); err != nil {
			log.Printf("⚠️ FCM send failed: %v", err)
		}
	}
}
