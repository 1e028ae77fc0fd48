package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// HouseholdStatusResponse is the citizen dashboard poll payload.
type HouseholdStatusResponse struct {
	HouseholdID        string  `json:"household_id"`
	CanSignal          bool    `json:"can_signal"`
	WardNumber         *int    `json:"ward_number"`
	Nickname           *string `json:"nickname"`
	ManualAddress      *string `json:"manual_address"`
	GeocodedAddress    *string `json:"geocoded_address"`
	VerificationStatus string  `json:"verification_status"`
	RejectionReason    *string `json:"rejection_reason,omitempty"`
	WasteReady         bool    `json:"waste_ready"`
	HasLocation        bool    `json:"has_location"`
}

// GetHouseholdStatus returns the caller's household anchor state.
func GetHouseholdStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var household models.Household
		err := db.Get(&household, "SELECT * FROM households WHERE user_id = $1", userClaims.UserID)
		if err == sql.ErrNoRows {
			// Not registered yet: empty status, client shows setup
			utils.RespondData(w, HouseholdStatusResponse{VerificationStatus: models.VerificationPending})
			return
		}
		if err != nil {
			log.Printf("❌ Household status fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch household status")
			return
		}

		hasLocation := !household.Anchor().IsZero()

		// Signaling is gated on having an anchor, not on the anchor
		// being verified.
		utils.RespondData(w, HouseholdStatusResponse{
			HouseholdID:        household.ID,
			CanSignal:          hasLocation,
			WardNumber:         household.WardNumber,
			Nickname:           household.Nickname,
			ManualAddress:      household.ManualAddress,
			GeocodedAddress:    household.GeocodedAddress,
			VerificationStatus: household.VerificationStatus,
			RejectionReason:    household.RejectionReason,
			WasteReady:         household.WasteReady,
			HasLocation:        hasLocation,
		})
	}
}

// AnchorRequest is the request body for POST /api/household/anchor
type AnchorRequest struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Nickname      *string `json:"nickname,omitempty"`
	ManualAddress *string `json:"manual_address,omitempty"`
	WardNumber    *int    `json:"ward_number,omitempty"`
}

// SetAnchor creates or re-anchors the caller's household. A
// re-anchored household drops back to pending so a worker can walk
// the handshake again.
func SetAnchor(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req AnchorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Lat == 0 && req.Lng == 0 {
			utils.RespondError(w, http.StatusBadRequest, "lat and lng are required")
			return
		}

		now := time.Now().Unix()
		location := fmt.Sprintf("POINT(%g %g)", req.Lng, req.Lat)

		var household models.Household
		err := db.Get(&household, "SELECT * FROM households WHERE user_id = $1", userClaims.UserID)
		if err == sql.ErrNoRows {
			// First anchor creates the household
			id := uuid.New().String()
			err = db.Get(&household, `
				INSERT INTO households (id, user_id, nickname, manual_address, location, ward_number, location_updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING *
			`, id, userClaims.UserID, req.Nickname, req.ManualAddress, location, req.WardNumber, now)
			if err != nil {
				log.Printf("❌ Household create error: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to register household")
				return
			}

			log.Printf("✅ Household %s registered for %s", household.ID, userClaims.Email)
			utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
				"success": true,
				"data":    household.ToHouseholdResponse(),
				"message": "Home anchor set. A worker will verify it on the next round.",
			})
			return
		}
		if err != nil {
			log.Printf("❌ Household fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch household")
			return
		}

		err = db.Get(&household, `
			UPDATE households
			SET location = $1,
			    nickname = COALESCE($2, nickname),
			    manual_address = COALESCE($3, manual_address),
			    ward_number = COALESCE($4, ward_number),
			    verification_status = 'pending',
			    anchored_by = NULL,
			    anchored_at = NULL,
			    rejection_reason = NULL,
			    location_updated_at = $5,
			    updated_at = $5
			WHERE id = $6
			RETURNING *
		`, location, req.Nickname, req.ManualAddress, req.WardNumber, now, household.ID)
		if err != nil {
			log.Printf("❌ Household re-anchor error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update home anchor")
			return
		}

		log.Printf("✅ Household %s re-anchored, verification reset to pending", household.ID)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    household.ToHouseholdResponse(),
			"message": "Home anchor updated. Verification reset to pending.",
		})
	}
}

// SignalRequest is the request body for POST /api/household/signal
type SignalRequest struct {
	Ready bool `json:"ready"`
}

// SignalWasteReady toggles the caller's out-of-cycle pickup request.
// Requires an anchor but not a verified one.
func SignalWasteReady(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req SignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var household models.Household
		err := db.Get(&household, "SELECT * FROM households WHERE user_id = $1", userClaims.UserID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "No household found. Please set up your location first.")
			return
		}
		if err != nil {
			log.Printf("❌ Household fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch household")
			return
		}

		if req.Ready && household.Anchor().IsZero() {
			utils.RespondError(w, http.StatusUnprocessableEntity, "Household has no valid location. Set your home anchor first.")
			return
		}

		_, err = db.Exec(`
			UPDATE households SET waste_ready = $1, updated_at = $2 WHERE id = $3
		`, req.Ready, time.Now().Unix(), household.ID)
		if err != nil {
			log.Printf("❌ Waste-ready update error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update waste-ready signal")
			return
		}

		message := "Waste-ready signal cleared."
		if req.Ready {
			message = "Waste-ready signal set. A worker will be routed to you."
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]bool{"waste_ready": req.Ready},
			"message": message,
		})
	}
}
