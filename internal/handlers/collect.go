package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"wastewise-backend/internal/authz"
	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/internal/services"
	"wastewise-backend/internal/websocket"
	"wastewise-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CreditsPerCollection is awarded to the citizen for every recorded
// pickup.
const CreditsPerCollection = 10

// CollectRequest is the request body for POST /api/worker/collect
type CollectRequest struct {
	HouseholdID string   `json:"household_id"`
	WasteTypes  []string `json:"waste_types"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

// RecordCollection logs a pickup event. The collection row is the
// source of truth and is inserted first; the schedule roll-forward,
// credit award, shift counter, and notifications are follow-ups that
// must not lose the record when they fail. Their failures come back
// as warnings on an otherwise successful response.
func RecordCollection(db *sqlx.DB, fcm *services.FCMService, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CollectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.HouseholdID == "" {
			utils.RespondError(w, http.StatusBadRequest, "household_id is required")
			return
		}
		if len(req.WasteTypes) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "waste_types is required")
			return
		}
		for _, wt := range req.WasteTypes {
			if !models.ValidWasteTypes[wt] {
				utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid waste type: %s", wt))
				return
			}
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

		now := time.Now().Unix()
		collection := models.Collection{
			ID:           uuid.New().String(),
			HouseholdID:  household.ID,
			WorkerID:     userClaims.UserID,
			CitizenID:    household.UserID,
			WasteTypes:   pq.StringArray(req.WasteTypes),
			WeightKg:     req.WeightKg,
			Notes:        req.Notes,
			CollectedLat: req.Lat,
			CollectedLng: req.Lng,
			CreatedAt:    now,
		}

		_, err = db.Exec(`
			INSERT INTO collections (id, household_id, worker_id, citizen_id, waste_types, weight_kg, notes, collected_lat, collected_lng, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, collection.ID, collection.HouseholdID, collection.WorkerID, collection.CitizenID,
			collection.WasteTypes, collection.WeightKg, collection.Notes,
			collection.CollectedLat, collection.CollectedLng, collection.CreatedAt)
		if err != nil {
			log.Printf("❌ Collection insert error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record collection")
			return
		}

		var warnings []string

		_, err = db.Exec(`
			UPDATE households
			SET last_pickup_at = $1,
			    next_pickup_at = $1 + pickup_frequency_days * 86400,
			    waste_ready = FALSE,
			    updated_at = $1
			WHERE id = $2
		`, now, household.ID)
		if err != nil {
			log.Printf("⚠️ Schedule roll-forward failed for household %s: %v", household.ID, err)
			warnings = append(warnings, "schedule update failed")
		}

		if err := awardCredits(db, household.UserID, collection.ID, now); err != nil {
			log.Printf("⚠️ Credit award failed for citizen %s: %v", household.UserID, err)
			warnings = append(warnings, "credit award failed")
		}

		if _, err := db.Exec(`
			UPDATE worker_shifts
			SET collections_count = collections_count + 1
			WHERE worker_id = $1 AND ended_at IS NULL
		`, userClaims.UserID); err != nil {
			log.Printf("⚠️ Shift counter update failed for worker %s: %v", userClaims.UserID, err)
			warnings = append(warnings, "shift counter update failed")
		}

		notifyCitizen(db, fcm, household.UserID, collection.ID)

		if hub != nil {
			hub.BroadcastToRole("admin", map[string]interface{}{
				"type": "collection_recorded",
				"data": map[string]interface{}{
					"collection_id": collection.ID,
					"household_id":  household.ID,
					"worker_id":     userClaims.UserID,
					"ward_number":   household.WardNumber,
					"created_at":    now,
				},
			})
		}

		log.Printf("✅ Collection %s recorded by %s for household %s", collection.ID, userClaims.Email, household.ID)

		response := map[string]interface{}{
			"success":         true,
			"data":            collection.ToCollectionResponse(),
			"credits_awarded": CreditsPerCollection,
		}
		if len(warnings) > 0 {
			response["warning"] = strings.Join(warnings, "; ")
		}
		utils.RespondJSON(w, http.StatusCreated, response)
	}
}

// awardCredits increments the citizen's balance and writes the ledger
// row in one transaction so the balance and the ledger cannot drift.
func awardCredits(db *sqlx.DB, citizenID, collectionID string, now int64) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE users SET green_credits = green_credits + $1, updated_at = $2 WHERE id = $3
	`, CreditsPerCollection, now, citizenID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO credit_events (user_id, amount, reason, collection_id, created_at)
		VALUES ($1, $2, 'collection', $3, $4)
	`, citizenID, CreditsPerCollection, collectionID, now); err != nil {
		return err
	}

	return tx.Commit()
}

// notifyCitizen pushes a collection notification to every device the
// citizen registered. Push failures are logged only.
func notifyCitizen(db *sqlx.DB, fcm *services.FCMService, citizenID, collectionID string) {
	if fcm == nil {
		return
	}

	var tokens []string
	if err := db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", citizenID); err != nil {
		log.Printf("⚠️ FCM token lookup failed for %s: %v", citizenID, err)
		return
	}

	for _, token := range tokens {
		if err := fcm.SendCollectionRecordedNotification(token, collectionID, CreditsPerCollection); err != nil {
			log.Printf("⚠️ FCM send failed: %v", err)
		}
	}
}
