package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/internal/schedule"
	"wastewise-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// SchedulePayload is the request body for POST /api/household/schedule
type SchedulePayload struct {
	Action              string `json:"action"` // "set_frequency" or "record_pickup"
	PickupFrequencyDays int    `json:"pickup_frequency_days,omitempty"`
}

func buildScheduleResponse(h *models.Household, now time.Time) models.ScheduleResponse {
	resp := models.ScheduleResponse{
		HouseholdID:         h.ID,
		PickupFrequencyDays: h.PickupFrequencyDays,
	}

	var last, next *time.Time
	if h.LastPickupAt != nil {
		t := time.Unix(*h.LastPickupAt, 0)
		last = &t
		iso := t.UTC().Format(time.RFC3339)
		resp.LastPickupIso = &iso
	}
	if h.NextPickupAt != nil {
		t := time.Unix(*h.NextPickupAt, 0)
		next = &t
		iso := t.UTC().Format(time.RFC3339)
		resp.NextPickupIso = &iso
	}

	st := schedule.Derive(now, last, next)
	resp.DaysSinceLast = st.DaysSinceLast
	resp.DaysUntilNext = st.DaysUntilNext
	resp.Overdue = st.Overdue

	return resp
}

// GetSchedule returns the caller's household pickup schedule.
func GetSchedule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var household models.Household
		err := db.Get(&household, "SELECT * FROM households WHERE user_id = $1", userClaims.UserID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "No household found. Please set up your location first.")
			return
		}
		if err != nil {
			log.Printf("❌ Schedule fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedule")
			return
		}

		// Household predates schedule tracking: tell the client to
		// prompt setup instead of rendering an empty schedule.
		if !household.Provisioned() {
			utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
				"success":         true,
				"not_provisioned": true,
				"data": models.ScheduleResponse{
					HouseholdID:         household.ID,
					PickupFrequencyDays: schedule.DefaultFrequencyDays,
				},
			})
			return
		}

		utils.RespondData(w, buildScheduleResponse(&household, time.Now()))
	}
}

// UpdateSchedule handles set_frequency and record_pickup for the
// caller's household.
func UpdateSchedule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req SchedulePayload
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
			log.Printf("❌ Schedule fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch household")
			return
		}

		switch req.Action {
		case "set_frequency":
			setFrequency(db, w, &household, req.PickupFrequencyDays)
		case "record_pickup":
			recordPickup(db, w, household.ID)
		default:
			utils.RespondError(w, http.StatusBadRequest, "Invalid action. Use set_frequency or record_pickup.")
		}
	}
}

func setFrequency(db *sqlx.DB, w http.ResponseWriter, household *models.Household, days int) {
	if !schedule.ValidFrequency(days) {
		utils.RespondError(w, http.StatusBadRequest, schedule.ErrInvalidFrequency.Error())
		return
	}

	// No-op when unchanged; don't even touch updated_at.
	if days == household.PickupFrequencyDays {
		utils.RespondData(w, buildScheduleResponse(household, time.Now()))
		return
	}

	// Only the frequency moves. next_pickup_at is NOT recomputed:
	// the new interval takes effect from the next recorded pickup.
	var updated models.Household
	err := db.Get(&updated, `
		UPDATE households
		SET pickup_frequency_days = $1, updated_at = $2
		WHERE id = $3
		RETURNING *
	`, days, time.Now().Unix(), household.ID)
	if err != nil {
		log.Printf("❌ Failed to update pickup frequency: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update pickup frequency")
		return
	}

	log.Printf("✅ Frequency for household %s set to %d days", updated.ID, days)
	utils.RespondData(w, buildScheduleResponse(&updated, time.Now()))
}

func recordPickup(db *sqlx.DB, w http.ResponseWriter, householdID string) {
	now := time.Now().Unix()

	// Single-statement advance: last/next move together, computed
	// from the row's own frequency, and the readiness signal resets.
	var updated models.Household
	err := db.Get(&updated, `
		UPDATE households
		SET last_pickup_at = $1,
		    next_pickup_at = $1 + pickup_frequency_days * 86400,
		    waste_ready = FALSE,
		    updated_at = $1
		WHERE id = $2
		RETURNING *
	`, now, householdID)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "Household not found.")
		return
	}
	if err != nil {
		log.Printf("❌ Failed to record pickup: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to record pickup")
		return
	}

	log.Printf("✅ Pickup recorded for household %s, next in %d days", updated.ID, updated.PickupFrequencyDays)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    buildScheduleResponse(&updated, time.Now()),
		"message": "Pickup recorded! Next collection scheduled.",
	})
}
