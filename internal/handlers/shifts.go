package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/internal/websocket"
	"wastewise-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// GetShift returns the worker's current open shift, or null when off
// duty.
func GetShift(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var shift models.WorkerShift
		err := db.Get(&shift, `
			SELECT * FROM worker_shifts WHERE worker_id = $1 AND ended_at IS NULL
		`, userClaims.UserID)
		if err == sql.ErrNoRows {
			utils.RespondData(w, nil)
			return
		}
		if err != nil {
			log.Printf("❌ Shift fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch shift")
			return
		}

		utils.RespondData(w, shift)
	}
}

// ShiftRequest is the request body for POST /api/worker/shift
type ShiftRequest struct {
	Action string   `json:"action"` // start | end | update_location
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
}

// UpdateShift starts or ends a duty shift, or records a position fix
// on the open one. Position fixes fan out to connected admins.
func UpdateShift(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req ShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		switch req.Action {
		case "start":
			startShift(db, w, userClaims.UserID)
		case "end":
			endShift(db, w, userClaims.UserID)
		case "update_location":
			updateShiftLocation(db, hub, w, userClaims.UserID, req)
		default:
			utils.RespondError(w, http.StatusBadRequest, "action must be start, end or update_location")
		}
	}
}

func startShift(db *sqlx.DB, w http.ResponseWriter, workerID string) {
	var shift models.WorkerShift
	err := db.Get(&shift, `
		INSERT INTO worker_shifts (id, worker_id, started_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, uuid.New().String(), workerID, time.Now().Unix())
	if err != nil {
		// Partial unique index on open shifts: a second start collides
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			utils.RespondError(w, http.StatusConflict, "Shift already active")
			return
		}
		log.Printf("❌ Shift start error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to start shift")
		return
	}

	log.Printf("✅ Shift %s started for worker %s", shift.ID, workerID)
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    shift,
		"message": "Shift started",
	})
}

func endShift(db *sqlx.DB, w http.ResponseWriter, workerID string) {
	var shift models.WorkerShift
	err := db.Get(&shift, `
		UPDATE worker_shifts
		SET ended_at = $1
		WHERE worker_id = $2 AND ended_at IS NULL
		RETURNING *
	`, time.Now().Unix(), workerID)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusConflict, "No active shift")
		return
	}
	if err != nil {
		log.Printf("❌ Shift end error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to end shift")
		return
	}

	log.Printf("✅ Shift %s ended: %d collections in %s", shift.ID, shift.CollectionsCount, shift.Duration())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    shift,
		"message": "Shift ended",
	})
}

func updateShiftLocation(db *sqlx.DB, hub *websocket.Hub, w http.ResponseWriter, workerID string, req ShiftRequest) {
	if req.Lat == nil || req.Lng == nil {
		utils.RespondError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	now := time.Now().Unix()
	res, err := db.Exec(`
		UPDATE worker_shifts
		SET last_lat = $1, last_lng = $2, last_seen_at = $3
		WHERE worker_id = $4 AND ended_at IS NULL
	`, *req.Lat, *req.Lng, now, workerID)
	if err != nil {
		log.Printf("❌ Shift location update error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update location")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		utils.RespondError(w, http.StatusConflict, "No active shift")
		return
	}

	if hub != nil {
		hub.BroadcastToRole("admin", map[string]interface{}{
			"type": "worker_location_update",
			"data": map[string]interface{}{
				"worker_id":    workerID,
				"latitude":     *req.Lat,
				"longitude":    *req.Lng,
				"last_seen_at": now,
			},
		})
	}

	utils.RespondData(w, map[string]interface{}{
		"last_lat":     *req.Lat,
		"last_lng":     *req.Lng,
		"last_seen_at": now,
	})
}
