package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/middleware"
	"wastewise-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// FCMTokenRequest is the request body for POST /api/fcm-token
type FCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"` // "ios" or "android"
}

// RegisterFCMToken stores a device push token for the caller. Tokens
// are upserted: a token that moves between accounts follows the last
// login.
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req FCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be ios or android")
			return
		}

		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (token)
			DO UPDATE SET user_id = EXCLUDED.user_id,
			              device_type = EXCLUDED.device_type,
			              updated_at = EXCLUDED.updated_at
		`, userClaims.UserID, req.Token, req.DeviceType, now)
		if err != nil {
			log.Printf("❌ FCM token upsert error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		utils.RespondData(w, map[string]string{"status": "registered"})
	}
}
