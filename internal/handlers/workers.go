package handlers

import (
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/middleware"
	"wastewise-backend/internal/models"
	"wastewise-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// ListHouseholds returns the households a worker can act on, scoped to
// their ward. A worker with no assigned ward sees every ward (rovers
// cover gaps in the roster).
//
// Optional ?filter= narrows the list:
//
//	waste_ready          citizens signalling an out-of-cycle pickup
//	overdue              next pickup date already passed
//	pending_verification anchored but not yet handshake-verified
func ListHouseholds(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		caller, err := getProfile(db, userClaims.UserID)
		if err != nil {
			log.Printf("❌ Caller profile fetch error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch caller profile")
			return
		}

		query := `SELECT * FROM households WHERE ($1::INT IS NULL OR ward_number = $1)`
		args := []interface{}{caller.WardNumber}

		switch filter := r.URL.Query().Get("filter"); filter {
		case "":
			// Full ward roster
		case "waste_ready":
			query += ` AND waste_ready = TRUE`
		case "overdue":
			query += ` AND next_pickup_at IS NOT NULL AND next_pickup_at < $2`
			args = append(args, time.Now().Unix())
		case "pending_verification":
			query += ` AND verification_status = 'pending' AND location IS NOT NULL`
		default:
			utils.RespondError(w, http.StatusBadRequest, "filter must be waste_ready, overdue or pending_verification")
			return
		}

		// Signalled households first, then by who is due soonest
		query += ` ORDER BY waste_ready DESC, next_pickup_at ASC NULLS LAST, created_at ASC`

		var households []models.Household
		if err := db.Select(&households, query, args...); err != nil {
			log.Printf("❌ Household list error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch households")
			return
		}

		responses := make([]models.HouseholdResponse, 0, len(households))
		for i := range households {
			responses = append(responses, households[i].ToHouseholdResponse())
		}

		utils.RespondData(w, responses)
	}
}
