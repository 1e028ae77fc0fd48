package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wastewise-backend/internal/models"
	"wastewise-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserRequest is the request body for POST /api/users
type CreateUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	WardNumber *int   `json:"ward_number,omitempty"`
}

// CreateUser provisions an account. Admin only; workers get their
// ward assignment here.
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "email, password and name are required")
			return
		}
		if req.Role != "citizen" && req.Role != "worker" && req.Role != "admin" {
			utils.RespondError(w, http.StatusBadRequest, "role must be citizen, worker or admin")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Password hash error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		now := time.Now().Unix()
		var user models.User
		err = db.Get(&user, `
			INSERT INTO users (id, email, password, name, role, ward_number, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING *
		`, uuid.New().String(), req.Email, string(hashed), req.Name, req.Role, req.WardNumber, now)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				utils.RespondError(w, http.StatusConflict, "Email already registered")
				return
			}
			log.Printf("❌ User insert error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    user.ToUserResponse(),
		})
	}
}

// workerRow is a worker joined with their open shift, if any.
type workerRow struct {
	models.User
	ShiftID          *string  `db:"shift_id"`
	ShiftStartedAt   *int64   `db:"shift_started_at"`
	CollectionsCount *int     `db:"collections_count"`
	LastLat          *float64 `db:"last_lat"`
	LastLng          *float64 `db:"last_lng"`
	LastSeenAt       *int64   `db:"last_seen_at"`
}

// ListWorkers returns the worker roster with live shift state for the
// admin dashboard.
func ListWorkers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []workerRow
		err := db.Select(&rows, `
			SELECT u.*,
			       s.id AS shift_id,
			       s.started_at AS shift_started_at,
			       s.collections_count,
			       s.last_lat,
			       s.last_lng,
			       s.last_seen_at
			FROM users u
			LEFT JOIN worker_shifts s ON s.worker_id = u.id AND s.ended_at IS NULL
			WHERE u.role = 'worker'
			ORDER BY u.ward_number ASC NULLS LAST, u.name ASC
		`)
		if err != nil {
			log.Printf("❌ Worker list error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch workers")
			return
		}

		type workerStatus struct {
			models.UserResponse
			OnShift          bool     `json:"on_shift"`
			ShiftID          *string  `json:"shift_id,omitempty"`
			ShiftStartedAt   *int64   `json:"shift_started_at,omitempty"`
			CollectionsCount *int     `json:"collections_count,omitempty"`
			LastLat          *float64 `json:"last_lat,omitempty"`
			LastLng          *float64 `json:"last_lng,omitempty"`
			LastSeenAt       *int64   `json:"last_seen_at,omitempty"`
		}

		result := make([]workerStatus, 0, len(rows))
		for i := range rows {
			result = append(result, workerStatus{
				UserResponse:     rows[i].ToUserResponse(),
				OnShift:          rows[i].ShiftID != nil,
				ShiftID:          rows[i].ShiftID,
				ShiftStartedAt:   rows[i].ShiftStartedAt,
				CollectionsCount: rows[i].CollectionsCount,
				LastLat:          rows[i].LastLat,
				LastLng:          rows[i].LastLng,
				LastSeenAt:       rows[i].LastSeenAt,
			})
		}

		utils.RespondData(w, result)
	}
}
