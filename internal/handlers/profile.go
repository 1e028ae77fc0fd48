package handlers

import (
	"github.com/jmoiron/sqlx"
)

// profile is the role/ward slice of a user the authorization guard
// needs.
type profile struct {
	Role       string `db:"role"`
	WardNumber *int   `db:"ward_number"`
}

func getProfile(db *sqlx.DB, userID string) (profile, error) {
	var p profile
	err := db.Get(&p, "SELECT role, ward_number FROM users WHERE id = $1", userID)
	return p, err
}
