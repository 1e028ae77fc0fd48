package models

type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Password     string `json:"-" db:"password"` // Never return password in JSON
	Name         string `json:"name" db:"name"`
	Role         string `json:"role" db:"role"` // "citizen", "worker" or "admin"
	WardNumber   *int   `json:"ward_number" db:"ward_number"`
	GreenCredits int    `json:"green_credits" db:"green_credits"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	WardNumber   *int   `json:"ward_number,omitempty"`
	GreenCredits int    `json:"green_credits"`
	CreatedAt    int64  `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		WardNumber:   u.WardNumber,
		GreenCredits: u.GreenCredits,
		CreatedAt:    u.CreatedAt,
	}
}

// CreditEvent is one row of the append-only green-credit ledger.
type CreditEvent struct {
	ID           int     `json:"id" db:"id"`
	UserID       string  `json:"user_id" db:"user_id"`
	Amount       int     `json:"amount" db:"amount"`
	Reason       string  `json:"reason" db:"reason"`
	CollectionID *string `json:"collection_id,omitempty" db:"collection_id"`
	CreatedAt    int64   `json:"created_at" db:"created_at"`
}
