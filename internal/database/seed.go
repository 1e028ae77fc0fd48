package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	citizenPassword, err := bcrypt.GenerateFromPassword([]byte("citizen123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	workerPassword, err := bcrypt.GenerateFromPassword([]byte("worker123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ward4 := 4

	users := []struct {
		email    string
		password string
		name     string
		role     string
		ward     *int
	}{
		{"citizen@wastewise.app", string(citizenPassword), "Anju Citizen", "citizen", &ward4},
		{"worker@wastewise.app", string(workerPassword), "Ravi Worker", "worker", &ward4},
		{"rover@wastewise.app", string(workerPassword), "Meera Rover", "worker", nil}, // no ward: roams everywhere
		{"admin@wastewise.app", string(adminPassword), "Admin", "admin", nil},
	}

	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (id, email, password, name, role, ward_number)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), u.email, u.password, u.name, u.role, u.ward)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d users", len(users))
	return nil
}
