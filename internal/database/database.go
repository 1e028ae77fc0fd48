package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('citizen', 'worker', 'admin')),
			ward_number INT,
			green_credits INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create households table.
		// location holds the anchor in whatever wire format the writer
		// produced (WKT, WKB hex, GeoJSON-ish); pkg/geo normalizes on
		// read. schema_version is the explicit provisioning flag: rows
		// below 2 predate schedule tracking.
		`CREATE TABLE IF NOT EXISTS households (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			nickname TEXT,
			manual_address TEXT,
			geocoded_address TEXT,
			location TEXT,
			ward_number INT,
			verification_status TEXT NOT NULL DEFAULT 'pending' CHECK(verification_status IN ('pending', 'verified', 'rejected')),
			anchored_by TEXT,
			anchored_at BIGINT,
			rejection_reason TEXT,
			waste_ready BOOLEAN NOT NULL DEFAULT FALSE,
			pickup_frequency_days INT NOT NULL DEFAULT 30 CHECK(pickup_frequency_days IN (15, 30, 60, 90)),
			last_pickup_at BIGINT,
			next_pickup_at BIGINT,
			schema_version INT NOT NULL DEFAULT 2,
			location_updated_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (anchored_by) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create collections table (append-only pickup log)
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			worker_id TEXT,
			citizen_id TEXT,
			waste_types TEXT[] NOT NULL DEFAULT '{}',
			weight_kg DOUBLE PRECISION,
			notes TEXT,
			collected_lat DOUBLE PRECISION,
			collected_lng DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (household_id) REFERENCES households(id) ON DELETE CASCADE,
			FOREIGN KEY (worker_id) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (citizen_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create credit_events table (append-only credit ledger)
		`CREATE TABLE IF NOT EXISTS credit_events (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount INT NOT NULL,
			reason TEXT NOT NULL,
			collection_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE SET NULL
		)`,

		// Create worker_shifts table
		`CREATE TABLE IF NOT EXISTS worker_shifts (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			ended_at BIGINT,
			collections_count INT NOT NULL DEFAULT 0,
			last_lat DOUBLE PRECISION,
			last_lng DOUBLE PRECISION,
			last_seen_at BIGINT,
			FOREIGN KEY (worker_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_ward ON users(ward_number)`,
		`CREATE INDEX IF NOT EXISTS idx_households_user_id ON households(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_households_ward ON households(ward_number)`,
		`CREATE INDEX IF NOT EXISTS idx_households_verification ON households(verification_status)`,
		`CREATE INDEX IF NOT EXISTS idx_households_waste_ready ON households(waste_ready)`,
		`CREATE INDEX IF NOT EXISTS idx_households_next_pickup ON households(next_pickup_at)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_household_id ON collections(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_worker_id ON collections(worker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_created_at ON collections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_credit_events_user_id ON credit_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_worker_shifts_worker_id ON worker_shifts(worker_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_worker_shifts_open ON worker_shifts(worker_id) WHERE ended_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
