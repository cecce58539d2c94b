// internal/db/seed.go
package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdminUser inserts a bootstrap admin account when the users table is
// empty. Skipped when no password is configured.
func SeedAdminUser(db *sql.DB, email, password string) error {
	if password == "" {
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, initials, role, password_hash) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), email, "Administrator", "AD", "admin", string(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Printf("Seeded admin user: %s", email)
	return nil
}
