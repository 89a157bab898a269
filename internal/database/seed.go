package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategories are created on first start so the editor has something to
// choose from. Further categories are created lazily by posts.
var seedCategories = []struct {
	Name        string
	Slug        string
	Description string
}{
	{"Technology", "technology", "Software, gadgets and the web"},
	{"Travel", "travel", "Places, journeys and travel tips"},
	{"Food", "food", "Recipes, restaurants and cooking"},
	{"Lifestyle", "lifestyle", "Everyday living and wellbeing"},
	{"Business", "business", "Startups, careers and finance"},
	{"Health", "health", "Fitness, nutrition and mental health"},
}

// seedUsers are the development accounts. Passwords are hashed with the
// same cost as regular registrations.
var seedUsers = []struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     string
}{
	{"Admin", "admin", "admin@example.com", "admin", "admin"},
	{"John Doe", "johndoe", "john@example.com", "password", "user"},
}

const seedBcryptCost = 12

// Seed populates the database with initial development data.
// It is safe to call repeatedly: users are only created when the users table
// is empty and categories are inserted with ON CONFLICT DO NOTHING.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, c := range seedCategories {
		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug, c.Description)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.Slug, err)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping users")
		return nil
	}

	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), seedBcryptCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO users (name, username, email, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
		`, u.Name, u.Username, u.Email, string(hash), u.Role)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.Username, err)
		}
	}

	slog.Info("database seeded with default users",
		"admin", "admin@example.com",
		"password", "admin",
	)
	return nil
}
