package auth

import (
	"database/sql"
	"time"

	"telyourstory/pkg/logger"
)

// User is a registered account. PasswordHash never leaves this package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(u User) error {
	_, err := r.DB.Exec(`INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash)
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", u.Email, err)
	}
	return err
}

func (r *UserRepository) ByEmail(email string) (User, error) {
	var u User
	err := r.DB.QueryRow(`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get user by email %s: %v", email, err)
	}
	return u, err
}
