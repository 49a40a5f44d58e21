package db

import (
	"database/sql"
	"errors"
	"time"
)

// CreateUser inserts a new user
func (db *DB) CreateUser(user *User) error {
	_, err := db.Exec(
		"INSERT INTO users (id, email, password_hash, first_name, last_name, bio, role, picture_url, is_google_account, date_joined, last_login) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Bio, user.Role, user.PictureURL, user.IsGoogleAccount, user.DateJoined, user.LastLogin,
	)
	return err
}

// GetUserByID retrieves a user by its ID, or nil if none exists
func (db *DB) GetUserByID(id string) (*User, error) {
	return db.scanUser(db.QueryRow(
		"SELECT id, email, password_hash, first_name, last_name, bio, role, picture_url, is_google_account, date_joined, last_login FROM users WHERE id = ?", id))
}

// GetUserByEmail retrieves a user by email, or nil if none exists
func (db *DB) GetUserByEmail(email string) (*User, error) {
	return db.scanUser(db.QueryRow(
		"SELECT id, email, password_hash, first_name, last_name, bio, role, picture_url, is_google_account, date_joined, last_login FROM users WHERE email = ?", email))
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Bio, &user.Role, &user.PictureURL, &user.IsGoogleAccount, &user.DateJoined, &user.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserProfile updates the mutable profile fields of a user
func (db *DB) UpdateUserProfile(user *User) error {
	_, err := db.Exec(
		"UPDATE users SET first_name = ?, last_name = ?, bio = ?, role = ?, picture_url = ?, is_google_account = ? WHERE id = ?",
		user.FirstName, user.LastName, user.Bio, user.Role, user.PictureURL, user.IsGoogleAccount, user.ID,
	)
	return err
}

// UpdateLastLogin records a successful authentication
func (db *DB) UpdateLastLogin(userID string, at time.Time) error {
	_, err := db.Exec("UPDATE users SET last_login = ? WHERE id = ?", at, userID)
	return err
}
