package db

import (
	"database/sql"
	"errors"
	"time"
)

const linkedAccountColumns = "id, user_id, provider, uid, username, email, label, picture, created_at"

// CreateLinkedAccount inserts a new linked external account
func (db *DB) CreateLinkedAccount(account *LinkedAccount) error {
	_, err := db.Exec(
		"INSERT INTO linked_accounts (id, user_id, provider, uid, username, email, label, picture, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		account.ID, account.UserID, account.Provider, account.UID, account.Username, account.Email, account.Label, account.Picture, account.CreatedAt,
	)
	return err
}

// GetLinkedAccount retrieves a linked account by (provider, uid) across all
// users, or nil if none exists. Used to detect identities already claimed by
// another user during the connect flow.
func (db *DB) GetLinkedAccount(provider, uid string) (*LinkedAccount, error) {
	return db.scanLinkedAccount(db.QueryRow(
		"SELECT "+linkedAccountColumns+" FROM linked_accounts WHERE provider = ? AND uid = ?", provider, uid))
}

// GetLinkedAccountForUser retrieves a linked account scoped to a user, or nil
func (db *DB) GetLinkedAccountForUser(userID, provider, uid string) (*LinkedAccount, error) {
	return db.scanLinkedAccount(db.QueryRow(
		"SELECT "+linkedAccountColumns+" FROM linked_accounts WHERE user_id = ? AND provider = ? AND uid = ?", userID, provider, uid))
}

// ListLinkedAccountsByUser retrieves all linked accounts for a user ordered by creation time
func (db *DB) ListLinkedAccountsByUser(userID string) ([]*LinkedAccount, error) {
	rows, err := db.Query(
		"SELECT "+linkedAccountColumns+" FROM linked_accounts WHERE user_id = ? ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*LinkedAccount
	for rows.Next() {
		account := &LinkedAccount{}
		if err := rows.Scan(&account.ID, &account.UserID, &account.Provider, &account.UID,
			&account.Username, &account.Email, &account.Label, &account.Picture, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (db *DB) scanLinkedAccount(row *sql.Row) (*LinkedAccount, error) {
	account := &LinkedAccount{}
	err := row.Scan(&account.ID, &account.UserID, &account.Provider, &account.UID,
		&account.Username, &account.Email, &account.Label, &account.Picture, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateLinkedAccountProfile refreshes the profile fields captured from the provider
func (db *DB) UpdateLinkedAccountProfile(account *LinkedAccount) error {
	_, err := db.Exec(
		"UPDATE linked_accounts SET username = ?, email = ?, picture = ? WHERE id = ?",
		account.Username, account.Email, account.Picture, account.ID,
	)
	return err
}

// UpdateLinkedAccountLabel sets the user-assigned label for a linked account
func (db *DB) UpdateLinkedAccountLabel(accountID, label string) error {
	_, err := db.Exec("UPDATE linked_accounts SET label = ? WHERE id = ?", label, accountID)
	return err
}

// DeleteLinkedAccount removes a linked account; the provider token is removed
// by the foreign key cascade
func (db *DB) DeleteLinkedAccount(accountID string) error {
	_, err := db.Exec("DELETE FROM linked_accounts WHERE id = ?", accountID)
	return err
}

// UpsertProviderToken stores or replaces the upstream OAuth token for a linked account
func (db *DB) UpsertProviderToken(accountID, accessToken string) error {
	_, err := db.Exec(
		"INSERT INTO provider_tokens (account_id, access_token, updated_at) VALUES (?, ?, ?) ON CONFLICT(account_id) DO UPDATE SET access_token = excluded.access_token, updated_at = excluded.updated_at",
		accountID, accessToken, time.Now(),
	)
	return err
}

// GetProviderToken retrieves the stored upstream token for a linked account,
// or nil if none was saved
func (db *DB) GetProviderToken(accountID string) (*ProviderToken, error) {
	token := &ProviderToken{}
	err := db.QueryRow(
		"SELECT account_id, access_token, updated_at FROM provider_tokens WHERE account_id = ?", accountID).
		Scan(&token.AccountID, &token.AccessToken, &token.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}
