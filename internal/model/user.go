// Package model defines domain entities for the application.
package model

import "time"

// User represents an account record.
//
// PasswordHash carries the argon2id digest. The JSON tags exist for cache
// snapshots only; the dto package builds API responses and never includes
// the hash.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  *string   `json:"display_name,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
