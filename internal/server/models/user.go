// Package models holds the records the development server keeps for itself.
// Library entities travel in the shared wire types of the client models package.
package models

import "time"

// User is a librarian account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}
