package models

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"-"`
}

// UserResponse is the public shape of a user returned by the API.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips everything that must not leave the server.
func (u User) Public() UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}
