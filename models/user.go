package models

import "time"

// User represents an account entity used for authentication and authorization.
// The Principal string doubles as the identifier stored in document access
// arrays.
type User struct {
	// Principal is the unique identity of the user as it appears in document
	// access arrays and JWT subject claims.
	Principal string `json:"principal"`

	// Name is the display name of the user. Non-sensitive.
	Name string `json:"name,omitempty"`

	// Password carries the login secret on the wire. It MUST be a derived
	// value at the persistence layer, never plaintext, and is excluded from
	// every response body.
	Password string `json:"password,omitempty"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// TableName returns the name of the database table associated with the User
// model.
func (u User) TableName() string {
	return "users"
}
