package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an authenticated account owning shipments.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// APIKey grants programmatic access to the public API. Only a bcrypt hash of
// the secret is stored; Prefix is the non-secret lookup part.
type APIKey struct {
	ID                string     `json:"id" bson:"_id"`
	UserID            string     `json:"user_id" bson:"user_id"`
	Prefix            string     `json:"prefix" bson:"prefix"`
	KeyHash           string     `json:"-" bson:"key_hash"`
	Label             *string    `json:"label" bson:"label,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	LastUsedAt        *time.Time `json:"last_used_at" bson:"last_used_at,omitempty"`
	RequestsThisMonth int64      `json:"requests_this_month" bson:"requests_this_month"`
}
