// Package models defines user subscription and usage tracking fields.
package models

type Subscription string

const (
	SubscriptionFree    Subscription = "free"
	SubscriptionPremium Subscription = "premium"
)

type User struct {
	ID              int64        `json:"id" db:"id"`
	Email           string       `json:"email" db:"email"`
	Name            string       `json:"name" db:"name"`
	Subscription    Subscription `json:"subscription" db:"subscription"`
	RequestCount    int          `json:"request_count" db:"request_count"`
	LastRequestDate string       `json:"last_request_date" db:"last_request_date"`

	// Credential is the bcrypt hash for local accounts, or a google_<sub>
	// marker for rows created through the OAuth callback. Never serialized.
	Credential string `json:"-" db:"password"`
}
