package domain

import "time"

// LocalUserRecord is the durable projection of a provider profile,
// keyed by subject id. Created on first successful non-guest
// authentication and refreshed on every one after that. Guest
// identities are never written here.
type LocalUserRecord struct {
	ID              string // subject id, "org/username"
	Name            string
	Email           string
	EmailVerifiedAt *time.Time
	AvatarURL       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
