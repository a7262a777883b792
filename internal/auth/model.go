package auth

import "time"

type User struct {
	ID               string
	Username         string
	PasswordHash     string
	Status           int
	TwoFactorSecret  string
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Enrollment is the one-time payload returned on registration. The raw
// secret is never exposed again after this response.
type Enrollment struct {
	QRCode string `json:"qr_code"`
	Secret string `json:"secret"`
}
