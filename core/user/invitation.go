package user

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// InvitationTTL is how long an admin invitation stays usable.
const InvitationTTL = 7 * 24 * time.Hour

// AdminInvitation is a single-use, expiring token allowing the holder
// to register an admin account.
type AdminInvitation struct {
	ID        int       `json:"id" db:"id"`
	Token     string    `json:"-" db:"token"`
	Email     string    `json:"email" db:"email"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	UsedBy    int       `json:"used_by" db:"used_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"` // UTC
	UsedAt    time.Time `json:"used_at" db:"used_at"`       // UTC
	IsUsed    bool      `json:"is_used" db:"is_used"`
}

// GenerateInvitationToken returns a url-safe random token.
func GenerateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsValid reports whether the invitation may still be accepted at time t.
func (inv AdminInvitation) IsValid(t time.Time) bool {
	if inv.IsUsed {
		return false
	}
	return t.Before(inv.ExpiresAt)
}
