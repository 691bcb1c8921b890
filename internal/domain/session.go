package domain

import "time"

// JwtPayload holds the decoded claims of a session token. The gateway reads
// it for display and request attribution only; tokens are issued and
// enforced by the auth backend.
type JwtPayload struct {
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	Role        string    `json:"role,omitempty"`
}

// Expired reports whether the token is past its expiry at now. A zero expiry
// never expires.
func (p *JwtPayload) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Has reports whether the payload grants permission.
func (p *JwtPayload) Has(permission string) bool {
	for _, v := range p.Permissions {
		if v == permission {
			return true
		}
	}
	return false
}
