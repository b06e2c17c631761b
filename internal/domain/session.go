package domain

import "time"

// SessionRecord tracks the single server-side session per user. The store key
// is the user id, so a new login overwrites the previous record.
type SessionRecord struct {
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	RefreshTokenID string    `json:"refreshTokenId"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessAt   time.Time `json:"lastAccessAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
}
