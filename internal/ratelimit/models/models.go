package models

import (
	"time"
)

// Category buckets endpoints for differentiated rate limiting.
type Category string

const (
	// CategoryAuth: login/token/registration endpoints, most restrictive.
	CategoryAuth Category = "auth"
	// CategoryUpload: write requests against upload/video paths.
	CategoryUpload Category = "upload"
	// CategorySearch: search and discovery endpoints.
	CategorySearch Category = "search"
	// CategoryMessaging: chat/message endpoints, high volume by nature.
	CategoryMessaging Category = "messaging"
	// CategoryDefault: everything else.
	CategoryDefault Category = "default"
)

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAuth, CategoryUpload, CategorySearch, CategoryMessaging, CategoryDefault:
		return true
	}
	return false
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Policy is the per-category ceiling. Policies are built once at process
// start and never mutated afterwards.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Valid reports whether the policy has positive limits.
func (p Policy) Valid() bool {
	return p.MaxRequests > 0 && p.Window > 0
}

// Decision is the outcome of a rate limit check. Ephemeral, never persisted.
type Decision struct {
	Allowed    bool      `json:"allowed"`
	Bypassed   bool      `json:"bypassed,omitempty"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// IdentityKind distinguishes durable user identities from spoofable IP ones.
type IdentityKind string

const (
	IdentityUser IdentityKind = "user"
	IdentityIP   IdentityKind = "ip"
)

// Identity attributes a request to a caller for rate-limiting purposes.
// Exactly one identity exists per request; resolution is deterministic.
type Identity struct {
	Kind  IdentityKind
	Value string
}

// String renders the canonical key form, e.g. "user:42" or "ip:10.0.0.1".
func (i Identity) String() string {
	return string(i.Kind) + ":" + SanitizeKeySegment(i.Value)
}

// AllowlistEntryType defines whether an allowlist entry is for an IP or user.
type AllowlistEntryType string

const (
	AllowlistTypeIP     AllowlistEntryType = "ip"
	AllowlistTypeUserID AllowlistEntryType = "user_id"
)

// IsValid checks if the allowlist entry type is one of the supported values.
func (t AllowlistEntryType) IsValid() bool {
	return t == AllowlistTypeIP || t == AllowlistTypeUserID
}

// String returns the string representation.
func (t AllowlistEntryType) String() string {
	return string(t)
}

// AllowlistEntry represents an IP or user that bypasses rate limits.
type AllowlistEntry struct {
	ID         string             `json:"id"`
	Type       AllowlistEntryType `json:"type"`
	Identifier string             `json:"identifier"` // IP address or user id
	Reason     string             `json:"reason"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// IsExpired checks if the allowlist entry has expired.
func (e *AllowlistEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return now.After(*e.ExpiresAt)
}
