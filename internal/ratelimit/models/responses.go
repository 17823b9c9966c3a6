package models

import "time"

// RateLimitExceededResponse is the API response when a rate limit is exceeded.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`       // "Rate limit exceeded"
	RetryAfter int    `json:"retry_after"` // seconds
}

// BlockedRequestResponse is the API response when the security scanner
// rejects a request.
type BlockedRequestResponse struct {
	Error string `json:"error"` // "Request blocked for security reasons"
}

// ServiceOverloadedResponse is the API response when the global throttle is hit.
type ServiceOverloadedResponse struct {
	Error      string `json:"error"`   // "service_unavailable"
	Message    string `json:"message"` // "Service is temporarily overloaded..."
	RetryAfter int    `json:"retry_after"`
}

// AllowlistEntryResponse is the admin API response for allowlist lookups.
type AllowlistEntryResponse struct {
	Allowlisted bool       `json:"allowlisted"`
	Identifier  string     `json:"identifier"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CounterResponse is the admin API response for counter peeks.
type CounterResponse struct {
	Key       string `json:"key"`
	Count     int64  `json:"count"`
	TTLSecond int64  `json:"ttl_seconds"`
}
