package models

import (
	"errors"
	"strings"
	"time"
)

// AddAllowlistEntryRequest is the admin API payload for creating an entry.
type AddAllowlistEntryRequest struct {
	Type       string     `json:"type"`
	Identifier string     `json:"identifier"`
	Reason     string     `json:"reason"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Validate checks the request fields and normalizes the identifier.
func (r *AddAllowlistEntryRequest) Validate() error {
	t := AllowlistEntryType(r.Type)
	if !t.IsValid() {
		return errors.New("type must be 'ip' or 'user_id'")
	}
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		return errors.New("identifier is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}
