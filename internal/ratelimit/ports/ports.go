// Package ports defines shared interfaces for the ratelimit module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"limitgate/internal/audit"
	"limitgate/internal/platform/middleware/request"
	"limitgate/internal/ratelimit/models"
)

// CounterStore is the fixed-window counter shared by all gateway instances.
//
// Incr atomically increments the counter for key, creating it with
// TTL = window when absent. An existing entry's TTL is never extended:
// the window is fixed, not sliding. Returns the post-increment count and
// the residual TTL. Implementations must not lose updates under
// concurrent callers incrementing the same key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Peek returns the current count and residual TTL without incrementing,
	// or (0, 0, nil) when the key is absent or expired.
	Peek(ctx context.Context, key string) (count int64, ttl time.Duration, err error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}

// AllowlistStore manages rate limit bypass entries.
type AllowlistStore interface {
	// IsAllowlisted checks if an identifier should bypass rate limiting.
	IsAllowlisted(ctx context.Context, identifier string) (bool, error)

	// Add creates a new allowlist entry.
	Add(ctx context.Context, entry *models.AllowlistEntry) error

	// Remove deletes an allowlist entry.
	Remove(ctx context.Context, entryType models.AllowlistEntryType, identifier string) error

	// List returns all non-expired allowlist entries.
	List(ctx context.Context) ([]*models.AllowlistEntry, error)
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit is a shared helper for logging audit events across ratelimit services.
// It logs to both the structured logger and the audit publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrs ...any) {
	requestID := request.GetRequestID(ctx)
	if requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}

	args := append(attrs, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}
	ev := audit.Event{
		Timestamp: time.Now(),
		Action:    event,
		Subject:   extractString(attrs, "identifier", "ip", "user_id"),
		Reason:    extractString(attrs, "reason", "pattern_family"),
		RequestID: requestID,
		Severity:  audit.SeverityWarning,
	}
	if err := publisher.Emit(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

// extractString scans a key/value attr list for the first present key.
func extractString(attrs []any, keys ...string) string {
	for _, key := range keys {
		for i := 0; i+1 < len(attrs); i += 2 {
			k, ok := attrs[i].(string)
			if !ok || k != key {
				continue
			}
			if v, ok := attrs[i+1].(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}
