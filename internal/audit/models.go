// Package audit captures security-relevant gateway events. Events are
// transport-agnostic so sinks (memory, Kafka) can fan out.
package audit

import "time"

// Severity ranks how urgently an event should be looked at.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is emitted from the rate limit and scanner paths. Keep fields flat
// and string-typed so any sink can serialize it without schema negotiation.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"` // client identity or raw identifier
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Severity  Severity  `json:"severity"`
}

// Actions emitted by the gateway.
const (
	EventRateLimitExceeded  = "rate_limit_exceeded"
	EventSuspiciousBlocked  = "suspicious_request_blocked"
	EventAllowlistBypassed  = "allowlist_bypassed"
	EventGlobalThrottleHit  = "global_throttle_hit"
	EventCounterStoreFailed = "counter_store_failed"
)
