package middleware

import (
	"net/http"

	"limitgate/internal/platform/httputil"
	"limitgate/internal/ratelimit/models"
	"limitgate/internal/ratelimit/ports"
	"limitgate/internal/ratelimit/scanner"
)

// SecurityScan rejects requests whose query string or headers match a known
// attack signature. It runs before the rate gate: a cheaper, stricter filter
// applied first, and blocked requests never consume quota.
func (m *Middleware) SecurityScan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		match, suspicious := scanner.ScanRequestValues(r.URL.RawQuery, r.Header)
		if !suspicious {
			next.ServeHTTP(w, r)
			return
		}

		identity := m.resolver.Resolve(r)
		if m.metrics != nil {
			m.metrics.RecordSuspiciousBlocked(string(match.Family))
		}
		ports.LogAudit(r.Context(), m.logger, m.audit, "suspicious_request_blocked",
			"identifier", identity.String(),
			"path", r.URL.Path,
			"pattern_family", string(match.Family),
		)

		httputil.WriteJSON(w, http.StatusForbidden, &models.BlockedRequestResponse{
			Error: "Request blocked for security reasons",
		})
	})
}
