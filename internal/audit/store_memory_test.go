package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublisher(t *testing.T) {
	pub := NewInMemoryPublisher()
	ctx := t.Context()

	require.NoError(t, pub.Emit(ctx, Event{
		Timestamp: time.Now(),
		Action:    EventRateLimitExceeded,
		Subject:   "user:42",
		Severity:  SeverityWarning,
	}))
	require.NoError(t, pub.Emit(ctx, Event{
		Timestamp: time.Now(),
		Action:    EventSuspiciousBlocked,
		Subject:   "ip:10.0.0.1",
		Severity:  SeverityWarning,
	}))

	assert.Len(t, pub.Events(), 2)

	blocked := pub.ByAction(EventSuspiciousBlocked)
	require.Len(t, blocked, 1)
	assert.Equal(t, "ip:10.0.0.1", blocked[0].Subject)

	assert.Empty(t, pub.ByAction(EventAllowlistBypassed))
}
