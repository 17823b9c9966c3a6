package globalthrottle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_ConsumesBurst(t *testing.T) {
	throttle := New(1, 3)

	for i := range 3 {
		assert.True(t, throttle.Check(), "request %d should fit in burst", i)
	}
	assert.False(t, throttle.Check())
}

func TestRetryAfter_DerivedFromRefillTime(t *testing.T) {
	tests := []struct {
		name  string
		rps   float64
		burst int
		want  int
	}{
		{"defaults", 500, 1000, 2},
		{"slow refill rounds up", 10, 25, 3},
		{"sub-second refill clamps to one", 100, 10, 1},
		{"zero rps falls back", 0, 100, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.rps, tt.burst).RetryAfter())
		})
	}
}
