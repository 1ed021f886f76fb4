package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"same day", now.Add(-3 * time.Hour), "Today"},
		{"future", now.Add(time.Hour), "Today"},
		{"yesterday", now.Add(-30 * time.Hour), "Yesterday"},
		{"days ago", now.Add(-4 * 24 * time.Hour), "4 days ago"},
		{"older", time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC), "Jan 2, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relative(tt.at, now))
		})
	}
}
