package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClockAdvance(t *testing.T) {
	start := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	ch := c.After(10 * time.Second)
	assert.Equal(t, 1, c.Waiters())

	c.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		assert.Equal(t, start.Add(10*time.Second), got)
	default:
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, 0, c.Waiters())
	assert.Equal(t, start.Add(10*time.Second), c.Now())
}
