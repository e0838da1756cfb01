package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoodString(t *testing.T) {
	assert.Equal(t, "😘 Loving", DefaultMood().String())
}

func TestLookupMood(t *testing.T) {
	for _, in := range []string{"Sleepy", "😴 Sleepy", "😴"} {
		m, ok := LookupMood(in)
		assert.True(t, ok, in)
		assert.Equal(t, "Sleepy", m.Label)
	}

	_, ok := LookupMood("Grumpy")
	assert.False(t, ok)
}
