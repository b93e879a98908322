package utils

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTimerMeasuresElapsedTime(t *testing.T) {
	timer := NewTimer("test_operation", zerolog.Nop())
	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration.Nanoseconds(), int64(0))
}
