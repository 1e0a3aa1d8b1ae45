package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatToInt64(t *testing.T) {
	assert.Equal(t, int64(2), FloatToInt64(2.9), "truncates toward zero")
	assert.Equal(t, int64(-2), FloatToInt64(-2.9))
	assert.Equal(t, int64(math.MaxInt64), FloatToInt64(math.Inf(1)))
	assert.Equal(t, int64(math.MinInt64), FloatToInt64(math.Inf(-1)))
	assert.Equal(t, int64(math.MaxInt64), FloatToInt64(1e30))
}

func TestGBToBytes(t *testing.T) {
	assert.Equal(t, int64(1<<30), GBToBytes(1))
	assert.Equal(t, int64(1<<29), GBToBytes(0.5))
	assert.Equal(t, int64(0), GBToBytes(0))
}
