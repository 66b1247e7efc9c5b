package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	a, b := NormalizePair("m2", "m1")
	assert.Equal(t, "m1", a)
	assert.Equal(t, "m2", b)

	a, b = NormalizePair("m1", "m2")
	assert.Equal(t, "m1", a)
	assert.Equal(t, "m2", b)
}

func TestValidConnectionTypes(t *testing.T) {
	assert.True(t, ValidConnectionTypes[ConnectionCausal])
	assert.False(t, ValidConnectionTypes[ConnectionType("unknown")])
}
