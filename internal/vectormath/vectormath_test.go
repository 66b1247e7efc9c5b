package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNorm(t *testing.T) {
	assert.Equal(t, 0.0, Norm(nil))
	assert.Equal(t, 5.0, Norm([]float32{3, 4}))
}

func TestIsUnit(t *testing.T) {
	assert.False(t, IsUnit(nil))
	assert.True(t, IsUnit([]float32{1, 0, 0}))
	assert.True(t, IsUnit([]float32{0.6, 0.8}))
	assert.False(t, IsUnit([]float32{1, 1}))
}

func TestNormalizeAlreadyUnitReturnsUnchanged(t *testing.T) {
	v := []float32{1, 0, 0}
	out := Normalize(v)
	assert.Equal(t, v, out)
}

func TestNormalizeScalesToUnitNorm(t *testing.T) {
	out := Normalize([]float32{3, 4})
	assert.InDelta(t, float64(0.6), float64(out[0]), 1e-6)
	assert.InDelta(t, float64(0.8), float64(out[1]), 1e-6)
	assert.InDelta(t, 1.0, Norm(out), 1e-6)
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	assert.Equal(t, v, Normalize(v))
}

func TestCosineIdenticalVectorsIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
}

func TestCosineOrthogonalIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}))
}

func TestCosineOppositeIsNegativeOne(t *testing.T) {
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineMismatchedOrEmptyDimensionsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, nil))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1}))
}

func TestCosineIsScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	got := Cosine(a, b)
	assert.InDelta(t, 1.0, got, 1e-9)
	assert.False(t, math.IsNaN(got))
}
