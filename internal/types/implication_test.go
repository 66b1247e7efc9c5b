package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImplicationSourceOverlap(t *testing.T) {
	im := &Implication{SourceMemoryIDs: []string{"m1", "m2", "m3"}}
	activated := map[string]bool{"m2": true, "m3": true, "m9": true}
	assert.Equal(t, 2, im.SourceOverlap(activated))
}

func TestImplicationSourceOverlapNoActivation(t *testing.T) {
	im := &Implication{SourceMemoryIDs: []string{"m1"}}
	assert.Equal(t, 0, im.SourceOverlap(nil))
}

func TestValidImplicationTypes(t *testing.T) {
	assert.True(t, ValidImplicationTypes[ImplicationPredictive])
	assert.False(t, ValidImplicationTypes[ImplicationType("unknown")])
}
