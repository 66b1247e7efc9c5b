package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignificance(t *testing.T) {
	assert.Equal(t, SignificanceHigh, ParseSignificance("high"))
	assert.Equal(t, SignificanceLow, ParseSignificance("low"))
	assert.Equal(t, SignificanceMedium, ParseSignificance("medium"))
	assert.Equal(t, SignificanceMedium, ParseSignificance("unexpected"), "unknown tags default to medium")
}

func TestMemoryHasContact(t *testing.T) {
	m := &Memory{ContactIDs: []string{"a", "b"}}
	assert.True(t, m.HasContact("a"))
	assert.False(t, m.HasContact("c"))
	assert.True(t, m.HasContact(""), "empty id is a wildcard, matches any memory")
}
