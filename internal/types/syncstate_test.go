package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSyncState(t *testing.T) {
	s := NewSyncState("user-1", "journal")
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "journal", s.Source)
	assert.NotNil(t, s.Processed)
	assert.Empty(t, s.Processed)
}
