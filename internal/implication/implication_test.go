package implication

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icyhot/recall/internal/vectorstore"
)

func TestNewRequiresVectorStore(t *testing.T) {
	_, err := New(nil, 0.75)
	assert.Error(t, err)
}

func TestNewValidatesThreshold(t *testing.T) {
	vs := &vectorstore.Store{}
	_, err := New(vs, 0)
	assert.Error(t, err)

	_, err = New(vs, 1)
	assert.Error(t, err)

	s, err := New(vs, 0.75)
	assert.NoError(t, err)
	assert.NotNil(t, s)
}
