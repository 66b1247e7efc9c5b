package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrEmbeddingUnavailableUnwraps(t *testing.T) {
	cause := errors.New("rate limited")
	err := &ErrEmbeddingUnavailable{Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestErrLLMOutputInvalidWithAndWithoutCause(t *testing.T) {
	withCause := &ErrLLMOutputInvalid{Mode: FailureParseError, Cause: errors.New("bad json")}
	assert.Contains(t, withCause.Error(), "parse_error")
	assert.Contains(t, withCause.Error(), "bad json")

	noCause := &ErrLLMOutputInvalid{Mode: FailureTimeout}
	assert.Contains(t, noCause.Error(), "timeout")
	assert.NotContains(t, noCause.Error(), "<nil>")
}

func TestErrStoreConflictUnwraps(t *testing.T) {
	cause := errors.New("serialization failure")
	err := &ErrStoreConflict{Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestErrNotFoundMessage(t *testing.T) {
	err := &ErrNotFound{Kind: "memory", ID: "m1"}
	assert.Equal(t, "memory not found: m1", err.Error())
}

func TestErrInvariantViolationMessage(t *testing.T) {
	err := &ErrInvariantViolation{Detail: "negative strength"}
	assert.Contains(t, err.Error(), "negative strength")
}
