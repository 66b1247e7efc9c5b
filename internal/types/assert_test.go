package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertOKReturnsNil(t *testing.T) {
	assert.NoError(t, Assert(true, "unreachable"))
}

// TestAssertViolationReturnsErrorInReleaseBuild: without the `debug` build
// tag, debugBuild is false, so a failed invariant returns an error rather
// than panicking (spec.md §7).
func TestAssertViolationReturnsErrorInReleaseBuild(t *testing.T) {
	err := Assert(false, "a_id == b_id")
	require := assert.New(t)
	require.Error(err)
	var violation *ErrInvariantViolation
	require.ErrorAs(err, &violation)
	require.Equal("a_id == b_id", violation.Detail)
}
