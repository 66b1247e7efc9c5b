package embedding

import (
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestRetryWaitRateLimited(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: 429}
	assert.Equal(t, 2*time.Second, retryWait(err))
}

func TestRetryWaitServerError(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: 503}
	assert.Equal(t, 1*time.Second, retryWait(err))
}

func TestRetryWaitClientErrorIsNotRetried(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: 400}
	assert.Equal(t, time.Duration(0), retryWait(err))
}

func TestRetryWaitNonAPIErrorIsNotRetried(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryWait(errors.New("network blip")))
}

func TestAsAPIError(t *testing.T) {
	var target *openai.APIError
	apiErr := &openai.APIError{HTTPStatusCode: 500}
	assert.True(t, asAPIError(apiErr, &target))
	assert.Equal(t, apiErr, target)

	target = nil
	assert.False(t, asAPIError(errors.New("plain"), &target))
	assert.Nil(t, target)
}
