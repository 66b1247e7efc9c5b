package types

import "fmt"

// LLMFailureMode is the closed set of ways an LLM call can fail to produce
// usable output (spec.md §4.2).
type LLMFailureMode string

const (
	FailureNoJSON        LLMFailureMode = "no_json"
	FailureParseError    LLMFailureMode = "parse_error"
	FailureShapeMismatch LLMFailureMode = "shape_mismatch"
	FailureTimeout       LLMFailureMode = "timeout"
	FailureProviderError LLMFailureMode = "provider_error"
)

// ErrEmbeddingUnavailable is returned by the embedding client for every
// failure it does not recover from, including a rate-limit or 5xx
// response that fails again after its single retry.
type ErrEmbeddingUnavailable struct {
	Cause error
}

func (e *ErrEmbeddingUnavailable) Error() string {
	return fmt.Sprintf("embedding provider unavailable: %v", e.Cause)
}

func (e *ErrEmbeddingUnavailable) Unwrap() error { return e.Cause }

// ErrLLMOutputInvalid is returned by internal/llmclient when a provider
// response could not be turned into validated, typed output.
type ErrLLMOutputInvalid struct {
	Mode  LLMFailureMode
	Cause error
}

func (e *ErrLLMOutputInvalid) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm output invalid (%s): %v", e.Mode, e.Cause)
	}
	return fmt.Sprintf("llm output invalid (%s)", e.Mode)
}

func (e *ErrLLMOutputInvalid) Unwrap() error { return e.Cause }

// ErrStoreConflict signals a transient store error that the store layer
// retries once on idempotent operations before surfacing.
type ErrStoreConflict struct {
	Cause error
}

func (e *ErrStoreConflict) Error() string {
	return fmt.Sprintf("store conflict: %v", e.Cause)
}

func (e *ErrStoreConflict) Unwrap() error { return e.Cause }

// ErrNotFound signals a missing entity; callers filter these out of result
// sets rather than propagating an error (spec.md §7, dangling provenance).
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrInvariantViolation marks a data invariant breach (non-unit embedding,
// a_id == b_id, negative strength). Assert panics in debug builds and
// returns this error in release builds (spec.md §7).
type ErrInvariantViolation struct {
	Detail string
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}
