package types

// Assert checks an invariant. In a binary built with the `debug` build tag
// it panics on violation; otherwise it returns ErrInvariantViolation so the
// caller can refuse the write (spec.md §7).
func Assert(ok bool, detail string) error {
	if ok {
		return nil
	}
	if debugBuild {
		panic(&ErrInvariantViolation{Detail: detail})
	}
	return &ErrInvariantViolation{Detail: detail}
}
