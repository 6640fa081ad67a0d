// pkg/probe_err/types.go

package probe_err

// UserError marks an error as expected and user-fixable: bad input, an
// unreachable host the user told us to probe, a declined prompt. Expected
// errors get softer UX handling and a zero exit code in quiet contexts.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}
