package ecojoko

import "errors"

// The client distinguishes three failure kinds so the orchestrator can react
// per step: authentication failures invalidate the session and trigger a
// re-login on the next cycle, communication failures skip the step, and
// everything else is a general failure with the same retained-value behavior.
var (
	// ErrAuthentication indicates the service answered 401/403. The stored
	// session has already been invalidated when this is returned.
	ErrAuthentication = errors.New("ecojoko: authentication failed")

	// ErrCommunication indicates a timeout or transport-level failure.
	ErrCommunication = errors.New("ecojoko: communication error")
)
