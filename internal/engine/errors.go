package engine

import (
	"errors"
	"fmt"
)

// RejectReason classifies why an action was refused. Every reason is
// recoverable: the caller gets a typed rejection and the session state is
// untouched.
type RejectReason string

const (
	ReasonInvalidTransition RejectReason = "invalid_transition"
	ReasonNotAMember        RejectReason = "not_a_member"
	ReasonRoomFull          RejectReason = "room_full"
	ReasonRoomNotJoinable   RejectReason = "room_not_accepting_joins"
	ReasonSessionNotFound   RejectReason = "session_not_found"
	ReasonRoomNotFound      RejectReason = "room_not_found"
	ReasonStaleAction       RejectReason = "stale_action"
	ReasonContentExhausted  RejectReason = "content_exhausted"
)

type Rejection struct {
	Reason  RejectReason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func reject(reason RejectReason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds the rejection returned for lookups of rooms that do not
// exist in the registry.
func NotFound(format string, args ...any) error {
	return reject(ReasonRoomNotFound, format, args...)
}

// ContentExhausted builds the rejection the content selector returns when no
// catalog entry satisfies the filters.
func ContentExhausted(format string, args ...any) error {
	return reject(ReasonContentExhausted, format, args...)
}

// AsRejection unwraps err into a *Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// RetryableError wraps a persistence failure. The in-memory state has been
// rolled back to the pre-transition snapshot; the caller may retry the same
// action.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s failed, state rolled back: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }
