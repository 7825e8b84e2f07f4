package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound means the user profile is absent. Terminal: the
	// caller must re-authenticate or re-provision the user.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidAge means the derived age is outside [4,17]. Terminal
	// and user-visible: no group can be assigned.
	ErrCodeInvalidAge ErrorCode = "INVALID_AGE"

	// ErrCodeEmptyPool means a group's content pool has zero items. A
	// data-provisioning defect, not retried.
	ErrCodeEmptyPool ErrorCode = "EMPTY_POOL"

	// ErrCodeTransientStore means a store read/write could not complete.
	// Recoverable: retry the whole flow, or serve the locally computed,
	// non-persisted fallback for this one request.
	ErrCodeTransientStore ErrorCode = "TRANSIENT_STORE"

	// ErrCodeValidation means migration input was rejected before any
	// write. No partial state was mutated.
	ErrCodeValidation ErrorCode = "VALIDATION"
)

// EngineError is the engine's error taxonomy. Store-layer failures are
// caught at the rotation manager boundary and converted into one of these;
// callers never see raw store errors.
//
// "already initialized" and "already served today" are normal branches of
// the flow, not errors, and never produce an EngineError.
type EngineError struct {
	Code     ErrorCode
	Message  string
	UserID   string
	GroupKey GroupKey
	Err      error // underlying cause, if any
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	switch {
	case e.UserID != "" && e.GroupKey != "":
		return fmt.Sprintf("%s: %s (user=%s, group=%s)", e.Code, e.Message, e.UserID, e.GroupKey)
	case e.UserID != "":
		return fmt.Sprintf("%s: %s (user=%s)", e.Code, e.Message, e.UserID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err, or "" if err is not an
// EngineError. Uses errors.As to handle wrapping.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound reports whether err is a missing-profile error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsInvalidAge reports whether err is an age-out-of-bracket error.
func IsInvalidAge(err error) bool { return CodeOf(err) == ErrCodeInvalidAge }

// IsEmptyPool reports whether err is an empty-pool error.
func IsEmptyPool(err error) bool { return CodeOf(err) == ErrCodeEmptyPool }

// IsTransient reports whether err is recoverable by retrying.
func IsTransient(err error) bool { return CodeOf(err) == ErrCodeTransientStore }

// IsValidation reports whether err is a rejected-input error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

func notFoundError(userID string) *EngineError {
	return &EngineError{Code: ErrCodeNotFound, Message: "user profile not found", UserID: userID}
}

func invalidAgeError(userID string, age int) *EngineError {
	return &EngineError{
		Code:    ErrCodeInvalidAge,
		Message: fmt.Sprintf("derived age %d has no content bracket", age),
		UserID:  userID,
	}
}

func emptyPoolError(userID string, group GroupKey, err error) *EngineError {
	return &EngineError{
		Code:     ErrCodeEmptyPool,
		Message:  "content pool has no items",
		UserID:   userID,
		GroupKey: group,
		Err:      err,
	}
}

func transientError(userID string, msg string, err error) *EngineError {
	return &EngineError{Code: ErrCodeTransientStore, Message: msg, UserID: userID, Err: err}
}

func validationError(msg string) *EngineError {
	return &EngineError{Code: ErrCodeValidation, Message: msg}
}
