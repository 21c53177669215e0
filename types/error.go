package types

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// TraceError records which operation of a trace session failed and why.
// It matches its Status with errors.Is, and unwraps to the underlying cause
// (usually a syscall.Errno).
type TraceError struct {
	Status Status
	Op     string // failing operation, e.g. "attach" or "process_vm_readv"
	Pid    int
	Err    error
}

// NewTraceError creates a TraceError for the failed operation op on pid
func NewTraceError(status Status, op string, pid int, err error) *TraceError {
	return &TraceError{
		Status: status,
		Op:     op,
		Pid:    pid,
		Err:    err,
	}
}

func (e *TraceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (pid %d)", e.Status, e.Op, e.Pid)
	}
	return fmt.Sprintf("%s: %s (pid %d): %v", e.Status, e.Op, e.Pid, e.Err)
}

// Unwrap returns the underlying cause
func (e *TraceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Status of e
func (e *TraceError) Is(target error) bool {
	s, ok := target.(Status)
	return ok && s == e.Status
}

// StatusOf returns the Status carried by err, StatusNormal for nil and
// StatusInvalid for errors that are not produced by a trace session
func StatusOf(err error) Status {
	if err == nil {
		return StatusNormal
	}
	var te *TraceError
	if errors.As(err, &te) {
		return te.Status
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusInvalid
}

// IsPermissionDenied reports whether err is an attach failure caused by
// missing privilege or an existing tracer
func IsPermissionDenied(err error) bool {
	return errors.Is(err, StatusAttachFailure) && errors.Is(err, syscall.EPERM)
}

// IsNoSuchProcess reports whether err is an attach failure caused by a
// target that does not exist
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, StatusAttachFailure) && errors.Is(err, syscall.ESRCH)
}
