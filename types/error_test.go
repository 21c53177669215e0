package types

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusInvalid, "Invalid"},
		{StatusNormal, ""},
		{StatusAttachFailure, "Attach Failure"},
		{StatusRemoteReadFailure, "Remote Read Failure"},
		{StatusSyscallDesync, "Syscall Desync"},
		{Status(-1), "Invalid"},
		{Status(100), "Invalid"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestTraceErrorMatching(t *testing.T) {
	err := NewTraceError(StatusAttachFailure, "attach", 42, syscall.ESRCH)

	assert.True(t, errors.Is(err, StatusAttachFailure))
	assert.False(t, errors.Is(err, StatusWaitFailure))
	assert.True(t, errors.Is(err, syscall.ESRCH))
	assert.True(t, IsNoSuchProcess(err))
	assert.False(t, IsPermissionDenied(err))
	assert.Equal(t, "Attach Failure: attach (pid 42): no such process", err.Error())

	wrapped := fmt.Errorf("catp: %w", NewTraceError(StatusAttachFailure, "attach", 1, syscall.EPERM))
	assert.True(t, IsPermissionDenied(wrapped))
	assert.Equal(t, StatusAttachFailure, StatusOf(wrapped))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusNormal, StatusOf(nil))
	assert.Equal(t, StatusInvalid, StatusOf(errors.New("other")))
	assert.Equal(t, StatusWaitFailure, StatusOf(StatusWaitFailure))
	assert.Equal(t, StatusLocalWriteFailure,
		StatusOf(errors.Wrap(NewTraceError(StatusLocalWriteFailure, "write", 7, nil), "route")))
}

func TestTraceErrorWithoutCause(t *testing.T) {
	err := NewTraceError(StatusSyscallDesync, "syscall stop", 9, nil)
	assert.Equal(t, "Syscall Desync: syscall stop (pid 9)", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
