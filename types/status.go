package types

// Status is the result Status
type Status int

// Result Status for a trace session
const (
	StatusInvalid Status = iota // 0 not initialized
	// Normal
	StatusNormal // 1 target exited or no tracked task remains

	// Attach
	StatusAttachFailure // 2 ptrace attach rejected

	// Stop handling
	StatusRegisterReadFailure // 3 cannot fetch registers of a stopped task
	StatusRemoteReadFailure   // 4 cross-process memory transfer rejected or short
	StatusLocalWriteFailure   // 5 local sink unusable
	StatusWaitFailure         // 6 wait4 failed with something other than ECHILD
	StatusTraceControlFailure // 7 set options / resume / detach rejected
	StatusSyscallDesync       // 8 syscall entry and exit stops out of step
)

var (
	statusString = []string{
		"Invalid",
		"",
		"Attach Failure",
		"Register Read Failure",
		"Remote Read Failure",
		"Local Write Failure",
		"Wait Failure",
		"Trace Control Failure",
		"Syscall Desync",
	}
)

func (t Status) String() string {
	i := int(t)
	if i >= 0 && i < len(statusString) {
		return statusString[i]
	}
	return statusString[0]
}

func (t Status) Error() string {
	return t.String()
}
