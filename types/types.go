package types

import "time"

// Result is the result returned by a finished trace session
type Result struct {
	Status            // the final status for the session
	Error      string // potential detailed error message
	ExitStatus int    // exit status of the target, if it exited
	Signal     int    // terminating signal of the target, if it was signalled

	Stops    uint64 // stop events handled
	Syscalls uint64 // syscall entries decoded
	Writes   uint64 // write calls mirrored
	Bytes    uint64 // bytes mirrored
	Signals  uint64 // signals forwarded to the target
	Resyncs  uint64 // entry/exit realignments (resync mode only)

	// collects time usage for the session
	RunningTime time.Duration
}
