package ptracer

import (
	"fmt"
	"syscall"
)

// EventKind classifies a wait result
type EventKind int

// Stop events reported by wait
const (
	EventOther      EventKind = iota // not a ptrace stop, nothing to resume
	EventSyscall                     // syscall entry or exit stop
	EventSignal                      // signal delivery stop
	EventExited                      // task exited or was killed
	EventNoChildren                  // nothing left to wait for
	EventExec                        // PTRACE_EVENT_EXEC stop between execve entry and exit
)

var eventString = []string{
	"other",
	"syscall",
	"signal",
	"exited",
	"no children",
	"exec",
}

func (k EventKind) String() string {
	i := int(k)
	if i >= 0 && i < len(eventString) {
		return eventString[i]
	}
	return eventString[0]
}

// Event is one notification from wait
type Event struct {
	Kind       EventKind
	Pid        int
	Signal     syscall.Signal // stop signal, or terminating signal for EventExited
	ExitStatus int            // exit status for EventExited when not signalled
}

// taskState is where a traced task is in its stop sequence
type taskState int

const (
	stateAwaitingFirstStop taskState = iota // attach SIGSTOP not seen yet
	stateAtEntry                            // next syscall stop is an entry
	stateAtExit                             // next syscall stop is the matching exit
	stateTerminated
)

var stateString = []string{
	"awaiting first stop",
	"at entry",
	"at exit",
	"terminated",
}

func (s taskState) String() string {
	i := int(s)
	if i >= 0 && i < len(stateString) {
		return stateString[i]
	}
	return "invalid"
}

// action is what the trace loop does with a task after an event
type action int

const (
	actResume     action = iota // resume without a signal
	actSetOptions               // set ptrace options, then resume without a signal
	actForward                  // resume delivering the stop signal
	actEntry                    // decode the syscall, mirror a selected write, resume
	actWait                     // keep waiting, the task is not stopped
	actFinish                   // the session is over
)

// step computes the next state of a task in state s receiving an event of
// kind k. Every syscall stop flips entry and exit, so a lost stop can only
// be detected from the registers (see session.entry).
func step(s taskState, k EventKind) (taskState, action, error) {
	switch k {
	case EventExited, EventNoChildren:
		return stateTerminated, actFinish, nil
	case EventOther:
		return s, actWait, nil
	}

	switch s {
	case stateAwaitingFirstStop:
		if k == EventSignal {
			return stateAtEntry, actSetOptions, nil
		}
	case stateAtEntry:
		switch k {
		case EventSignal:
			return s, actForward, nil
		case EventSyscall:
			return stateAtExit, actEntry, nil
		case EventExec:
			return s, actResume, nil
		}
	case stateAtExit:
		switch k {
		case EventSignal:
			return s, actForward, nil
		case EventSyscall:
			return stateAtEntry, actResume, nil
		case EventExec:
			// the execve exit stop follows
			return s, actResume, nil
		}
	}
	return s, actWait, fmt.Errorf("unexpected %v event while %v", k, s)
}
