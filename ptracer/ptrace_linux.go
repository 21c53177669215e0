package ptracer

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ptrace constants
const (
	NT_PRSTATUS = 1

	// syscall stops report SIGTRAP|0x80 once PTRACE_O_TRACESYSGOOD is set
	syscallTrap = unix.SIGTRAP | 0x80

	// PTRACE_O_TRACEEXEC replaces the legacy post-execve SIGTRAP with an
	// event stop, which is resumed without a signal
	ptraceOptions = unix.PTRACE_O_TRACESYSGOOD | unix.PTRACE_O_TRACEEXEC
)

// ptraceGetRegSet reads the NT_PRSTATUS register set into buf and returns
// the number of bytes the kernel filled
func ptraceGetRegSet(pid int, buf []byte) (int, error) {
	iov := unix.Iovec{Base: &buf[0]}
	iov.SetLen(len(buf))
	_, _, e1 := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_GETREGSET, uintptr(pid), NT_PRSTATUS,
		uintptr(unsafe.Pointer(&iov)), 0, 0)
	if e1 != 0 {
		return 0, e1
	}
	return int(iov.Len), nil
}

// toEvent classifies a wait4 result
func toEvent(pid int, ws unix.WaitStatus) Event {
	switch {
	case ws.Exited():
		return Event{Kind: EventExited, Pid: pid, ExitStatus: ws.ExitStatus()}
	case ws.Signaled():
		return Event{Kind: EventExited, Pid: pid, Signal: ws.Signal()}
	case ws.Stopped():
		sig := ws.StopSignal()
		if sig == syscallTrap {
			return Event{Kind: EventSyscall, Pid: pid}
		}
		if sig == unix.SIGTRAP && ws.TrapCause() == unix.PTRACE_EVENT_EXEC {
			return Event{Kind: EventExec, Pid: pid}
		}
		return Event{Kind: EventSignal, Pid: pid, Signal: sig}
	}
	return Event{Kind: EventOther, Pid: pid}
}
