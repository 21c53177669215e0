package ptracer

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestToEvent(t *testing.T) {
	stopped := func(sig unix.Signal) unix.WaitStatus {
		return unix.WaitStatus(0x7f | int(sig)<<8)
	}
	tests := []struct {
		name string
		ws   unix.WaitStatus
		want Event
	}{
		{"syscall stop", stopped(unix.SIGTRAP | 0x80), Event{Kind: EventSyscall, Pid: 10}},
		{"attach stop", stopped(unix.SIGSTOP), Event{Kind: EventSignal, Pid: 10, Signal: unix.SIGSTOP}},
		{"plain trap", stopped(unix.SIGTRAP), Event{Kind: EventSignal, Pid: 10, Signal: unix.SIGTRAP}},
		{"exec event", stopped(unix.SIGTRAP | unix.PTRACE_EVENT_EXEC<<8), Event{Kind: EventExec, Pid: 10}},
		{"exited", unix.WaitStatus(3 << 8), Event{Kind: EventExited, Pid: 10, ExitStatus: 3}},
		{"killed", unix.WaitStatus(unix.SIGKILL), Event{Kind: EventExited, Pid: 10, Signal: unix.SIGKILL}},
		{"continued", unix.WaitStatus(0xffff), Event{Kind: EventOther, Pid: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toEvent(10, tt.ws); got != tt.want {
				t.Errorf("toEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
