package ptracer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/criyle/go-catp/pkg/log"
	"github.com/criyle/go-catp/pkg/regs"
	"github.com/criyle/go-catp/pkg/remote"
	"github.com/criyle/go-catp/types"
)

// session is one attachment to the target. It owns the ptrace state of
// every task it attached and releases it in close.
type session struct {
	*Tracer
	log     *slog.Logger
	decoder regs.Decoder
	table   *regs.Table
	reader  remote.Reader
	result  *types.Result

	tasks   map[int]taskState
	stopped map[int]bool // tasks in a ptrace stop that we have not resumed
	raw     []byte       // register set buffer
}

// TraceRun attaches to the target and mirrors its writes in the calling
// goroutine until the target exits or no traced task is left. The returned
// error is a *types.TraceError naming the failed operation.
func (t *Tracer) TraceRun() (result types.Result, err error) {
	sTime := time.Now()
	defer func() {
		result.RunningTime = time.Since(sTime)
		finish(&result, err)
	}()

	s, err := t.newSession(&result)
	if err != nil {
		return result, err
	}

	// ptrace is thread based (kernel proc)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err = s.attach(); err != nil {
		return result, err
	}
	defer s.close()

	err = s.loop()
	return result, err
}

func (t *Tracer) newSession(result *types.Result) (*session, error) {
	if t.Router == nil {
		return nil, errors.New("ptracer: no router")
	}
	s := &session{
		Tracer:  t,
		log:     t.Logger,
		decoder: t.Decoder,
		reader:  t.Reader,
		result:  result,
		tasks:   make(map[int]taskState),
		stopped: make(map[int]bool),
	}
	if s.log == nil {
		s.log = log.Discard()
	}
	if s.reader == nil {
		s.reader = remote.VMReader{}
	}
	if s.decoder == nil {
		d, err := regs.ForHost()
		if err != nil {
			return nil, types.NewTraceError(types.StatusRegisterReadFailure, "select decoder", t.Pid, err)
		}
		s.decoder = d
	}
	table, err := regs.TableFor(s.decoder)
	if err != nil {
		return nil, types.NewTraceError(types.StatusRegisterReadFailure, "load syscall table", t.Pid, err)
	}
	s.table = table
	s.raw = make([]byte, s.decoder.RegsSize())
	return s, nil
}

func (s *session) attach() error {
	if err := unix.PtraceAttach(s.Pid); err != nil {
		s.log.Debug("attach failed", "pid", s.Pid, "error", err)
		return types.NewTraceError(types.StatusAttachFailure, "attach", s.Pid, err)
	}
	s.tasks[s.Pid] = stateAwaitingFirstStop
	s.log.Debug("attached", "pid", s.Pid, "arch", s.table.Arch())
	return nil
}

// close detaches every task still under our control so the target is never
// left half attached. Tasks that are running cannot be detached and are
// released by the kernel when this thread exits.
func (s *session) close() {
	for pid, st := range s.tasks {
		if st == stateTerminated {
			continue
		}
		err := unix.PtraceDetach(pid)
		s.log.Debug("detach", "pid", pid, "stopped", s.stopped[pid], "error", err)
		if err != nil && s.stopped[pid] {
			s.log.Warn("detach failed, target may stay stopped", "pid", pid, "error", err)
		}
		delete(s.tasks, pid)
	}
}

// loop is the ptrace wait / resume loop
func (s *session) loop() error {
	for {
		ev, err := s.wait()
		if err != nil {
			return err
		}
		s.log.Debug("event", "pid", ev.Pid, "event", ev.Kind, "signal", ev.Signal)

		st, ok := s.tasks[ev.Pid]
		if !ok && ev.Kind != EventNoChildren {
			return types.NewTraceError(types.StatusWaitFailure, "wait4", ev.Pid, errors.New("event for untraced task"))
		}
		next, act, err := step(st, ev.Kind)
		if err != nil {
			return types.NewTraceError(types.StatusSyscallDesync, "step", ev.Pid, err)
		}
		if act != actFinish && act != actWait {
			s.stopped[ev.Pid] = true
			s.result.Stops++
		}

		var sig unix.Signal
		switch act {
		case actFinish:
			s.terminate(ev)
			return nil

		case actWait:
			continue

		case actSetOptions:
			// attach SIGSTOP, suppress it
			if err := unix.PtraceSetOptions(ev.Pid, ptraceOptions); err != nil {
				return types.NewTraceError(types.StatusTraceControlFailure, "set options", ev.Pid, err)
			}
			s.log.Debug("first stop suppressed", "pid", ev.Pid, "signal", ev.Signal)

		case actForward:
			sig = ev.Signal
			s.result.Signals++

		case actResume:
			if ev.Kind == EventExec {
				s.log.Debug("exec", "pid", ev.Pid)
			}

		case actEntry:
			if next, err = s.entry(ev.Pid); err != nil {
				return err
			}
		}

		s.tasks[ev.Pid] = next
		if err := s.resume(ev.Pid, sig); err != nil {
			return err
		}
	}
}

// wait blocks until the target reports an event
func (s *session) wait() (Event, error) {
	var ws unix.WaitStatus
	for {
		pid, err := unix.Wait4(s.Pid, &ws, unix.WALL, nil)
		switch err {
		case nil:
			return toEvent(pid, ws), nil
		case unix.EINTR:
			continue
		case unix.ECHILD:
			return Event{Kind: EventNoChildren, Pid: s.Pid}, nil
		}
		return Event{}, types.NewTraceError(types.StatusWaitFailure, "wait4", s.Pid, err)
	}
}

// resume restarts a stopped task until its next syscall stop
func (s *session) resume(pid int, sig unix.Signal) error {
	err := unix.PtraceSyscall(pid, int(sig))
	switch err {
	case nil:
		s.stopped[pid] = false
		return nil
	case unix.ESRCH:
		// killed while stopped, the exit is reported by the next wait
		s.log.Debug("resume: task gone", "pid", pid)
		s.stopped[pid] = false
		return nil
	}
	return types.NewTraceError(types.StatusTraceControlFailure, "ptrace syscall", pid, err)
}

func (s *session) terminate(ev Event) {
	for pid := range s.tasks {
		s.tasks[pid] = stateTerminated
		s.stopped[pid] = false
	}
	if ev.Kind == EventExited {
		s.result.ExitStatus = ev.ExitStatus
		s.result.Signal = int(ev.Signal)
	}
	s.log.Debug("terminated", "pid", ev.Pid, "event", ev.Kind, "exit_status", ev.ExitStatus, "signal", ev.Signal)
}

// entry handles a syscall entry stop and returns the state the task moves to
func (s *session) entry(pid int) (taskState, error) {
	sc, err := s.syscall(pid)
	if err != nil {
		return stateAtEntry, err
	}
	name, _ := s.table.Name(sc.No)

	if sc.Phase == regs.PhaseExit {
		if !s.Resync {
			return stateAtEntry, types.NewTraceError(types.StatusSyscallDesync, "syscall entry", pid,
				fmt.Errorf("registers of %s(%d) show a syscall exit", name, sc.No))
		}
		s.log.Warn("syscall exit seen where an entry was expected, realigned", "pid", pid, "syscall", name)
		s.result.Resyncs++
		return stateAtEntry, nil
	}
	s.result.Syscalls++

	if sc.No != s.table.Write() {
		return stateAtExit, nil
	}
	fd := int(int32(sc.Arg(0)))
	if !s.Router.Selected(fd) {
		s.log.Debug("write skipped", "pid", pid, "fd", fd, "len", sc.Arg(2))
		return stateAtExit, nil
	}
	if err := s.mirror(pid, fd, uintptr(sc.Arg(1)), sc.Arg(2)); err != nil {
		return stateAtExit, err
	}
	return stateAtExit, nil
}

// syscall fetches and decodes the registers of a stopped task
func (s *session) syscall(pid int) (regs.Syscall, error) {
	n, err := ptraceGetRegSet(pid, s.raw)
	if err != nil {
		return regs.Syscall{}, types.NewTraceError(types.StatusRegisterReadFailure, "getregset", pid, err)
	}
	sc, err := s.decoder.Decode(s.raw[:n])
	if err != nil {
		return regs.Syscall{}, types.NewTraceError(types.StatusRegisterReadFailure, "decode registers", pid, err)
	}
	return sc, nil
}

// maxTransfer is the largest single remote read issued by mirror
var maxTransfer uint64 = remote.MaxLen

// mirror copies the write buffer out of the target and routes it. Lengths
// above maxTransfer are copied in consecutive transfers.
func (s *session) mirror(pid, fd int, addr uintptr, length uint64) error {
	debug := s.log.Enabled(context.Background(), slog.LevelDebug)
	s.result.Writes++
	for length > 0 {
		n := length
		if n > maxTransfer {
			n = maxTransfer
		}
		b := remote.Buffer{Addr: addr, Len: int(n)}
		data, err := s.reader.Read(pid, b)
		if err != nil {
			return types.NewTraceError(types.StatusRemoteReadFailure, "read write buffer", pid, err)
		}
		if debug {
			s.log.Debug("write", "pid", pid, "fd", fd, "addr", fmt.Sprintf("%#x", addr), "len", n, "data", string(data))
		}
		if err := s.Router.Route(fd, data); err != nil {
			return types.NewTraceError(types.StatusLocalWriteFailure, "route", pid, err)
		}
		s.result.Bytes += n
		addr += uintptr(n)
		length -= n
	}
	return nil
}
