package remote

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// VMReader reads with a single process_vm_readv transfer
type VMReader struct{}

// PeekReader reads with PTRACE_PEEKDATA, one word per call. It only works
// for tasks traced by the calling thread, and serves kernels built without
// process_vm_readv.
type PeekReader struct{}

func (VMReader) Read(pid int, b Buffer) ([]byte, error) {
	buff, err := alloc(b)
	if err != nil || len(buff) == 0 {
		return buff, err
	}
	n, err := vmRead(pid, b.Addr, buff)
	if err != nil {
		return nil, errors.Wrapf(err, "process_vm_readv %v", b)
	}
	if err := checkCount("process_vm_readv", b, n); err != nil {
		return nil, err
	}
	return buff, nil
}

func (PeekReader) Read(pid int, b Buffer) ([]byte, error) {
	buff, err := alloc(b)
	if err != nil || len(buff) == 0 {
		return buff, err
	}
	n, err := unix.PtracePeekData(pid, b.Addr, buff)
	if err != nil {
		return nil, errors.Wrapf(err, "ptrace peekdata %v", b)
	}
	if err := checkCount("ptrace peekdata", b, n); err != nil {
		return nil, err
	}
	return buff, nil
}

func vmRead(pid int, addr uintptr, buff []byte) (int, error) {
	localIov := []unix.Iovec{{Base: &buff[0]}}
	localIov[0].SetLen(len(buff))
	remoteIov := []unix.RemoteIovec{{Base: addr, Len: len(buff)}}
	return unix.ProcessVMReadv(pid, localIov, remoteIov, 0)
}
