package regs

import (
	"fmt"
	"syscall"

	"github.com/elastic/go-seccomp-bpf/arch"
)

// ENOSYS; x86 kernels store its negation in the return register at syscall entry
const enosys = int64(syscall.ENOSYS)

// Table resolves syscall numbers and names of one architecture from the
// seccomp architecture tables
type Table struct {
	info  *arch.Info
	write uint
}

// NewTable creates the table for the Go architecture name goarch
func NewTable(goarch string) (*Table, error) {
	info, err := arch.GetInfo(goarch)
	if err != nil {
		return nil, err
	}
	t := &Table{info: info}
	no, ok := t.Number("write")
	if !ok {
		return nil, fmt.Errorf("regs: architecture %s has no write syscall", info.Name)
	}
	t.write = no
	return t, nil
}

// TableFor creates the table matching the decoder's architecture
func TableFor(d Decoder) (*Table, error) {
	return NewTable(d.GOARCH())
}

// Arch returns the kernel name of the architecture (e.g. x86_64)
func (t *Table) Arch() string {
	return t.info.Name
}

// Write returns the number of the write syscall
func (t *Table) Write() uint {
	return t.write
}

// Name converts syscall no to syscall name
func (t *Table) Name(no uint) (string, error) {
	n, ok := t.info.SyscallNumbers[int(no)]
	if !ok {
		return "", fmt.Errorf("syscall no %d does not exist", no)
	}
	return n, nil
}

// Number converts a syscall name to its number
func (t *Table) Number(name string) (uint, bool) {
	for no, n := range t.info.SyscallNumbers {
		if n == name {
			return uint(no), true
		}
	}
	return 0, false
}
