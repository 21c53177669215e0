// Package remote copies bytes out of the address space of a stopped tracee.
package remote

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxLen bounds the length of a single remote read
const MaxLen = 64 << 20

// ErrShortRead is returned when the kernel transferred fewer bytes than
// requested
var ErrShortRead = errors.New("remote: short read")

// ErrTooLarge is returned for buffers longer than MaxLen or with negative
// length
var ErrTooLarge = errors.New("remote: buffer length out of range")

// Buffer describes bytes owned by the tracee. It is only meaningful while
// the owning task stays stopped.
type Buffer struct {
	Addr uintptr
	Len  int
}

func (b Buffer) String() string {
	return fmt.Sprintf("%#x+%d", b.Addr, b.Len)
}

// Reader copies a Buffer out of a stopped task. It returns exactly b.Len
// bytes or an error, never a truncated result.
type Reader interface {
	Read(pid int, b Buffer) ([]byte, error)
}

// Reader names accepted by New
const (
	NameVM   = "vm"
	NamePeek = "peek"
)

// New returns the reader registered under name ("vm" or "peek")
func New(name string) (Reader, error) {
	switch name {
	case NameVM, "":
		return VMReader{}, nil
	case NamePeek:
		return PeekReader{}, nil
	}
	return nil, fmt.Errorf("remote: unknown reader %q", name)
}

// alloc validates the buffer and returns the local destination
func alloc(b Buffer) ([]byte, error) {
	if b.Len < 0 || b.Len > MaxLen {
		return nil, errors.Wrapf(ErrTooLarge, "buffer %v", b)
	}
	return make([]byte, b.Len), nil
}

func checkCount(op string, b Buffer, n int) error {
	if n != b.Len {
		return errors.Wrapf(ErrShortRead, "%s %v: got %d bytes", op, b, n)
	}
	return nil
}
