//go:build !linux

package remote

import "github.com/pkg/errors"

var errNotSupported = errors.New("remote: cross-process reads are only supported on linux")

// VMReader is unavailable outside linux
type VMReader struct{}

// PeekReader is unavailable outside linux
type PeekReader struct{}

func (VMReader) Read(pid int, b Buffer) ([]byte, error) {
	return nil, errNotSupported
}

func (PeekReader) Read(pid int, b Buffer) ([]byte, error) {
	return nil, errNotSupported
}
