// Package pipe captures what a child process writes to one of its
// descriptors, keeping at most max bytes. Tests use it to compare a traced
// process's real output with the mirrored one.
package pipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Buffer is an os pipe whose read end is drained into memory. W is passed
// to the child; the parent closes its copy with CloseWriter once the child
// has started.
type Buffer struct {
	W      *os.File
	Max    int64
	Buffer *bytes.Buffer
	Done   <-chan struct{}
}

// NewPipe create a pipe with a goroutine to copy its read-end to writer
// returns the write end and signal for finish
// caller need to close w
func NewPipe(writer io.Writer, n int64) (<-chan struct{}, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	done := make(chan struct{})
	go func() {
		io.CopyN(writer, r, n)
		close(done)
		// ensure no blocking / SIGPIPE on the other end
		io.Copy(io.Discard, r)
		r.Close()
	}()
	return done, w, nil
}

// NewBuffer creates a os pipe collecting up to max+1 bytes, so that output
// over the limit can be told apart from output exactly at it
func NewBuffer(max int64) (*Buffer, error) {
	buffer := new(bytes.Buffer)
	done, w, err := NewPipe(buffer, max+1)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		W:      w,
		Max:    max,
		Buffer: buffer,
		Done:   done,
	}, nil
}

// CloseWriter closes the parent's copy of the write end
func (b *Buffer) CloseWriter() error {
	return b.W.Close()
}

// Bytes waits for every writer to close and returns the collected bytes
func (b *Buffer) Bytes() []byte {
	<-b.Done
	return b.Buffer.Bytes()
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer[%d/%d]", b.Buffer.Len(), b.Max)
}
