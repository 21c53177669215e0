// Package ptracer attaches to a running process with ptrace and mirrors the
// bytes it writes to selected file descriptors.
package ptracer

import (
	"log/slog"

	"github.com/criyle/go-catp/pkg/regs"
	"github.com/criyle/go-catp/pkg/remote"
	"github.com/criyle/go-catp/types"
)

// Router selects the mirrored descriptors and receives their bytes
type Router interface {
	// Selected reports whether writes to fd are mirrored
	Selected(fd int) bool
	// Route delivers the bytes of one write call to the sink of fd
	Route(fd int, b []byte) error
}

// Tracer defines a ptracer instance
type Tracer struct {
	// Pid is the process to attach to
	Pid int
	// Router selects descriptors and receives their bytes
	Router Router
	// Reader copies write buffers out of the target (default remote.VMReader)
	Reader remote.Reader
	// Decoder decodes register sets (default regs.ForHost)
	Decoder regs.Decoder
	// Logger receives diagnostics, nil discards them
	Logger *slog.Logger
	// Resync realigns a task whose entry and exit stops went out of step
	// instead of failing the session
	Resync bool
}

// Trace starts new goroutine and traces the target with ptrace
func (t *Tracer) Trace() <-chan types.Result {
	result := make(chan types.Result, 1)
	go func() {
		// the error is also recorded in rt.Error
		rt, _ := t.TraceRun()
		result <- rt
	}()
	return result
}

func finish(result *types.Result, err error) {
	if err != nil {
		result.Status = types.StatusOf(err)
		result.Error = err.Error()
		return
	}
	result.Status = types.StatusNormal
}
