//go:build !linux

package ptracer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/criyle/go-catp/types"
)

// TraceRun is only supported on linux
func (t *Tracer) TraceRun() (result types.Result, err error) {
	sTime := time.Now()
	err = types.NewTraceError(types.StatusAttachFailure, "attach", t.Pid,
		errors.New("ptrace tracing is only supported on linux"))
	result.RunningTime = time.Since(sTime)
	finish(&result, err)
	return result, err
}
