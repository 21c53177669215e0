// Package router delivers mirrored bytes to the local sink bound to each
// target file descriptor.
package router

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// Stat counts what was routed to one descriptor
type Stat struct {
	Writes uint64
	Bytes  uint64
}

// Router maps target descriptors to local sinks. It is used by a single
// trace loop and is not safe for concurrent use.
type Router struct {
	sinks map[int]io.Writer
	stats map[int]*Stat
}

// New creates an empty Router
func New() *Router {
	return &Router{
		sinks: make(map[int]io.Writer),
		stats: make(map[int]*Stat),
	}
}

// Default binds descriptor 1 to stdout, 2 to stderr and any other
// descriptor in fds to stdout
func Default(stdout, stderr io.Writer, fds []int) (*Router, error) {
	r := New()
	for _, fd := range fds {
		w := stdout
		if fd == 2 {
			w = stderr
		}
		if err := r.Bind(fd, w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Bind binds descriptor fd to sink w, replacing an earlier binding
func (r *Router) Bind(fd int, w io.Writer) error {
	if fd < 0 {
		return fmt.Errorf("router: invalid descriptor %d", fd)
	}
	if w == nil {
		return fmt.Errorf("router: nil sink for descriptor %d", fd)
	}
	r.sinks[fd] = w
	if r.stats[fd] == nil {
		r.stats[fd] = new(Stat)
	}
	return nil
}

// Selected reports whether writes to fd are mirrored
func (r *Router) Selected(fd int) bool {
	_, ok := r.sinks[fd]
	return ok
}

// Descriptors returns the bound descriptors in ascending order
func (r *Router) Descriptors() []int {
	rt := make([]int, 0, len(r.sinks))
	for fd := range r.sinks {
		rt = append(rt, fd)
	}
	sort.Ints(rt)
	return rt
}

// Route writes b verbatim to the sink bound to fd with a single Write
func (r *Router) Route(fd int, b []byte) error {
	w, ok := r.sinks[fd]
	if !ok {
		return fmt.Errorf("router: no sink bound to descriptor %d", fd)
	}
	if len(b) == 0 {
		return nil
	}
	n, err := w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errors.Wrapf(err, "write %d bytes for descriptor %d", len(b), fd)
	}
	s := r.stats[fd]
	s.Writes++
	s.Bytes += uint64(n)
	return nil
}

// Stats returns a copy of the per descriptor counters
func (r *Router) Stats() map[int]Stat {
	rt := make(map[int]Stat, len(r.stats))
	for fd, s := range r.stats {
		rt[fd] = *s
	}
	return rt
}
