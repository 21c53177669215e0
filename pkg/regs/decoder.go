package regs

import (
	"fmt"
	"runtime"
	"sort"
)

// MaxArgs is the number of syscall argument registers decoded
const MaxArgs = 6

// Phase tells whether a register set was captured at syscall entry or exit,
// as far as the registers themselves can tell
type Phase int

// Phase values
const (
	PhaseUnknown Phase = iota
	PhaseEntry
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEntry:
		return "entry"
	case PhaseExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Syscall is a decoded snapshot of one syscall stop
type Syscall struct {
	No    uint
	Args  [MaxArgs]uint64
	Phase Phase
}

// Arg returns argument i (0 based) of the syscall. It panics when i is out
// of range, as an array index would.
func (s Syscall) Arg(i int) uint64 {
	return s.Args[i]
}

// Decoder turns the NT_PRSTATUS register set of one instruction set into
// a Syscall
type Decoder interface {
	// GOARCH is the Go architecture name the decoder serves
	GOARCH() string
	// RegsSize is the size in bytes of the register set
	RegsSize() int
	// Decode decodes a register set of exactly RegsSize bytes
	Decode(raw []byte) (Syscall, error)
}

var decoders = make(map[string]Decoder)

func register(d Decoder) {
	decoders[d.GOARCH()] = d
}

// ForArch returns the decoder for the Go architecture name goarch
func ForArch(goarch string) (Decoder, error) {
	d, ok := decoders[goarch]
	if !ok {
		return nil, fmt.Errorf("regs: no decoder for architecture %q", goarch)
	}
	return d, nil
}

// ForHost returns the decoder for the architecture this binary runs on
func ForHost() (Decoder, error) {
	return ForArch(runtime.GOARCH)
}

// Supported lists the Go architecture names with a decoder
func Supported() []string {
	rt := make([]string, 0, len(decoders))
	for k := range decoders {
		rt = append(rt, k)
	}
	sort.Strings(rt)
	return rt
}

func checkSize(d Decoder, raw []byte) error {
	if len(raw) != d.RegsSize() {
		return fmt.Errorf("regs: %s register set is %d bytes, want %d", d.GOARCH(), len(raw), d.RegsSize())
	}
	return nil
}
