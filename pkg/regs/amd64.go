package regs

import "encoding/binary"

// https://man7.org/linux/man-pages/man2/syscall.2.html
//   Arch/ABI    arg1  arg2  arg3  arg4  arg5  arg6  arg7   Notes
//   ────────────────────────────────────────────────────────────
//   x86-64      rdi   rsi   rdx   r10   r8    r9    -
//
// The syscall number is read from orig_rax. On syscall entry the kernel
// stores -ENOSYS in rax before the tracer is notified.

// user_regs_struct word offsets
const (
	amd64R10     = 7
	amd64R9      = 8
	amd64R8      = 9
	amd64Rax     = 10
	amd64Rdx     = 12
	amd64Rsi     = 13
	amd64Rdi     = 14
	amd64OrigRax = 15

	amd64Words = 27
)

var amd64Args = [MaxArgs]int{amd64Rdi, amd64Rsi, amd64Rdx, amd64R10, amd64R8, amd64R9}

type amd64 struct{}

func init() {
	register(amd64{})
}

func (amd64) GOARCH() string {
	return "amd64"
}

func (amd64) RegsSize() int {
	return amd64Words * 8
}

func (d amd64) Decode(raw []byte) (Syscall, error) {
	if err := checkSize(d, raw); err != nil {
		return Syscall{}, err
	}
	word := func(i int) uint64 {
		return binary.LittleEndian.Uint64(raw[i*8:])
	}

	var s Syscall
	s.No = uint(word(amd64OrigRax))
	for i, r := range amd64Args {
		s.Args[i] = word(r)
	}
	if int64(word(amd64Rax)) == -enosys {
		s.Phase = PhaseEntry
	} else {
		s.Phase = PhaseExit
	}
	return s, nil
}
