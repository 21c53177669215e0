package regs

import "encoding/binary"

// https://man7.org/linux/man-pages/man2/syscall.2.html
//   Arch/ABI    arg1  arg2  arg3  arg4  arg5  arg6  arg7   Notes
//   ────────────────────────────────────────────────────────────
//   arm64       x0    x1    x2    x3    x4    x5    -
//
// user_pt_regs is x0..x30, sp, pc, pstate. The syscall number is in x8.
// Entry and exit stops cannot be told apart from these registers.

const (
	arm64X8    = 8
	arm64Words = 34
)

type arm64 struct{}

func init() {
	register(arm64{})
}

func (arm64) GOARCH() string {
	return "arm64"
}

func (arm64) RegsSize() int {
	return arm64Words * 8
}

func (d arm64) Decode(raw []byte) (Syscall, error) {
	if err := checkSize(d, raw); err != nil {
		return Syscall{}, err
	}
	word := func(i int) uint64 {
		return binary.LittleEndian.Uint64(raw[i*8:])
	}

	var s Syscall
	s.No = uint(word(arm64X8))
	for i := range s.Args {
		s.Args[i] = word(i)
	}
	return s, nil
}
