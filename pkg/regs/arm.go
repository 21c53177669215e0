package regs

import "encoding/binary"

// https://man7.org/linux/man-pages/man2/syscall.2.html
//   Arch/ABI    arg1  arg2  arg3  arg4  arg5  arg6  arg7   Notes
//   ────────────────────────────────────────────────────────────
//   arm/EABI    r0    r1    r2    r3    r4    r5    r6
//
// user_regs is r0..r15, cpsr, orig_r0 as 32 bit words. The syscall number
// is in r7; r0 is overwritten by the return value, so the first argument
// is taken from orig_r0.

const (
	armR7     = 7
	armOrigR0 = 17
	armWords  = 18
)

type arm struct{}

func init() {
	register(arm{})
}

func (arm) GOARCH() string {
	return "arm"
}

func (arm) RegsSize() int {
	return armWords * 4
}

func (d arm) Decode(raw []byte) (Syscall, error) {
	if err := checkSize(d, raw); err != nil {
		return Syscall{}, err
	}
	word := func(i int) uint64 {
		return uint64(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	var s Syscall
	s.No = uint(word(armR7))
	s.Args[0] = word(armOrigR0)
	for i := 1; i < MaxArgs; i++ {
		s.Args[i] = word(i)
	}
	return s, nil
}
