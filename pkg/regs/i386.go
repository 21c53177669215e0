package regs

import "encoding/binary"

// https://man7.org/linux/man-pages/man2/syscall.2.html
//   Arch/ABI    arg1  arg2  arg3  arg4  arg5  arg6  arg7   Notes
//   ────────────────────────────────────────────────────────────
//   i386        ebx   ecx   edx   esi   edi   ebp   -

// user_regs_struct word offsets
const (
	i386Eax     = 6
	i386OrigEax = 11

	i386Words = 17
)

type i386 struct{}

func init() {
	register(i386{})
}

func (i386) GOARCH() string {
	return "386"
}

func (i386) RegsSize() int {
	return i386Words * 4
}

func (d i386) Decode(raw []byte) (Syscall, error) {
	if err := checkSize(d, raw); err != nil {
		return Syscall{}, err
	}
	word := func(i int) uint32 {
		return binary.LittleEndian.Uint32(raw[i*4:])
	}

	var s Syscall
	s.No = uint(word(i386OrigEax))
	// ebx, ecx, edx, esi, edi, ebp are the first six words
	for i := range s.Args {
		s.Args[i] = uint64(word(i))
	}
	if int32(word(i386Eax)) == int32(-enosys) {
		s.Phase = PhaseEntry
	} else {
		s.Phase = PhaseExit
	}
	return s, nil
}
