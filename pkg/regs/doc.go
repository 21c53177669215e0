// Package regs decodes a stopped task's NT_PRSTATUS register set into a
// syscall number and its arguments.
//
// Every instruction set is a Decoder implementation working on the raw
// register bytes, so all decoders build and test on any host. ForHost picks
// the decoder matching the running binary once at startup.
package regs
