package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned by New when a program does not fit between
	// 0x200 and the end of memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrInvalidSpeed is returned by New for a speed of zero or less.
	ErrInvalidSpeed = errors.New("invalid speed")

	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
	ErrStackUnderflow      = errors.New("return with empty stack")
	ErrStackOverflow       = errors.New("call stack overflow")
	ErrPCOutOfRange        = errors.New("program counter outside memory")
)

// A Fault is returned by Step when an instruction cannot be executed.
// Err is one of the Err* execution errors of this package.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v: instruction %04x at %03x", f.Err, f.Opcode, f.PC)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
