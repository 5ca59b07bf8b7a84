package cpu

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// mnemonic returns the assembler name of the instruction for trace logs,
// or "???" for a word that is not a Chip-8 instruction.
func mnemonic(opcode uint16) string {
	for _, op := range chip8.Opcodes[int(opcode>>12)] {
		if op.Info.Mask&opcode == op.Info.Value && op.Instruction != nil {
			return op.Instruction.Name
		}
	}
	return "???"
}
