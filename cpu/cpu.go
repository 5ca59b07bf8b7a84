package cpu

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	MemorySize = 4096
	// ProgramAddress is where programs are loaded and where execution begins.
	ProgramAddress = 0x200
	// MaxProgramSize is the largest program that fits between ProgramAddress
	// and the end of memory.
	MaxProgramSize = MemorySize - ProgramAddress
	// StackSize is the deepest the call stack can get before a CALL faults.
	StackSize = 16

	highestMemoryAddress = MemorySize - 1
	timerFrequency       = 60
)

// Chip8 represents an emulated Chip-8 CPU. Not that the Chip-8 was ever a real physical
// computer with a CPU, but it's fun to pretend.
//
// A Chip8 does not own a clock, a window or a speaker. The host calls Step (or RunFrame)
// as often as it likes, feeds key events in through Press and Release, and reads the
// screen through Display whenever Step reports that the screen changed. The Chip8 has
// no locks: a host that touches it from more than one goroutine must serialize the
// calls itself.
type Chip8 struct {
	// program counter
	pc uint16
	// address register
	i uint16
	// data registers
	v [16]byte
	// delay and sound timers.
	// Both timers count down toward zero at 60hz, however fast the CPU runs.
	dt byte
	st byte

	stack  []uint16
	memory [MemorySize]byte
	screen Display

	keys        [16]bool
	released    KeyCode
	hasReleased bool

	// speed is the number of instructions executed per emulated second.
	speed int
	// cycles counts steps since the timers last ticked.
	cycles int

	// fault is set once an instruction fails; the Chip8 refuses to run after that.
	fault *Fault

	logger *log.Logger
	rand   *rand.Rand
}

// New returns a Chip8 with the program loaded at 0x200, ready to Step.
//
// speed is the number of instructions the host intends to execute per second. The
// Chip8 never looks at a wall clock; it only uses speed to work out how many steps
// make up one tick of the 60hz delay and sound timers.
//
// New fails with ErrProgramTooLarge if the program does not fit in memory. Nothing
// gets truncated.
func New(program []byte, speed int) (*Chip8, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSpeed, speed)
	}
	c := &Chip8{
		speed: speed,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.reset()
	if err := c.load(program); err != nil {
		return nil, err
	}
	return c, nil
}

// AttachLogger makes the Chip8 trace every instruction it executes at debug level.
func (c *Chip8) AttachLogger(logger *log.Logger) {
	c.logger = logger
}

// AttachRand replaces the random source used by the RND instruction.
// Tests use this to get repeatable results.
func (c *Chip8) AttachRand(r *rand.Rand) {
	c.rand = r
}

// reset clears the Chip8 memory and puts the cpu back into its starting state.
func (c *Chip8) reset() {
	c.pc = ProgramAddress
	c.i = 0x00
	c.v = [16]byte{}
	c.dt = 0x00
	c.st = 0x00
	c.stack = make([]uint16, 0, StackSize)
	c.memory = [MemorySize]byte{}
	c.screen = Display{}
	c.keys = [16]bool{}
	c.released = 0
	c.hasReleased = false
	c.cycles = 0
	c.fault = nil

	loadFontSprites(&c.memory, fontAddress)
}

// load takes a Chip8 program as input and loads the program into the Chip8 memory.
func (c *Chip8) load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(c.memory[ProgramAddress:], program)
	return nil
}

// Step executes the next instruction in its entirety.
//
// Step reports true if the instruction changed the screen, which only the DRW
// instruction does. If the instruction cannot be executed, Step returns a *Fault
// describing the instruction and where it lives, and the Chip8 stops: every later call
// to Step returns the same fault without running anything.
func (c *Chip8) Step() (bool, error) {
	if c.fault != nil {
		return false, c.fault
	}

	c.tickTimers()

	addr := c.pc
	if addr > highestMemoryAddress-1 {
		c.releaseLatch()
		return false, c.halt(addr, 0, ErrPCOutOfRange)
	}
	opcode := c.readOpcode(addr)
	c.pc += 2

	if c.logger != nil {
		c.logger.Debug("Executing instruction",
			log.Hex("pc", addr),
			log.Hex("opcode", opcode),
			log.String("instruction", mnemonic(opcode)))
	}

	dirty, err := c.exec(opcode)
	// a released key only lives for the one step after the release
	c.releaseLatch()
	if err != nil {
		return false, c.halt(addr, opcode, err)
	}
	return dirty, nil
}

// RunFrame executes one frame worth of instructions, that is speed/fps steps and
// never fewer than one. It reports whether any of them changed the screen and
// stops at the first fault.
func (c *Chip8) RunFrame(fps int) (bool, error) {
	if fps <= 0 {
		return false, fmt.Errorf("invalid frame rate %d", fps)
	}
	steps := max(c.speed/fps, 1)

	var dirty bool
	for range steps {
		changed, err := c.Step()
		if err != nil {
			return dirty, err
		}
		dirty = dirty || changed
	}
	return dirty, nil
}

// Display returns the live screen. The Chip8 keeps drawing into it, so hosts should
// read it between steps and not hold on to it across them.
func (c *Chip8) Display() *Display {
	return &c.screen
}

// SoundActive reports whether the buzzer should be sounding.
func (c *Chip8) SoundActive() bool {
	return c.st > 0
}

// PC returns the address of the next instruction to execute.
func (c *Chip8) PC() uint16 {
	return c.pc
}

func (c *Chip8) tickTimers() {
	c.cycles++
	if c.cycles <= c.speed/timerFrequency {
		return
	}
	c.cycles = 0
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

func (c *Chip8) releaseLatch() {
	c.released = 0
	c.hasReleased = false
}

// halt records the fault and rewinds the program counter to the failing
// instruction so the state reads as if it never started.
func (c *Chip8) halt(addr, opcode uint16, err error) *Fault {
	c.pc = addr
	c.fault = &Fault{PC: addr, Opcode: opcode, Err: err}
	if c.logger != nil {
		c.logger.Debug("Halting on fault",
			log.Hex("pc", addr),
			log.Hex("opcode", opcode),
			log.Err(err))
	}
	return c.fault
}

func (c *Chip8) readOpcode(addr uint16) uint16 {
	// the opcode we want to read is the next two bytes,
	// stored big-endian.
	high := c.memory[addr]
	low := c.memory[addr+1]
	return uint16(high)<<8 | uint16(low)
}

func (c *Chip8) readMemory(addr uint16) byte {
	return c.memory[addr&highestMemoryAddress]
}

func (c *Chip8) writeMemory(addr uint16, b byte) {
	c.memory[addr&highestMemoryAddress] = b
}

func (c *Chip8) stackPush(addr uint16) error {
	if len(c.stack) == StackSize {
		return ErrStackOverflow
	}
	c.stack = append(c.stack, addr)
	return nil
}

func (c *Chip8) stackPop() (uint16, error) {
	last := len(c.stack) - 1
	if last < 0 {
		return 0, ErrStackUnderflow
	}
	addr := c.stack[last]
	c.stack = c.stack[:last]
	return addr, nil
}
