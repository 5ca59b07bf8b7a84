package cpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestAddImmediateWraps(t *testing.T) {
	// 6xnn then 7xnn for every pair of values
	c, err := New(nil, 700)
	assert.NoError(t, err)
	for a := range 256 {
		for b := range 256 {
			c.pc = ProgramAddress
			copy(c.memory[ProgramAddress:], program(0x6300|uint16(a), 0x7300|uint16(b)))
			step(t, c, 2)
			if c.v[0x3] != byte((a+b)%256) {
				t.Fatalf("V3 = %d after %d + %d", c.v[0x3], a, b)
			}
		}
	}
	assert.Equal(t, byte(0), c.v[0xf])
}

func TestClearScreen(t *testing.T) {
	c := newTestChip8(t, 0x00E0)
	for i := range c.screen {
		c.screen[i] = i%3 == 0
	}

	dirty, err := c.Step()
	assert.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, Display{}, c.screen)
}

func TestCallReturn(t *testing.T) {
	// 0x200: CALL 300, 0x202: LD V0 1 ... 0x300: RET
	c := newTestChip8(t, 0x2300, 0x6001)
	copy(c.memory[0x300:], program(0x00EE))

	step(t, c, 1)
	assert.Equal(t, uint16(0x300), c.PC())
	assert.Equal(t, []uint16{0x202}, c.stack)

	step(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Empty(t, c.stack)
}

func TestStackOverflow(t *testing.T) {
	// 2200: CALL 200, recursing forever
	c := newTestChip8(t, 0x2200)
	step(t, c, StackSize)
	assert.Len(t, c.stack, StackSize)

	_, err := c.Step()
	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, uint16(0x2200), fault.Opcode)
	assert.Len(t, c.stack, StackSize)
}

func TestJumps(t *testing.T) {
	c := newTestChip8(t, 0x1345)
	step(t, c, 1)
	assert.Equal(t, uint16(0x345), c.PC())

	// B300: JP V0 300
	c = newTestChip8(t, 0x6021, 0xB300)
	step(t, c, 2)
	assert.Equal(t, uint16(0x321), c.PC())
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(c *Chip8)
		opcode uint16
		skip   bool
	}{
		{"SE Vx byte equal", func(c *Chip8) { c.v[0x1] = 0x42 }, 0x3142, true},
		{"SE Vx byte not equal", func(c *Chip8) { c.v[0x1] = 0x41 }, 0x3142, false},
		{"SNE Vx byte equal", func(c *Chip8) { c.v[0x1] = 0x42 }, 0x4142, false},
		{"SNE Vx byte not equal", func(c *Chip8) { c.v[0x1] = 0x41 }, 0x4142, true},
		{"SE Vx Vy equal", func(c *Chip8) { c.v[0x1], c.v[0x2] = 7, 7 }, 0x5120, true},
		{"SE Vx Vy not equal", func(c *Chip8) { c.v[0x1], c.v[0x2] = 7, 8 }, 0x5120, false},
		{"SNE Vx Vy equal", func(c *Chip8) { c.v[0x1], c.v[0x2] = 7, 7 }, 0x9120, false},
		{"SNE Vx Vy not equal", func(c *Chip8) { c.v[0x1], c.v[0x2] = 7, 8 }, 0x9120, true},
		{"SKP pressed", func(c *Chip8) { c.v[0x1] = 0xA; c.Press(KeyA) }, 0xE19E, true},
		{"SKP not pressed", func(c *Chip8) { c.v[0x1] = 0xA }, 0xE19E, false},
		{"SKNP pressed", func(c *Chip8) { c.v[0x1] = 0xA; c.Press(KeyA) }, 0xE1A1, false},
		{"SKNP not pressed", func(c *Chip8) { c.v[0x1] = 0xA }, 0xE1A1, true},
		{"SKP uses low nibble of Vx", func(c *Chip8) { c.v[0x1] = 0x1A; c.Press(KeyA) }, 0xE19E, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, tt.opcode)
			tt.setup(c)
			step(t, c, 1)
			if tt.skip {
				assert.Equal(t, uint16(0x204), c.PC())
			} else {
				assert.Equal(t, uint16(0x202), c.PC())
			}
		})
	}
}

func TestALU(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy byte
		want   byte
		flag   byte
	}{
		{"LD", 0x8120, 0x11, 0x22, 0x22, 0xAA},
		{"OR", 0x8121, 0x0F, 0xF0, 0xFF, 0xAA},
		{"AND", 0x8122, 0x3C, 0x0F, 0x0C, 0xAA},
		{"XOR", 0x8123, 0xFF, 0x0F, 0xF0, 0xAA},
		{"ADD no carry", 0x8124, 200, 55, 255, 0},
		{"ADD carry", 0x8124, 200, 56, 0, 1},
		{"ADD carry wraps", 0x8124, 0xFF, 0xFF, 0xFE, 1},
		{"SUB no borrow", 0x8125, 10, 3, 7, 1},
		{"SUB equal", 0x8125, 10, 10, 0, 1},
		{"SUB borrow", 0x8125, 3, 10, 249, 0},
		{"SHR bit out", 0x8126, 0x00, 0x05, 0x02, 1},
		{"SHR no bit out", 0x8126, 0xFF, 0x04, 0x02, 0},
		{"SUBN no borrow", 0x8127, 3, 10, 7, 1},
		{"SUBN equal", 0x8127, 10, 10, 0, 1},
		{"SUBN borrow", 0x8127, 10, 3, 249, 0},
		{"SHL bit out", 0x812E, 0x00, 0x81, 0x02, 1},
		{"SHL no bit out", 0x812E, 0xFF, 0x41, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, tt.opcode)
			c.v[0x1], c.v[0x2], c.v[0xf] = tt.vx, tt.vy, 0xAA
			step(t, c, 1)
			assert.Equal(t, tt.want, c.v[0x1])
			assert.Equal(t, tt.flag, c.v[0xf])
		})
	}
}

func TestShiftSourceIsVy(t *testing.T) {
	c := newTestChip8(t, 0x8126, 0x834E)
	c.v[0x1], c.v[0x2] = 0xF0, 0x03
	c.v[0x3], c.v[0x4] = 0x01, 0x80
	step(t, c, 2)

	assert.Equal(t, byte(0x01), c.v[0x1])
	assert.Equal(t, byte(0x03), c.v[0x2])
	assert.Equal(t, byte(0x00), c.v[0x3])
	assert.Equal(t, byte(0x80), c.v[0x4])
	assert.Equal(t, byte(1), c.v[0xf])
}

func TestFlagRegisterAsOperand(t *testing.T) {
	// 8F14: ADD VF V1, the carry overwrites the sum
	c := newTestChip8(t, 0x8F14)
	c.v[0xf], c.v[0x1] = 0x10, 0x20
	step(t, c, 1)
	assert.Equal(t, byte(0), c.v[0xf])
}

func TestIndexInstructions(t *testing.T) {
	c := newTestChip8(t, 0xA123)
	step(t, c, 1)
	assert.Equal(t, uint16(0x123), c.i)

	// F129: LD F V1
	c = newTestChip8(t, 0xF129)
	c.v[0x1] = 0xB
	step(t, c, 1)
	assert.Equal(t, uint16(0x050+0xB*5), c.i)
	assert.Equal(t, []byte{0xE0, 0x90, 0xE0, 0x90, 0xE0}, c.memory[c.i:c.i+5])
}

func TestAddToIndex(t *testing.T) {
	c := newTestChip8(t, 0xF11E)
	c.i, c.v[0x1], c.v[0xf] = 0x100, 0x20, 0xAA
	step(t, c, 1)
	assert.Equal(t, uint16(0x120), c.i)
	assert.Equal(t, byte(0xAA), c.v[0xf])

	c = newTestChip8(t, 0xF11E)
	c.i, c.v[0x1] = 0xFF0, 0x20
	step(t, c, 1)
	assert.Equal(t, uint16(0x010), c.i)
	assert.Equal(t, byte(1), c.v[0xf])
}

func TestRandom(t *testing.T) {
	c := newTestChip8(t, 0xC10F, 0xC2F0)
	c.AttachRand(rand.New(rand.NewSource(42)))
	step(t, c, 2)

	expected := rand.New(rand.NewSource(42))
	assert.Equal(t, byte(expected.Intn(256))&0x0F, c.v[0x1])
	assert.Equal(t, byte(expected.Intn(256))&0xF0, c.v[0x2])
}

func TestDrawTwiceRestoresScreen(t *testing.T) {
	// A050: LD I 050 (glyph 0), D125: DRW V1 V2 5 twice
	c := newTestChip8(t, 0xA050, 0xD125, 0xD125)
	c.v[0x1], c.v[0x2] = 10, 4

	step(t, c, 1)
	dirty, err := c.Step()
	assert.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, byte(0), c.v[0xf])
	assert.True(t, c.screen.Pixel(10, 4))
	assert.False(t, c.screen.Pixel(11, 5))
	assert.True(t, c.screen.Pixel(13, 5))

	dirty, err = c.Step()
	assert.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, byte(1), c.v[0xf])
	assert.Equal(t, Display{}, c.screen)
}

func TestDrawWrapsAround(t *testing.T) {
	// sprite of one full row at 0x300
	c := newTestChip8(t, 0xA300, 0xD121)
	c.memory[0x300] = 0xFF
	c.v[0x1], c.v[0x2] = 60+64, 31+32
	step(t, c, 2)

	for x := 60; x < 64; x++ {
		assert.True(t, c.screen.Pixel(x, 31))
	}
	for x := range 4 {
		assert.True(t, c.screen.Pixel(x, 31))
	}
	assert.False(t, c.screen.Pixel(4, 31))
	assert.False(t, c.screen.Pixel(59, 31))
}

func TestStoreDigits(t *testing.T) {
	c := newTestChip8(t, 0xF133)
	c.i, c.v[0x1] = 0x300, 234
	step(t, c, 1)
	assert.Equal(t, []byte{2, 3, 4}, c.memory[0x300:0x303])
	assert.Equal(t, uint16(0x300), c.i)

	c = newTestChip8(t, 0xF133)
	c.i, c.v[0x1] = 0x300, 7
	step(t, c, 1)
	assert.Equal(t, []byte{0, 0, 7}, c.memory[0x300:0x303])
}

func TestRegisterDumpAndLoad(t *testing.T) {
	// F255: LD [I] V2 is inclusive of V2 and leaves I alone
	c := newTestChip8(t, 0xF255)
	c.i = 0x300
	c.v[0x0], c.v[0x1], c.v[0x2], c.v[0x3] = 1, 2, 3, 4
	step(t, c, 1)
	assert.Equal(t, []byte{1, 2, 3, 0}, c.memory[0x300:0x304])
	assert.Equal(t, uint16(0x300), c.i)

	// F265: LD V2 [I]
	c = newTestChip8(t, 0xF265)
	c.i = 0x300
	copy(c.memory[0x300:], []byte{9, 8, 7, 6})
	step(t, c, 1)
	assert.Equal(t, byte(9), c.v[0x0])
	assert.Equal(t, byte(8), c.v[0x1])
	assert.Equal(t, byte(7), c.v[0x2])
	assert.Equal(t, byte(0), c.v[0x3])
	assert.Equal(t, uint16(0x300), c.i)

	// F055: only V0
	c = newTestChip8(t, 0xF055)
	c.i, c.v[0x0], c.v[0x1] = 0x300, 5, 6
	step(t, c, 1)
	assert.Equal(t, []byte{5, 0}, c.memory[0x300:0x302])
}

func TestTimerTransfers(t *testing.T) {
	// F115: LD DT V1, F218: LD ST V2, F307: LD V3 DT
	c := newTestChip8(t, 0xF115, 0xF218, 0xF307)
	c.v[0x1], c.v[0x2] = 30, 40
	step(t, c, 3)
	assert.Equal(t, byte(30), c.dt)
	assert.Equal(t, byte(40), c.st)
	assert.Equal(t, byte(30), c.v[0x3])
	assert.True(t, c.SoundActive())
}

func TestWaitForKeyRelease(t *testing.T) {
	// F50A: LD V5 K
	c := newTestChip8(t, 0xF50A, 0x6101)

	for range 5 {
		step(t, c, 1)
		assert.Equal(t, uint16(0x200), c.PC())
	}

	// pressing is not enough, the instruction waits for the release
	c.Press(Key7)
	step(t, c, 1)
	assert.Equal(t, uint16(0x200), c.PC())

	c.Release(Key7)
	step(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, byte(0x7), c.v[0x5])

	step(t, c, 1)
	assert.Equal(t, byte(1), c.v[0x1])
}

func TestReleaseIsForgottenAfterOneStep(t *testing.T) {
	c := newTestChip8(t, 0x6000, 0xF50A)
	c.Release(Key3)
	step(t, c, 1)
	assert.False(t, c.hasReleased)

	step(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, byte(0), c.v[0x5])
}

func TestUnimplementedOpcodes(t *testing.T) {
	opcodes := []uint16{0x0000, 0x0123, 0x5121, 0x8008, 0x800F, 0x9001, 0xE000, 0xE19F, 0xF0FF, 0xF100}

	for _, opcode := range opcodes {
		c := newTestChip8(t, opcode)
		_, err := c.Step()

		var fault *Fault
		assert.True(t, errors.As(err, &fault))
		assert.True(t, errors.Is(err, ErrUnimplementedOpcode))
		assert.Equal(t, opcode, fault.Opcode)
		assert.Equal(t, uint16(0x200), fault.PC)
	}
}
