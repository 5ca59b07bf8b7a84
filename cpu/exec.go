package cpu

// exec decodes and executes one instruction. The program counter already points
// past the instruction when exec is called, so jumps, calls and skips only ever
// overwrite or nudge it.
func (c *Chip8) exec(opcode uint16) (bool, error) {

	// key:
	// ------
	// nnn - low 12 bits of opcode
	// n - low 4 bits of opcode
	// x - low 4 bits of opcode's high byte
	// y - high 4 bits of opcode's low byte
	// nn - opcode's low byte
	x := opcode & 0x0f00 >> 8
	y := opcode & 0x00f0 >> 4
	n := opcode & 0x000f
	nn := byte(opcode & 0x00ff)
	nnn := opcode & 0x0fff

	switch first := opcode & 0xf000 >> 12; first {

	case 0x0:
		switch nnn {
		// 00E0: CLS (clear)
		case 0x0e0:
			c.screen.clear()

		// 00EE: RET (return)
		case 0x0ee:
			addr, err := c.stackPop()
			if err != nil {
				return false, err
			}
			c.pc = addr

		default:
			return false, ErrUnimplementedOpcode
		}

	// 1nnn: JP addr (jump)
	case 0x1:
		c.pc = nnn

	// 2nnn: CALL addr
	case 0x2:
		if err := c.stackPush(c.pc); err != nil {
			return false, err
		}
		c.pc = nnn

	// 3xnn: SE Vx byte (skip if equal)
	case 0x3:
		if c.v[x] == nn {
			c.pc += 2
		}

	// 4xnn: SNE Vx byte (skip if not equal)
	case 0x4:
		if c.v[x] != nn {
			c.pc += 2
		}

	// 5xy0: SE Vx Vy (skip if equal)
	case 0x5:
		if n != 0x0 {
			return false, ErrUnimplementedOpcode
		}
		if c.v[x] == c.v[y] {
			c.pc += 2
		}

	// 6xnn: LD Vx byte (load value to register)
	case 0x6:
		c.v[x] = nn

	// 7xnn: ADD Vx byte (add value to register, no carry)
	case 0x7:
		c.v[x] += nn

	case 0x8:
		return false, c.execALU(n, x, y)

	// 9xy0: SNE Vx Vy (skip next opcode if Vx != Vy)
	case 0x9:
		if n != 0x0 {
			return false, ErrUnimplementedOpcode
		}
		if c.v[x] != c.v[y] {
			c.pc += 2
		}

	// Annn: LD I addr (set I=nnn)
	case 0xA:
		c.i = nnn

	// Bnnn: JP V0 addr (jump to address nnn + V0)
	case 0xB:
		c.pc = nnn + uint16(c.v[0])

	// Cxnn: RND Vx byte (Vx = random byte and nn)
	case 0xC:
		c.v[x] = byte(c.rand.Intn(256)) & nn

	// Dxyn: DRW Vx Vy n (draw n-byte sprite located at I at coordinates Vx,Vy, set VF=collision)
	case 0xD:
		sprite := make([]byte, n)
		for row := range sprite {
			sprite[row] = c.readMemory(c.i + uint16(row))
		}
		if c.screen.drawSprite(sprite, c.v[x], c.v[y]) {
			c.v[0xf] = 1
		} else {
			c.v[0xf] = 0
		}
		return true, nil

	case 0xE:
		switch nn {
		// Ex9E: SKP Vx (skip next instruction if key with the value of Vx is pressed)
		case 0x9E:
			if c.keyIsPressed(c.v[x]) {
				c.pc += 2
			}

		// ExA1: SKNP Vx (skip next instruction if key with the value of Vx is not pressed)
		case 0xA1:
			if !c.keyIsPressed(c.v[x]) {
				c.pc += 2
			}

		default:
			return false, ErrUnimplementedOpcode
		}

	case 0xF:
		return false, c.execMisc(nn, x)

	default:
		return false, ErrUnimplementedOpcode
	}

	return false, nil
}

// execALU runs the 8xyN register arithmetic group. VF is always written after
// Vx so the flag survives when x is 0xF.
func (c *Chip8) execALU(n, x, y uint16) error {
	vx, vy := c.v[x], c.v[y]

	switch n {
	// 8xy0: LD Vx Vy (clone register)
	case 0x0:
		c.v[x] = vy

	// 8xy1: OR Vx Vy
	case 0x1:
		c.v[x] = vx | vy

	// 8xy2: AND Vx Vy
	case 0x2:
		c.v[x] = vx & vy

	// 8xy3: XOR Vx Vy
	case 0x3:
		c.v[x] = vx ^ vy

	// 8xy4: ADD Vx Vy (set VF=1 on carry)
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		c.v[x] = byte(sum)
		c.v[0xf] = byte(sum >> 8)

	// 8xy5: SUB Vx Vy (set VF=1 if there was no borrow)
	case 0x5:
		c.v[x] = vx - vy
		c.v[0xf] = flag(vx >= vy)

	// 8xy6: SHR Vx Vy (Vx = Vy >> 1, VF = bit shifted out)
	case 0x6:
		c.v[x] = vy >> 1
		c.v[0xf] = vy & 0x01

	// 8xy7: SUBN Vx Vy (Vx = Vy - Vx, set VF=1 if there was no borrow)
	case 0x7:
		c.v[x] = vy - vx
		c.v[0xf] = flag(vy >= vx)

	// 8xyE: SHL Vx Vy (Vx = Vy << 1, VF = bit shifted out)
	case 0xE:
		c.v[x] = vy << 1
		c.v[0xf] = vy >> 7

	default:
		return ErrUnimplementedOpcode
	}
	return nil
}

func (c *Chip8) execMisc(nn byte, x uint16) error {
	switch nn {
	// Fx07: LD Vx DT (set Vx=DT)
	case 0x07:
		c.v[x] = c.dt

	// Fx0A: LD Vx K (wait for a key release, store the key in Vx)
	case 0x0A:
		if c.hasReleased {
			c.v[x] = byte(c.released)
		} else {
			// nothing was released: point back at this instruction so the
			// next step decodes it again.
			c.pc -= 2
		}

	// Fx15: LD DT Vx (set DT=Vx)
	case 0x15:
		c.dt = c.v[x]

	// Fx18: LD ST Vx (set ST=Vx)
	case 0x18:
		c.st = c.v[x]

	// Fx1E: ADD I Vx (set I=I+Vx, VF=1 if I left the address space)
	case 0x1E:
		addr := c.i + uint16(c.v[x])
		if addr > highestMemoryAddress {
			addr &= highestMemoryAddress
			c.v[0xf] = 1
		}
		c.i = addr

	// Fx29: LD F Vx (set I=address of the font glyph for digit Vx)
	case 0x29:
		c.i = fontAddress + uint16(c.v[x])*glyphSize

	// Fx33: LD B Vx (store the decimal digits of Vx at I, I+1, I+2)
	case 0x33:
		vx := c.v[x]
		c.writeMemory(c.i, vx/100)
		c.writeMemory(c.i+1, vx/10%10)
		c.writeMemory(c.i+2, vx%10)

	// Fx55: LD [I] Vx (store V0 through Vx in memory starting at I)
	case 0x55:
		for r := uint16(0); r <= x; r++ {
			c.writeMemory(c.i+r, c.v[r])
		}

	// Fx65: LD Vx [I] (read memory starting at I into V0 through Vx)
	case 0x65:
		for r := uint16(0); r <= x; r++ {
			c.v[r] = c.readMemory(c.i + r)
		}

	default:
		return ErrUnimplementedOpcode
	}
	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
