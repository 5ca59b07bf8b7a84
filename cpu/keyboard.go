package cpu

// A KeyCode is a number that represents a key on the Chip-8 hexadecimal keyboard.
// Only the numbers 0 through 15 (0x0 through 0xF) are valid KeyCodes.
type KeyCode byte

const (
	Key0 KeyCode = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Valid reports whether the key exists on the Chip-8 keyboard.
func (k KeyCode) Valid() bool {
	return k <= KeyF
}

// Press marks the key as held down. Invalid keys are ignored.
func (c *Chip8) Press(key KeyCode) {
	if !key.Valid() {
		return
	}
	c.keys[key] = true
}

// Release marks the key as up and remembers it as the last released key, replacing
// any release that no instruction has looked at yet. The release is visible to the
// very next Step only; the LD Vx K instruction waits for exactly this event.
// Invalid keys are ignored.
func (c *Chip8) Release(key KeyCode) {
	if !key.Valid() {
		return
	}
	c.keys[key] = false
	c.released = key
	c.hasReleased = true
}

func (c *Chip8) keyIsPressed(key byte) bool {
	k := key & 0x0f
	return c.keys[k]
}
