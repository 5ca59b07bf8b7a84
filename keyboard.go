package main

import (
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/mpostaire/puce8/cpu"
)

// keymap lays the hexadecimal keypad of the COSMAC VIP over the left side of a
// QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keymap = map[glfw.Key]cpu.KeyCode{
	glfw.Key1: cpu.Key1,
	glfw.Key2: cpu.Key2,
	glfw.Key3: cpu.Key3,
	glfw.Key4: cpu.KeyC,
	glfw.KeyQ: cpu.Key4,
	glfw.KeyW: cpu.Key5,
	glfw.KeyE: cpu.Key6,
	glfw.KeyR: cpu.KeyD,
	glfw.KeyA: cpu.Key7,
	glfw.KeyS: cpu.Key8,
	glfw.KeyD: cpu.Key9,
	glfw.KeyF: cpu.KeyE,
	glfw.KeyZ: cpu.KeyA,
	glfw.KeyX: cpu.Key0,
	glfw.KeyC: cpu.KeyB,
	glfw.KeyV: cpu.KeyF,
}

// keypad is the part of the Chip8 that key events get delivered to.
type keypad interface {
	Press(key cpu.KeyCode)
	Release(key cpu.KeyCode)
}

// GLFWKeyboardInput forwards GLFW key events for the mapped keys to a keypad.
// Escape asks the window to close.
//
// GLFW only runs key callbacks from inside glfw.PollEvents, on the thread that
// created the window, so the keypad is never touched concurrently with Step.
type GLFWKeyboardInput struct {
	window *glfw.Window
	keys   keypad
}

func NewGLFWKeyboardInput(window *glfw.Window, keys keypad) *GLFWKeyboardInput {
	input := &GLFWKeyboardInput{window: window, keys: keys}
	window.SetKeyCallback(input.onKey)
	return input
}

func (input *GLFWKeyboardInput) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		return
	}
	handleKey(input.keys, key, action)
}

// handleKey translates one key event. Key repeats are dropped: the Chip8 only
// cares about edges.
func handleKey(keys keypad, key glfw.Key, action glfw.Action) {
	code, ok := keymap[key]
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		keys.Press(code)
	case glfw.Release:
		keys.Release(code)
	}
}
