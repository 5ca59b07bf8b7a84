package main

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/mpostaire/puce8/cpu"
)

const bytesPerPixel = 3

var (
	litColor   = [bytesPerPixel]byte{0xFF, 0xFF, 0xFF}
	unlitColor = [bytesPerPixel]byte{0x00, 0x00, 0x00}
)

// OpenGLRenderer shows the Chip8 screen in a GLFW window. The 64x32 screen is
// uploaded as a texture and stretched over the whole window without filtering,
// so every Chip8 pixel turns into a crisp square.
type OpenGLRenderer struct {
	window  *glfw.Window
	texture uint32
	pixels  []byte
}

// newWindow opens a window of scale window pixels per Chip8 pixel with a
// legacy OpenGL 2.1 context current on the calling thread.
func newWindow(title string, scale int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cpu.ScreenWidth*scale, cpu.ScreenHeight*scale, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	// the frame loop paces itself
	glfw.SwapInterval(0)
	return window, nil
}

func NewOpenGLRenderer(window *glfw.Window) (*OpenGLRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	r := &OpenGLRenderer{
		window: window,
		pixels: make([]byte, cpu.ScreenWidth*cpu.ScreenHeight*bytesPerPixel),
	}

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Enable(gl.TEXTURE_2D)
	gl.ClearColor(0, 0, 0, 1)

	return r, nil
}

// Render draws the screen and swaps the window buffers.
func (r *OpenGLRenderer) Render(screen *cpu.Display) {
	fillPixels(screen, r.pixels)

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, cpu.ScreenWidth, cpu.ScreenHeight, 0,
		gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(r.pixels))

	gl.Clear(gl.COLOR_BUFFER_BIT)
	// texture row 0 is the top screen row, so t=0 goes to the top of the window
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.End()

	r.window.SwapBuffers()
}

func (r *OpenGLRenderer) Close() {
	gl.DeleteTextures(1, &r.texture)
}

// fillPixels converts the screen into tightly packed RGB rows, top row first.
func fillPixels(screen *cpu.Display, pixels []byte) {
	for i, lit := range screen {
		color := unlitColor
		if lit {
			color = litColor
		}
		copy(pixels[i*bytesPerPixel:], color[:])
	}
}
