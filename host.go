package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/mpostaire/puce8/cpu"
	"github.com/retroenv/retrogolib/log"
)

// frontend is what the frame loop needs from the outside world besides sound.
type frontend interface {
	// PollInput delivers pending input events to the Chip8.
	PollInput()
	// Render presents the screen.
	Render(screen *cpu.Display)
	// ShouldClose reports whether the user asked to quit.
	ShouldClose() bool
}

type loopOptions struct {
	fps int
	// frames stops the loop after that many frames, 0 runs until the frontend closes.
	frames int
	// paced makes the loop wait for the wall clock between frames.
	paced bool
}

// runLoop drives the Chip8 one frame at a time: poll input, execute a frame worth
// of instructions, present the screen if it changed and switch the speaker to
// match the sound timer. It returns the first fault, or nil once the frontend
// closes, the frame budget runs out or ctx is cancelled.
func runLoop(ctx context.Context, logger *log.Logger, c8 *cpu.Chip8, front frontend,
	speaker Speaker, opts loopOptions) error {

	var tick <-chan time.Time
	if opts.paced {
		ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	// render the blank screen first
	front.Render(c8.Display())

	sounding := false
	for frame := 0; opts.frames == 0 || frame < opts.frames; frame++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		front.PollInput()
		if front.ShouldClose() {
			logger.Debug("Window closed", log.Int("frame", frame))
			return nil
		}

		dirty, err := c8.RunFrame(opts.fps)
		if dirty {
			front.Render(c8.Display())
		}
		if err != nil {
			speaker.StopSound()
			return fmt.Errorf("running program: %w", err)
		}

		if active := c8.SoundActive(); active != sounding {
			sounding = active
			if active {
				speaker.StartSound()
			} else {
				speaker.StopSound()
			}
		}
	}

	speaker.StopSound()
	return nil
}

// windowFrontend is the GLFW window with its renderer and keyboard.
type windowFrontend struct {
	window   *glfw.Window
	renderer *OpenGLRenderer
}

func (f *windowFrontend) PollInput() {
	glfw.PollEvents()
}

func (f *windowFrontend) Render(screen *cpu.Display) {
	f.renderer.Render(screen)
}

func (f *windowFrontend) ShouldClose() bool {
	return f.window.ShouldClose()
}

// headlessFrontend keeps the last presented screen and has no input.
type headlessFrontend struct {
	screen cpu.Display
}

func (f *headlessFrontend) PollInput() {}

func (f *headlessFrontend) Render(screen *cpu.Display) {
	f.screen = *screen
}

func (f *headlessFrontend) ShouldClose() bool {
	return false
}
