// Package main implements puce8, a Chip-8 emulator that shows its screen in a
// GLFW window and beeps through the default audio device.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/mpostaire/puce8/cpu"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

func init() {
	// GLFW and OpenGL calls must all come from the main thread
	runtime.LockOSThread()
}

type options struct {
	speed    int
	fps      int
	scale    int
	frames   int
	mute     bool
	headless bool
	debug    bool
	quiet    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		createLogger(false, false).Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "puce8 [flags] <rom>",
		Short:         "Chip-8 emulator",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := createLogger(opts.debug, opts.quiet)
			return run(app.Context(), logger, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.speed, "speed", 700, "instructions executed per second")
	flags.IntVar(&opts.fps, "fps", 60, "frames per second")
	flags.IntVar(&opts.scale, "scale", 8, "window pixels per Chip-8 pixel")
	flags.IntVar(&opts.frames, "frames", 0, "stop after this many frames, 0 runs until the window is closed")
	flags.BoolVar(&opts.mute, "mute", false, "do not play sound")
	flags.BoolVar(&opts.headless, "headless", false, "run without window and sound, print the final screen")
	flags.BoolVar(&opts.debug, "debug", false, "trace every executed instruction")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	return cmd
}

func (opts options) validate() error {
	switch {
	case opts.fps <= 0:
		return fmt.Errorf("invalid frame rate %d", opts.fps)
	case opts.scale <= 0:
		return fmt.Errorf("invalid scale %d", opts.scale)
	case opts.frames < 0:
		return fmt.Errorf("invalid frame count %d", opts.frames)
	case opts.headless && opts.frames == 0:
		return errors.New("headless mode needs a frame count")
	}
	return nil
}

func run(ctx context.Context, logger *log.Logger, romPath string, opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	c8, err := loadChip8(logger, romPath, opts)
	if err != nil {
		return err
	}

	loop := loopOptions{fps: opts.fps, frames: opts.frames, paced: !opts.headless}
	if opts.headless {
		front := &headlessFrontend{}
		err := runLoop(ctx, logger, c8, front, silentSpeaker{}, loop)
		fmt.Print(front.screen.String())
		return err
	}
	return runWindowed(ctx, logger, c8, opts, loop)
}

func loadChip8(logger *log.Logger, romPath string, opts options) (*cpu.Chip8, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	c8, err := cpu.New(rom, opts.speed)
	if err != nil {
		return nil, fmt.Errorf("loading program '%s': %w", romPath, err)
	}
	if opts.debug {
		c8.AttachLogger(logger)
	}

	logger.Info("Program loaded",
		log.String("file", romPath),
		log.Int("size", len(rom)),
		log.Int("speed", opts.speed))
	return c8, nil
}

func runWindowed(ctx context.Context, logger *log.Logger, c8 *cpu.Chip8, opts options, loop loopOptions) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing GLFW: %w", err)
	}
	defer glfw.Terminate()

	window, err := newWindow("puce8", opts.scale)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := NewOpenGLRenderer(window)
	if err != nil {
		return err
	}
	defer renderer.Close()

	NewGLFWKeyboardInput(window, c8)

	var speaker Speaker = silentSpeaker{}
	if !opts.mute {
		otoSpeaker, err := NewOtoSpeaker()
		if err != nil {
			logger.Error("Audio unavailable, continuing without sound", log.Err(err))
		} else {
			speaker = otoSpeaker
		}
	}
	defer func() {
		if err := speaker.Close(); err != nil {
			logger.Error("Closing audio failed", log.Err(err))
		}
	}()

	front := &windowFrontend{window: window, renderer: renderer}
	return runLoop(ctx, logger, c8, front, speaker, loop)
}
