package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate     = 44100
	beepFrequency  = 440
	beepVolume     = 0.05
	bytesPerSample = 4
)

// The Speaker interface represents the Chip8 speaker, which acts as a simple
// buzzer: the Chip8 only decides when it sounds, never what it sounds like.
type Speaker interface {
	StartSound()
	StopSound()
	Close() error
}

// squareWave is an endless mono float32 stream of a square wave that goes
// silent while it is switched off. It is read from the audio thread, so the
// on/off switch is the only state shared with the frame loop.
type squareWave struct {
	on        atomic.Bool
	phase     float64
	phaseStep float64
	volume    float32
}

func newSquareWave(frequency, rate float64, volume float32) *squareWave {
	return &squareWave{
		phaseStep: frequency / rate,
		volume:    volume,
	}
}

func (w *squareWave) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample * bytesPerSample
	on := w.on.Load()
	for i := 0; i < n; i += bytesPerSample {
		var sample float32
		if on {
			if w.phase <= 0.5 {
				sample = w.volume
			} else {
				sample = -w.volume
			}
			w.phase = math.Mod(w.phase+w.phaseStep, 1)
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
	}
	return n, nil
}

// OtoSpeaker plays the beep through the default audio device.
type OtoSpeaker struct {
	wave   *squareWave
	player *oto.Player
}

func NewOtoSpeaker() (*OtoSpeaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	wave := newSquareWave(beepFrequency, sampleRate, beepVolume)
	player := ctx.NewPlayer(wave)
	player.Play()

	return &OtoSpeaker{wave: wave, player: player}, nil
}

func (s *OtoSpeaker) StartSound() {
	s.wave.on.Store(true)
}

func (s *OtoSpeaker) StopSound() {
	s.wave.on.Store(false)
}

func (s *OtoSpeaker) Close() error {
	return s.player.Close()
}

// silentSpeaker is used when audio is muted or there is no window.
type silentSpeaker struct{}

func (silentSpeaker) StartSound()  {}
func (silentSpeaker) StopSound()   {}
func (silentSpeaker) Close() error { return nil }
