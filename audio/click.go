// Package audio plays the metronome through the default sound device.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"chordloop/debug"
)

const sampleRate = beep.SampleRate(44100)

const (
	clickFreq  = 1000.0
	accentFreq = 1500.0
	clickGain  = 0.3
	accentGain = 0.5
	clickLen   = 40 * time.Millisecond
)

var (
	initOnce sync.Once
	initErr  error
)

// Click is a sine blip metronome
type Click struct {
	sr     beep.SampleRate
	length int
}

// NewClick opens the speaker. It fails when there is no sound device.
func NewClick() (*Click, error) {
	initOnce.Do(func() {
		initErr = speaker.Init(sampleRate, sampleRate.N(time.Second/20))
		if initErr == nil {
			debug.Log("audio", "speaker at %d Hz", int(sampleRate))
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return &Click{sr: sampleRate, length: sampleRate.N(clickLen)}, nil
}

// Click queues a blip on the mixer and returns.
func (c *Click) Click(accent bool) {
	speaker.Play(c.blip(accent))
}

func (c *Click) blip(accent bool) beep.Streamer {
	freq, gain := clickFreq, clickGain
	if accent {
		freq, gain = accentFreq, accentGain
	}
	return blip(c.sr, freq, gain, c.length)
}

// blip is n samples of a sine with a fast exponential decay
func blip(sr beep.SampleRate, freq, gain float64, n int) beep.Streamer {
	pos := 0
	decay := 5.0 / float64(n)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= n {
			return 0, false
		}
		i := 0
		for ; i < len(samples) && pos < n; i++ {
			value := math.Sin(2*math.Pi*float64(pos)/float64(sr)*freq) * gain * math.Exp(-decay*float64(pos))
			samples[i][0] = value
			samples[i][1] = value
			pos++
		}
		return i, true
	})
}
